// Package sable implements a small dynamically-typed scripting language.
// Source code is compiled in a single pass to bytecode, which a stack-based
// virtual machine executes. This package is the high-level entrypoint; the
// scanner, compiler, bytecode, and vm packages expose the individual stages.
package sable

import (
	"context"
	"io"

	"github.com/cloudcmds/sable/bytecode"
	"github.com/cloudcmds/sable/compiler"
	"github.com/cloudcmds/sable/object"
	"github.com/cloudcmds/sable/vm"
)

// Option configures a Sable compilation or execution.
type Option func(*options)

type options struct {
	stdout               io.Writer
	observer             vm.Observer
	interner             *object.Interner
	contextCheckInterval int
}

func collectOptions(opts ...Option) *options {
	o := &options{contextCheckInterval: vm.DefaultContextCheckInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.interner == nil {
		o.interner = object.NewInterner()
	}
	return o
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{
		vm.WithInterner(o.interner),
		vm.WithContextCheckInterval(o.contextCheckInterval),
	}
	if o.stdout != nil {
		opts = append(opts, vm.WithStdout(o.stdout))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithStdout sets the writer print statements write to.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithObserver sets an observer for VM execution events. The observer
// receives a callback before every instruction, which enables tracers and
// debuggers without modifying the VM's core.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithInterner sets the string interner shared by the compiler and the VM.
// Supplying the same interner across Eval calls preserves string identity
// between them.
func WithInterner(interner *object.Interner) Option {
	return func(o *options) {
		o.interner = interner
	}
}

// WithContextCheckInterval sets how often the VM checks for context
// cancellation, in instructions.
func WithContextCheckInterval(interval int) Option {
	return func(o *options) {
		o.contextCheckInterval = interval
	}
}

// Compile compiles source code into a bytecode chunk without running it.
// On error the returned diagnostics cover every broken statement.
func Compile(source string, opts ...Option) (*bytecode.Chunk, error) {
	o := collectOptions(opts...)
	return compiler.Compile(source, compiler.WithInterner(o.interner))
}

// Eval compiles and runs source code. Output from print statements goes to
// the configured stdout writer. The returned error is either the compiler's
// accumulated diagnostics or a single runtime error.
func Eval(ctx context.Context, source string, opts ...Option) error {
	o := collectOptions(opts...)
	chunk, err := compiler.Compile(source, compiler.WithInterner(o.interner))
	if err != nil {
		return err
	}
	return vm.New(o.vmOpts()...).Run(ctx, chunk)
}
