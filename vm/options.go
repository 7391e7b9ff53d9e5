package vm

import (
	"io"

	"github.com/cloudcmds/sable/object"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithStdout sets the writer print statements write to. The default is
// os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.stdout = w
	}
}

// WithInterner sets the string interner the VM shares with its compiler.
// String constants in a chunk and strings created at run time must be
// interned in the same Interner for identity-based string equality to hold.
func WithInterner(interner *object.Interner) Option {
	return func(vm *VirtualMachine) {
		vm.interner = interner
	}
}

// WithObserver sets an observer for VM execution events. The observer
// receives a callback before every instruction. Returning false from the
// callback halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of
// 0 disables deterministic checking, relying only on the background goroutine
// that monitors the context. The default is DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}
