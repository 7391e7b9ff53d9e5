// Package vm provides a VirtualMachine that executes compiled Sable chunks.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cloudcmds/sable/bytecode"
	"github.com/cloudcmds/sable/compiler"
	"github.com/cloudcmds/sable/errz"
	"github.com/cloudcmds/sable/object"
	"github.com/cloudcmds/sable/op"
)

const (
	// MaxStackDepth is the fixed size of the value stack.
	MaxStackDepth = 256

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// VirtualMachine executes bytecode chunks over a fixed-size value stack.
// Globals and interned strings are retained across runs, so a single VM can
// execute a sequence of chunks incrementally, which is what the REPL does.
// A VM may not run concurrently with itself.
type VirtualMachine struct {
	ip       int // instruction pointer
	sp       int // stack pointer: next free slot
	line     int // source line of the instruction being executed
	chunk    *bytecode.Chunk
	stack    [MaxStackDepth]object.Value
	globals  *object.Table
	interner *object.Interner
	stdout   io.Writer
	halt     int32
	running  bool
	runMutex sync.Mutex

	// contextCheckInterval is the number of instructions between deterministic
	// checks of ctx.Done(). A value of 0 disables deterministic checking,
	// relying only on the background goroutine.
	contextCheckInterval int

	// observer receives a callback before each instruction. If nil, no
	// callbacks are made.
	observer Observer
}

// New creates a new Virtual Machine.
func New(opts ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		globals:              object.NewTable(),
		stdout:               os.Stdout,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.interner == nil {
		vm.interner = object.NewInterner()
	}
	return vm
}

// Interner returns the interner shared by this VM and its compiler.
func (vm *VirtualMachine) Interner() *object.Interner {
	return vm.interner
}

// Global returns the current value of the named global variable.
func (vm *VirtualMachine) Global(name string) (object.Value, bool) {
	key, ok := vm.interner.Lookup(name)
	if !ok {
		return nil, false
	}
	return vm.globals.Get(key)
}

// Interpret compiles the given source and runs the resulting chunk. The
// returned error is either the compiler's accumulated diagnostics or a
// single runtime error; one call never produces both.
func (vm *VirtualMachine) Interpret(ctx context.Context, source string) error {
	chunk, err := compiler.Compile(source, compiler.WithInterner(vm.interner))
	if err != nil {
		return err
	}
	return vm.Run(ctx, chunk)
}

// Run executes a compiled chunk until its final Return instruction. On a
// runtime error the stack is reset, so the VM remains usable for further
// runs; globals keep their values.
func (vm *VirtualMachine) Run(ctx context.Context, chunk *bytecode.Chunk) (err error) {
	// Set up some guarantees:
	// 1. It is an error to call Run on a VM that is already running
	// 2. The running flag will always be set to false when Run returns
	// 3. Any panics are translated to errors and the VM is stopped
	if err := vm.start(ctx); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if serr, ok := r.(*errz.StructuredError); ok {
				err = serr
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
		if err != nil {
			vm.resetStack()
		}
		vm.stop()
	}()

	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()
	return vm.run(ctx)
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	// Halt execution when the context is cancelled
	vm.halt = 0
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			<-doneChan
			atomic.StoreInt32(&vm.halt, 1)
		}()
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

// run is the fetch-decode-execute loop over the active chunk.
func (vm *VirtualMachine) run(ctx context.Context) error {
	// Instruction counter for deterministic context checking
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()

	for vm.ip < vm.chunk.Size() {

		if atomic.LoadInt32(&vm.halt) == 1 {
			return ctx.Err()
		}

		// Deterministic check of ctx.Done() every N instructions.
		// This guarantees responsiveness regardless of goroutine scheduling.
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&vm.halt, 1)
					return ctx.Err()
				default:
				}
			}
		}

		opcode := op.Code(vm.chunk.Byte(vm.ip))
		vm.line = vm.chunk.LineAt(vm.ip)

		if vm.observer != nil {
			event := StepEvent{
				IP:         vm.ip,
				Opcode:     opcode,
				OpcodeName: op.GetInfo(opcode).Name,
				Line:       vm.line,
				StackDepth: vm.sp,
			}
			if !vm.observer.OnStep(event) {
				return fmt.Errorf("execution halted by observer")
			}
		}

		// Advance the instruction pointer past the opcode before dispatch,
		// so operand fetches read from vm.ip directly.
		vm.ip++

		switch opcode {
		case op.Constant:
			vm.push(vm.chunk.Constant(int(vm.fetch())))
		case op.Nil:
			vm.push(object.Nil)
		case op.True:
			vm.push(object.True)
		case op.False:
			vm.push(object.False)
		case op.Pop:
			vm.pop()
		case op.GetLocal:
			slot := vm.fetch()
			vm.push(vm.stack[slot])
		case op.SetLocal:
			slot := vm.fetch()
			vm.stack[slot] = vm.peek(0)
		case op.GetGlobal:
			name := vm.chunk.Constant(int(vm.fetch())).(*object.String)
			value, found := vm.globals.Get(name)
			if !found {
				return vm.nameError("Undefined variable '%s'.", name.Value())
			}
			vm.push(value)
		case op.DefineGlobal:
			name := vm.chunk.Constant(int(vm.fetch())).(*object.String)
			vm.globals.Set(name, vm.pop())
		case op.SetGlobal:
			name := vm.chunk.Constant(int(vm.fetch())).(*object.String)
			// Assigning to an undefined global is an error: Set reports a
			// new key, which must be undone before failing
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.nameError("Undefined variable '%s'.", name.Value())
			}
		case op.Equal:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.NewBool(a.Equals(b)))
		case op.Greater:
			a, b, err := vm.popNumberOperands()
			if err != nil {
				return err
			}
			vm.push(object.NewBool(a > b))
		case op.Less:
			a, b, err := vm.popNumberOperands()
			if err != nil {
				return err
			}
			vm.push(object.NewBool(a < b))
		case op.Add:
			if err := vm.add(); err != nil {
				return err
			}
		case op.Subtract:
			a, b, err := vm.popNumberOperands()
			if err != nil {
				return err
			}
			vm.push(object.NewNumber(a - b))
		case op.Multiply:
			a, b, err := vm.popNumberOperands()
			if err != nil {
				return err
			}
			vm.push(object.NewNumber(a * b))
		case op.Divide:
			a, b, err := vm.popNumberOperands()
			if err != nil {
				return err
			}
			vm.push(object.NewNumber(a / b))
		case op.Not:
			vm.push(object.NewBool(!vm.pop().IsTruthy()))
		case op.Negate:
			operand, ok := vm.peek(0).(*object.Number)
			if !ok {
				return vm.typeError("Operand must be a number.")
			}
			vm.stack[vm.sp-1] = object.NewNumber(-operand.Value())
		case op.Print:
			fmt.Fprintln(vm.stdout, object.Printable(vm.pop()))
		case op.Return:
			return nil
		default:
			return vm.runtimeError("unknown opcode: %d", opcode)
		}
	}
	return nil
}

// add implements the polymorphic + operator: numeric addition when both
// operands are numbers, concatenation when both are strings. A concatenated
// result is interned, so it compares identical to any equal string.
func (vm *VirtualMachine) add() error {
	b := vm.peek(0)
	a := vm.peek(1)
	switch a := a.(type) {
	case *object.Number:
		if b, ok := b.(*object.Number); ok {
			vm.sp -= 2
			vm.push(object.NewNumber(a.Value() + b.Value()))
			return nil
		}
	case *object.String:
		if b, ok := b.(*object.String); ok {
			vm.sp -= 2
			vm.push(vm.interner.Intern(a.Value() + b.Value()))
			return nil
		}
	}
	return vm.typeError("Operands must be two numbers or two strings.")
}

// popNumberOperands pops the two operands of a numeric binary operator,
// returning them in evaluation order.
func (vm *VirtualMachine) popNumberOperands() (float64, float64, error) {
	b, okB := vm.peek(0).(*object.Number)
	a, okA := vm.peek(1).(*object.Number)
	if !okA || !okB {
		return 0, 0, vm.typeError("Operands must be numbers.")
	}
	vm.sp -= 2
	return a.Value(), b.Value(), nil
}

func (vm *VirtualMachine) push(value object.Value) {
	if vm.sp == MaxStackDepth {
		panic(errz.NewRuntimeErrorf(errz.ErrRuntime, vm.line, "Stack overflow."))
	}
	vm.stack[vm.sp] = value
	vm.sp++
}

func (vm *VirtualMachine) pop() object.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

// peek returns a value from the stack without popping it. A distance of 0 is
// the top of the stack.
func (vm *VirtualMachine) peek(distance int) object.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VirtualMachine) resetStack() {
	for i := 0; i < vm.sp; i++ {
		vm.stack[i] = nil
	}
	vm.sp = 0
}

func (vm *VirtualMachine) typeError(format string, args ...any) error {
	return errz.NewRuntimeErrorf(errz.ErrType, vm.line, format, args...)
}

func (vm *VirtualMachine) nameError(format string, args ...any) error {
	return errz.NewRuntimeErrorf(errz.ErrName, vm.line, format, args...)
}

func (vm *VirtualMachine) runtimeError(format string, args ...any) error {
	return errz.NewRuntimeErrorf(errz.ErrRuntime, vm.line, format, args...)
}

func (vm *VirtualMachine) fetch() byte {
	b := vm.chunk.Byte(vm.ip)
	vm.ip++
	return b
}
