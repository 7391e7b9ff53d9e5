package vm

import "github.com/cloudcmds/sable/op"

// Observer receives a callback for every instruction the VM executes.
// Implementations can be used for tracing, debugging, or instruction
// counting without modifying the VM's core.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
type Observer interface {
	// OnStep is called before each instruction is dispatched.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the offset of the instruction within the chunk.
	IP int

	// Opcode is the operation being executed.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Line is the source line the instruction was compiled from.
	Line int

	// StackDepth is the current depth of the value stack.
	StackDepth int
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(StepEvent) bool

func (f ObserverFunc) OnStep(event StepEvent) bool { return f(event) }

var _ Observer = ObserverFunc(nil)
