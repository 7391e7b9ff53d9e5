// Package op defines opcodes used by the Sable compiler and virtual machine.
package op

// Code is a one-byte opcode that indicates an operation to execute. Operands,
// when present, follow the opcode inline as additional bytes.
type Code byte

const (
	// Constants and literals
	Constant Code = 0 // operand: u8 constant-pool index
	Nil      Code = 1
	True     Code = 2
	False    Code = 3

	// Stack
	Pop Code = 4

	// Variables
	GetLocal     Code = 5 // operand: u8 stack slot
	SetLocal     Code = 6 // operand: u8 stack slot
	GetGlobal    Code = 7 // operand: u8 constant index of the name
	DefineGlobal Code = 8 // operand: u8 constant index of the name
	SetGlobal    Code = 9 // operand: u8 constant index of the name

	// Comparison
	Equal   Code = 10
	Greater Code = 11
	Less    Code = 12

	// Arithmetic
	Add      Code = 13
	Subtract Code = 14
	Multiply Code = 15
	Divide   Code = 16

	// Unary
	Not    Code = 17
	Negate Code = 18

	// Statements
	Print  Code = 19
	Return Code = 20
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{Constant, "OP_CONSTANT", 1},
		{Nil, "OP_NIL", 0},
		{True, "OP_TRUE", 0},
		{False, "OP_FALSE", 0},
		{Pop, "OP_POP", 0},
		{GetLocal, "OP_GET_LOCAL", 1},
		{SetLocal, "OP_SET_LOCAL", 1},
		{GetGlobal, "OP_GET_GLOBAL", 1},
		{DefineGlobal, "OP_DEFINE_GLOBAL", 1},
		{SetGlobal, "OP_SET_GLOBAL", 1},
		{Equal, "OP_EQUAL", 0},
		{Greater, "OP_GREATER", 0},
		{Less, "OP_LESS", 0},
		{Add, "OP_ADD", 0},
		{Subtract, "OP_SUBTRACT", 0},
		{Multiply, "OP_MULTIPLY", 0},
		{Divide, "OP_DIVIDE", 0},
		{Not, "OP_NOT", 0},
		{Negate, "OP_NEGATE", 0},
		{Print, "OP_PRINT", 0},
		{Return, "OP_RETURN", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}
