// Package dis supports analysis of Sable bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and the Chunk
// type from the `bytecode` package.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cloudcmds/sable/bytecode"
	"github.com/cloudcmds/sable/object"
	"github.com/cloudcmds/sable/op"
)

// Instruction represents a single decoded instruction and its operands.
type Instruction struct {
	Offset   int
	Line     int
	Name     string
	Opcode   op.Code
	Operands []byte

	// Constant is the pool value an operand refers to, for instructions
	// whose operand indexes the constant pool.
	Constant object.Value
}

// Disassemble returns a parsed representation of the chunk's bytecode.
func Disassemble(chunk *bytecode.Chunk) []Instruction {
	var instructions []Instruction
	for offset := 0; offset < chunk.Size(); {
		opcode := op.Code(chunk.Byte(offset))
		info := op.GetInfo(opcode)
		name := info.Name
		if name == "" {
			name = fmt.Sprintf("OP_UNKNOWN_%d", opcode)
		}
		instr := Instruction{
			Offset: offset,
			Line:   chunk.LineAt(offset),
			Name:   name,
			Opcode: opcode,
		}
		for i := 0; i < info.OperandCount; i++ {
			instr.Operands = append(instr.Operands, chunk.Byte(offset+1+i))
		}
		switch opcode {
		case op.Constant, op.DefineGlobal, op.GetGlobal, op.SetGlobal:
			instr.Constant = chunk.Constant(int(instr.Operands[0]))
		}
		instructions = append(instructions, instr)
		offset += 1 + info.OperandCount
	}
	return instructions
}

var (
	opcodeColor   = color.New(color.FgCyan)
	constantColor = color.New(color.FgYellow)
)

// Print writes one line per instruction to the given writer:
//
//	== name ==
//	0000    1 OP_CONSTANT         0 '1.2'
//	0002    | OP_RETURN
//
// The line column shows `|` when the instruction shares the source line of
// the one before it.
func Print(name string, instructions []Instruction, w io.Writer) {
	fmt.Fprintf(w, "== %s ==\n", name)
	lastLine := -1
	for _, instr := range instructions {
		line := "   |"
		if instr.Line != lastLine {
			line = fmt.Sprintf("%4d", instr.Line)
			lastLine = instr.Line
		}
		fmt.Fprintf(w, "%04d %s %s", instr.Offset, line,
			opcodeColor.Sprintf("%-16s", instr.Name))
		for _, operand := range instr.Operands {
			fmt.Fprintf(w, " %4d", operand)
		}
		if instr.Constant != nil {
			fmt.Fprintf(w, " %s", constantColor.Sprintf("'%s'",
				object.Printable(instr.Constant)))
		}
		fmt.Fprintln(w)
	}
}
