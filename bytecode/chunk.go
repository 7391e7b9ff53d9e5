// Package bytecode defines the Chunk type: a compiled unit of bytecode
// together with its constant pool and line-number table.
package bytecode

import (
	"github.com/gofrs/uuid"

	"github.com/cloudcmds/sable/object"
	"github.com/cloudcmds/sable/op"
)

// MaxConstants is the number of constants a single chunk can hold, bounded
// by the one-byte constant-pool index.
const MaxConstants = 256

// lineRun is one run-length-encoded entry of the line table: count
// consecutive instruction bytes that share the same source line.
type lineRun struct {
	line  int
	count int
}

// Chunk is a growable container of bytecode. Instructions and their inline
// operands are raw bytes; the parallel line table is run-length encoded and
// decodes to exactly one line number per instruction byte. The caller that
// constructs a Chunk owns it and discards it after execution, or immediately
// if compilation fails.
type Chunk struct {
	id        string
	code      []byte
	lines     []lineRun
	constants []object.Value
}

// New creates an empty Chunk with a unique id.
func New() *Chunk {
	return &Chunk{id: newChunkID()}
}

func newChunkID() string {
	id, err := uuid.NewV4()
	if err != nil {
		// uuid.NewV4 fails only if the OS entropy source does
		panic(err)
	}
	return id.String()
}

// ID returns the chunk's unique identifier.
func (c *Chunk) ID() string {
	return c.id
}

// Write appends one byte, opcode or operand, recording the source line it
// came from. Consecutive bytes on the same line share one run in the table.
func (c *Chunk) Write(b byte, line int) {
	if n := len(c.lines); n > 0 && c.lines[n-1].line == line {
		c.lines[n-1].count++
	} else {
		c.lines = append(c.lines, lineRun{line: line, count: 1})
	}
	c.code = append(c.code, b)
}

// WriteOp appends an opcode byte, recording its source line.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends a value to the constant pool and returns its index.
// The second return value is false when the pool is full.
func (c *Chunk) AddConstant(value object.Value) (int, bool) {
	if len(c.constants) >= MaxConstants {
		return 0, false
	}
	c.constants = append(c.constants, value)
	return len(c.constants) - 1, true
}

// Size returns the number of instruction bytes in the chunk.
func (c *Chunk) Size() int {
	return len(c.code)
}

// Byte returns the instruction byte at the given offset.
func (c *Chunk) Byte(offset int) byte {
	return c.code[offset]
}

// Code returns the raw instruction bytes. The returned slice is the chunk's
// backing storage and must not be modified.
func (c *Chunk) Code() []byte {
	return c.code
}

// ConstantCount returns the number of values in the constant pool.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// Constant returns the constant-pool value at the given index.
func (c *Chunk) Constant(index int) object.Value {
	return c.constants[index]
}

// LineAt decodes the line table and returns the source line for the
// instruction byte at the given offset.
func (c *Chunk) LineAt(offset int) int {
	for _, run := range c.lines {
		if offset < run.count {
			return run.line
		}
		offset -= run.count
	}
	return 0
}
