// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package chips implements the table set of the machine: one chip per
// instruction class, the shared byte table, the program listing and the
// global memory boundary tables.  Each chip knows how to lay out its own
// trace matrix from an execution record and how to declare the constraints
// and bus interactions that make that matrix meaningful.
package chips

import (
	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
)

// WordLimbs is the number of byte limbs a 32-bit word is carried as.  Words
// do not fit into a single element of the 31-bit field, so every word on a
// bus or in a trace occupies four byte columns, least significant first.
const WordLimbs = 4

// Chip is a single table of the machine.
type Chip interface {
	// Name returns a unique identifier, used in transcripts, proofs and
	// error messages.
	Name() string
	// Width returns the number of main trace columns.
	Width() uint
	// PreprocessedWidth returns the number of preprocessed columns, or zero
	// if the chip has no preprocessed trace.
	PreprocessedWidth() uint
	// GeneratePreprocessedTrace builds the program-dependent fixed columns.
	// Chips with no preprocessed columns return nil.
	GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix
	// GenerateDependencies derives the secondary events (byte lookups,
	// range checks) this chip's rows will demand, appending them to output.
	// It must not mutate record.
	GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord)
	// GenerateTrace lays out the main trace matrix for the given record,
	// padded to a power-of-two height.
	GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix
	// IncludedBy determines whether this chip contributes rows to the given
	// record's shard proof.
	IncludedBy(record *execution.ExecutionRecord) bool
	// Eval declares the chip's constraints and bus interactions.  It is
	// called exactly once when a machine is constructed.
	Eval(b *air.Builder)
}

// NewRiscvChips returns the full chip set of the machine, in the canonical
// order used by provers and verifiers alike.
func NewRiscvChips() []Chip {
	return []Chip{
		&ProgramChip{},
		&CpuChip{},
		&AddChip{},
		&SubChip{},
		&BitwiseChip{},
		&ShiftLeftChip{},
		&LtChip{},
		&SyscallChip{},
		NewMemoryGlobalChip(MemoryInitialize),
		NewMemoryGlobalChip(MemoryFinalize),
		&ByteChip{},
	}
}

// wordLimbs splits a 32-bit word into its four byte limbs as field elements.
func wordLimbs(w uint32) [WordLimbs]field.F {
	return [WordLimbs]field.F{
		field.FromUint(uint64(w & 0xff)),
		field.FromUint(uint64((w >> 8) & 0xff)),
		field.FromUint(uint64((w >> 16) & 0xff)),
		field.FromUint(uint64((w >> 24) & 0xff)),
	}
}

// setWord writes the four byte limbs of a word into consecutive columns.
func setWord(row []field.F, col uint, w uint32) {
	limbs := wordLimbs(w)
	//
	for i := uint(0); i < WordLimbs; i++ {
		row[col+i] = limbs[i]
	}
}

// wordExprs reads four consecutive main columns as byte limb expressions.
func wordExprs(col uint) []air.Expr {
	exprs := make([]air.Expr, WordLimbs)
	//
	for i := uint(0); i < WordLimbs; i++ {
		exprs[i] = air.Local(col + i)
	}
	//
	return exprs
}

// wordValue recomposes four byte limb columns into a single affine word
// expression, least significant limb first.
func wordValue(col uint) air.Expr {
	acc := air.Local(col)
	//
	for i := uint(1); i < WordLimbs; i++ {
		acc = air.Add(acc, air.Scale(1<<(8*i), air.Local(col+i)))
	}
	//
	return acc
}

// aluValues assembles the canonical ALU bus tuple (opcode, a, b, c) from an
// opcode and three word column bases.
func aluValues(opcode air.Expr, aCol, bCol, cCol uint) []air.Expr {
	values := []air.Expr{opcode}
	values = append(values, wordExprs(aCol)...)
	values = append(values, wordExprs(bCol)...)
	values = append(values, wordExprs(cCol)...)
	//
	return values
}

// byteValues assembles the canonical byte bus tuple (op, a, b, c).
func byteValues(op, a, b, c air.Expr) []air.Expr {
	return []air.Expr{op, a, b, c}
}
