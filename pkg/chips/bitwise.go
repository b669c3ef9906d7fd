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
package chips

import (
	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
)

// Main column indices of the bitwise chip.
const (
	bitwiseA     = iota // 4 limbs
	bitwiseB     = bitwiseA + WordLimbs
	bitwiseC     = bitwiseB + WordLimbs
	bitwiseIsXor = bitwiseC + WordLimbs
	bitwiseIsOr  = bitwiseIsXor + 1
	bitwiseIsAnd = bitwiseIsOr + 1
	bitwiseWidth = bitwiseIsAnd + 1
)

// BitwiseChip proves the XOR, OR and AND instructions in one table.  Each
// result limb is delegated to the byte table; the chip itself only routes
// the right byte operation per row via one-hot opcode flags.
type BitwiseChip struct{}

// Name implementation for the Chip interface.
func (p *BitwiseChip) Name() string { return "Bitwise" }

// Width implementation for the Chip interface.
func (p *BitwiseChip) Width() uint { return bitwiseWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *BitwiseChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *BitwiseChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix { return nil }

// IncludedBy implementation for the Chip interface.
func (p *BitwiseChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.BitwiseEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *BitwiseChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	for _, e := range record.BitwiseEvents {
		op := byteOpcodeOf(e.Opcode)
		//
		for i := uint(0); i < WordLimbs; i++ {
			output.AddByteLookupEvent(execution.ByteLookupEvent{
				Op: op,
				A:  uint16((e.A >> (8 * i)) & 0xff),
				B:  uint8(e.B >> (8 * i)),
				C:  uint8(e.C >> (8 * i)),
			})
		}
	}
}

// GenerateTrace implementation for the Chip interface.
func (p *BitwiseChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(bitwiseWidth, uint(len(record.BitwiseEvents)))
	//
	for i, e := range record.BitwiseEvents {
		row := matrix.Row(uint(i))
		setWord(row, bitwiseA, e.A)
		setWord(row, bitwiseB, e.B)
		setWord(row, bitwiseC, e.C)
		//
		switch e.Opcode {
		case execution.XOR:
			row[bitwiseIsXor] = field.One()
		case execution.OR:
			row[bitwiseIsOr] = field.One()
		case execution.AND:
			row[bitwiseIsAnd] = field.One()
		}
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *BitwiseChip) Eval(b *air.Builder) {
	var (
		isXor  = air.Local(bitwiseIsXor)
		isOr   = air.Local(bitwiseIsOr)
		isAnd  = air.Local(bitwiseIsAnd)
		isReal = air.Add(isXor, isOr, isAnd)
	)
	// At most one opcode flag per row.
	b.AssertBool(isXor)
	b.AssertBool(isOr)
	b.AssertBool(isAnd)
	b.AssertBool(isReal)
	// Route each limb to the byte table under the row's operation.
	byteOp := air.Add(
		air.Mul(isXor, air.C(uint64(execution.ByteXor))),
		air.Mul(isOr, air.C(uint64(execution.ByteOr))),
		air.Mul(isAnd, air.C(uint64(execution.ByteAnd))))
	//
	for i := uint(0); i < WordLimbs; i++ {
		b.SendByte(isReal, byteValues(byteOp,
			air.Local(bitwiseA+i), air.Local(bitwiseB+i), air.Local(bitwiseC+i))...)
	}
	// The ALU bus opcode is reconstructed the same way.
	opcode := air.Add(
		air.Mul(isXor, air.C(uint64(execution.XOR))),
		air.Mul(isOr, air.C(uint64(execution.OR))),
		air.Mul(isAnd, air.C(uint64(execution.AND))))
	//
	b.ReceiveAlu(isReal, aluValues(opcode, bitwiseA, bitwiseB, bitwiseC)...)
}

// byteOpcodeOf maps a bitwise instruction opcode to its byte table
// operation.
func byteOpcodeOf(op execution.Opcode) execution.ByteOpcode {
	switch op {
	case execution.XOR:
		return execution.ByteXor
	case execution.OR:
		return execution.ByteOr
	case execution.AND:
		return execution.ByteAnd
	default:
		panic("not a bitwise opcode: " + op.String())
	}
}
