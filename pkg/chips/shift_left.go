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

// Main column indices of the shift-left chip.
const (
	sllIsReal    = iota
	sllA         // 4 limbs
	sllB         = sllA + WordLimbs
	sllC         = sllB + WordLimbs
	sllBitFlags  = sllC + WordLimbs // one-hot over shift amounts 0..7
	sllByteFlags = sllBitFlags + 8  // one-hot over byte rotations 0..3
	sllCHi       = sllByteFlags + WordLimbs
	sllMult      = sllCHi + 1
	sllResult    = sllMult + 1 // bit-shifted limbs before byte rotation
	sllCarry     = sllResult + WordLimbs
	sllWidth     = sllCarry + WordLimbs
)

// ShiftLeftChip proves the SLL instruction.  The shift amount c mod 32 is
// split into a bit part (0..7) and a byte part (0..3), each selected by a
// one-hot flag vector.  Limbs are first multiplied by 2^bits with the
// overflow carried into the next limb, then rotated whole bytes towards the
// most significant end.
type ShiftLeftChip struct{}

// Name implementation for the Chip interface.
func (p *ShiftLeftChip) Name() string { return "ShiftLeft" }

// Width implementation for the Chip interface.
func (p *ShiftLeftChip) Width() uint { return sllWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *ShiftLeftChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *ShiftLeftChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix {
	return nil
}

// IncludedBy implementation for the Chip interface.
func (p *ShiftLeftChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.ShiftLeftEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *ShiftLeftChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	for _, e := range record.ShiftLeftEvents {
		var (
			nbits = e.C & 7
			chi   = uint8((e.C & 0xff) >> 5)
		)
		//
		for i := uint(0); i < WordLimbs; i++ {
			prod := ((e.B >> (8 * i)) & 0xff) << nbits
			output.AddU8RangeCheck(uint8(prod>>8), uint8(prod))
		}
		//
		output.AddU8RangeCheck(chi, 0)
		output.AddU8RangeCheck(uint8(e.A), uint8(e.A>>8))
		output.AddU8RangeCheck(uint8(e.A>>16), uint8(e.A>>24))
	}
}

// GenerateTrace implementation for the Chip interface.
func (p *ShiftLeftChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(sllWidth, uint(len(record.ShiftLeftEvents)))
	//
	for i, e := range record.ShiftLeftEvents {
		var (
			row    = matrix.Row(uint(i))
			nbits  = e.C & 7
			nbytes = (e.C >> 3) & 3
		)
		//
		row[sllIsReal] = field.One()
		setWord(row, sllA, e.A)
		setWord(row, sllB, e.B)
		setWord(row, sllC, e.C)
		row[sllBitFlags+uint(nbits)] = field.One()
		row[sllByteFlags+uint(nbytes)] = field.One()
		row[sllCHi] = field.FromUint(uint64((e.C & 0xff) >> 5))
		row[sllMult] = field.FromUint(uint64(1) << nbits)
		//
		for j := uint(0); j < WordLimbs; j++ {
			prod := ((e.B >> (8 * j)) & 0xff) << nbits
			row[sllResult+j] = field.FromUint(uint64(prod & 0xff))
			row[sllCarry+j] = field.FromUint(uint64(prod >> 8))
		}
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *ShiftLeftChip) Eval(b *air.Builder) {
	isReal := air.Local(sllIsReal)
	b.AssertBool(isReal)
	// Exactly one flag of each kind on real rows, none on padding.
	bitSum := air.Expr(air.C(0))
	byteSum := air.Expr(air.C(0))
	//
	for i := uint(0); i < 8; i++ {
		b.AssertBool(air.Local(sllBitFlags + i))
		bitSum = air.Add(bitSum, air.Local(sllBitFlags+i))
	}
	//
	for i := uint(0); i < WordLimbs; i++ {
		b.AssertBool(air.Local(sllByteFlags + i))
		byteSum = air.Add(byteSum, air.Local(sllByteFlags+i))
	}
	//
	b.AssertEq(bitSum, isReal)
	b.AssertEq(byteSum, isReal)
	// The low limb of c decomposes into the selected shift amount plus the
	// discarded high bits.
	amount := air.Scale(32, air.Local(sllCHi))
	multiplier := air.Expr(air.C(0))
	//
	for i := uint(0); i < 8; i++ {
		amount = air.Add(amount, air.Scale(uint64(i), air.Local(sllBitFlags+i)))
		multiplier = air.Add(multiplier, air.Scale(uint64(1)<<i, air.Local(sllBitFlags+i)))
	}
	//
	for i := uint(0); i < WordLimbs; i++ {
		amount = air.Add(amount, air.Scale(uint64(8*i), air.Local(sllByteFlags+i)))
	}
	//
	b.AssertEq(air.Local(sllC), amount)
	b.AssertEq(air.Local(sllMult), multiplier)
	// Bit shift: each limb times the multiplier splits into a result byte
	// and a carry into the next limb.
	for i := uint(0); i < WordLimbs; i++ {
		b.AssertEq(
			air.Mul(air.Local(sllB+i), air.Local(sllMult)),
			air.Add(air.Local(sllResult+i), air.Scale(256, air.Local(sllCarry+i))))
		//
		b.SendByte(isReal, byteValues(air.C(uint64(execution.ByteU8Range)),
			air.C(0), air.Local(sllCarry+i), air.Local(sllResult+i))...)
	}
	// Byte shift: output limb i picks the bit-shift result nbytes positions
	// below it, with the carry out of the limb underneath folded in.
	for i := uint(0); i < WordLimbs; i++ {
		shifted := air.Expr(air.C(0))
		//
		for j := uint(0); j <= i; j++ {
			term := air.Local(sllResult + (i - j))
			//
			if i > j {
				term = air.Add(term, air.Local(sllCarry+(i-j-1)))
			}
			//
			shifted = air.Add(shifted, air.Mul(air.Local(sllByteFlags+j), term))
		}
		//
		b.AssertEq(air.Local(sllA+i), shifted)
	}
	//
	b.SendByte(isReal, byteValues(air.C(uint64(execution.ByteU8Range)),
		air.C(0), air.Local(sllCHi), air.C(0))...)
	evalOutputRangeCheck(b, isReal, sllA)
	//
	b.ReceiveAlu(isReal, aluValues(air.C(uint64(execution.SLL)), sllA, sllB, sllC)...)
}
