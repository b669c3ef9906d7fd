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

// Main column indices of the add chip.
const (
	addIsReal = iota
	addA      // 4 limbs
	addB      = addA + WordLimbs // 4 limbs
	addC      = addB + WordLimbs // 4 limbs
	addCarry  = addC + WordLimbs // 4 carries, one per limb
	addWidth  = addCarry + WordLimbs
)

// AddChip proves 32-bit wrapping addition a = b + c with a byte-limb ripple
// adder.  Output limbs are range checked against the byte table; input limbs
// are vouched for by whichever chip placed them on the ALU bus.
type AddChip struct{}

// Name implementation for the Chip interface.
func (p *AddChip) Name() string { return "Add" }

// Width implementation for the Chip interface.
func (p *AddChip) Width() uint { return addWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *AddChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *AddChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix { return nil }

// IncludedBy implementation for the Chip interface.
func (p *AddChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.AddEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *AddChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	for _, e := range record.AddEvents {
		output.AddU8RangeCheck(uint8(e.A), uint8(e.A>>8))
		output.AddU8RangeCheck(uint8(e.A>>16), uint8(e.A>>24))
	}
}

// GenerateTrace implementation for the Chip interface.
func (p *AddChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(addWidth, uint(len(record.AddEvents)))
	//
	for i, e := range record.AddEvents {
		row := matrix.Row(uint(i))
		row[addIsReal] = field.One()
		setWord(row, addA, e.A)
		setWord(row, addB, e.B)
		setWord(row, addC, e.C)
		fillCarries(row, addCarry, e.B, e.C)
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *AddChip) Eval(b *air.Builder) {
	b.AssertBool(air.Local(addIsReal))
	evalLimbAdder(b, air.Local(addIsReal), addB, addC, addA, addCarry)
	evalOutputRangeCheck(b, air.Local(addIsReal), addA)
	//
	b.ReceiveAlu(air.Local(addIsReal),
		aluValues(air.C(uint64(execution.ADD)), addA, addB, addC)...)
}

// evalLimbAdder constrains sum = x + y limb-wise mod 2^32, with carries in
// the given columns.  The carry out of the top limb is witnessed like the
// others but feeds nothing, which is exactly the wrap.
func evalLimbAdder(b *air.Builder, isReal air.Expr, xCol, yCol, sumCol, carryCol uint) {
	for i := uint(0); i < WordLimbs; i++ {
		acc := air.Sub(air.Add(air.Local(xCol+i), air.Local(yCol+i)), air.Local(sumCol+i))
		//
		if i > 0 {
			acc = air.Add(acc, air.Local(carryCol+i-1))
		}
		//
		b.AssertBool(air.Local(carryCol + i))
		acc = air.Sub(acc, air.Scale(256, air.Local(carryCol+i)))
		//
		b.AssertZero(air.Mul(isReal, acc))
	}
}

// evalOutputRangeCheck demands byte range checks on a word's four limbs,
// pairwise.
func evalOutputRangeCheck(b *air.Builder, mult air.Expr, col uint) {
	b.SendByte(mult, byteValues(air.C(uint64(execution.ByteU8Range)),
		air.C(0), air.Local(col), air.Local(col+1))...)
	b.SendByte(mult, byteValues(air.C(uint64(execution.ByteU8Range)),
		air.C(0), air.Local(col+2), air.Local(col+3))...)
}

// fillCarries computes the ripple carries of x + y and writes them into the
// four carry columns.
func fillCarries(row []field.F, col uint, x, y uint32) {
	carry := uint32(0)
	//
	for i := uint(0); i < WordLimbs; i++ {
		carry = (((x >> (8 * i)) & 0xff) + ((y >> (8 * i)) & 0xff) + carry) >> 8
		//
		if carry != 0 {
			row[col+i] = field.One()
		}
	}
}
