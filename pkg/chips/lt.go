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

// Main column indices of the less-than chip.
const (
	ltIsReal = iota
	ltA      // 4 limbs
	ltB      = ltA + WordLimbs
	ltC      = ltB + WordLimbs
	ltFlags  = ltC + WordLimbs // most-significant-difference one-hot
	ltBCmp   = ltFlags + WordLimbs
	ltCCmp   = ltBCmp + 1
	ltWidth  = ltCCmp + 1
)

// LtChip proves the SLTU instruction.  A one-hot flag vector marks the most
// significant limb where b and c differ; all limbs above it are constrained
// equal, and the flagged byte pair is compared by the byte table.  When b
// and c are equal no flag is set and the comparison degenerates to
// ltu(0, 0) = 0.
type LtChip struct{}

// Name implementation for the Chip interface.
func (p *LtChip) Name() string { return "Lt" }

// Width implementation for the Chip interface.
func (p *LtChip) Width() uint { return ltWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *LtChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *LtChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix { return nil }

// IncludedBy implementation for the Chip interface.
func (p *LtChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.LtEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *LtChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	for _, e := range record.LtEvents {
		bCmp, cCmp := ltComparisonBytes(e.B, e.C)
		//
		output.AddByteLookupEvent(execution.ByteLookupEvent{
			Op: execution.ByteLtu,
			A:  uint16(e.A),
			B:  bCmp,
			C:  cCmp,
		})
	}
}

// GenerateTrace implementation for the Chip interface.
func (p *LtChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(ltWidth, uint(len(record.LtEvents)))
	//
	for i, e := range record.LtEvents {
		row := matrix.Row(uint(i))
		row[ltIsReal] = field.One()
		setWord(row, ltA, e.A)
		setWord(row, ltB, e.B)
		setWord(row, ltC, e.C)
		//
		if j, ok := ltDifferingLimb(e.B, e.C); ok {
			row[ltFlags+j] = field.One()
			row[ltBCmp] = field.FromUint(uint64((e.B >> (8 * j)) & 0xff))
			row[ltCCmp] = field.FromUint(uint64((e.C >> (8 * j)) & 0xff))
		}
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *LtChip) Eval(b *air.Builder) {
	isReal := air.Local(ltIsReal)
	b.AssertBool(isReal)
	//
	flagSum := air.Expr(air.C(0))
	//
	for i := uint(0); i < WordLimbs; i++ {
		b.AssertBool(air.Local(ltFlags + i))
		flagSum = air.Add(flagSum, air.Local(ltFlags+i))
	}
	// Zero or one flags.
	b.AssertBool(flagSum)
	// Every limb above the flagged one is equal; with no flag, all are.
	for j := uint(0); j < WordLimbs; j++ {
		above := air.Expr(air.C(0))
		//
		for i := j; i < WordLimbs; i++ {
			above = air.Add(above, air.Local(ltFlags+i))
		}
		//
		b.AssertZero(air.Mul(
			air.Sub(air.Local(ltB+j), air.Local(ltC+j)),
			air.Sub(isReal, above)))
	}
	// The comparison bytes are the flagged limbs of b and c.
	bCmp := air.Expr(air.C(0))
	cCmp := air.Expr(air.C(0))
	//
	for i := uint(0); i < WordLimbs; i++ {
		bCmp = air.Add(bCmp, air.Mul(air.Local(ltFlags+i), air.Local(ltB+i)))
		cCmp = air.Add(cCmp, air.Mul(air.Local(ltFlags+i), air.Local(ltC+i)))
	}
	//
	b.AssertEq(air.Local(ltBCmp), bCmp)
	b.AssertEq(air.Local(ltCCmp), cCmp)
	// The byte table decides the flagged comparison and hence the result.
	b.SendByte(isReal, byteValues(air.C(uint64(execution.ByteLtu)),
		air.Local(ltA), air.Local(ltBCmp), air.Local(ltCCmp))...)
	// Upper result limbs are always zero.
	for i := uint(1); i < WordLimbs; i++ {
		b.AssertZero(air.Mul(isReal, air.Local(ltA+i)))
	}
	//
	b.ReceiveAlu(isReal, aluValues(air.C(uint64(execution.SLTU)), ltA, ltB, ltC)...)
}

// ltDifferingLimb returns the most significant limb index where x and y
// differ.
func ltDifferingLimb(x, y uint32) (uint, bool) {
	for j := int(WordLimbs) - 1; j >= 0; j-- {
		if uint8(x>>(8*j)) != uint8(y>>(8*j)) {
			return uint(j), true
		}
	}
	//
	return 0, false
}

// ltComparisonBytes returns the byte pair the comparison reduces to.
func ltComparisonBytes(x, y uint32) (uint8, uint8) {
	if j, ok := ltDifferingLimb(x, y); ok {
		return uint8(x >> (8 * j)), uint8(y >> (8 * j))
	}
	//
	return 0, 0
}
