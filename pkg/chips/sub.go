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

// Main column indices of the sub chip.
const (
	subIsReal = iota
	subA      // 4 limbs
	subB      = subA + WordLimbs // 4 limbs
	subC      = subB + WordLimbs // 4 limbs
	subCarry  = subC + WordLimbs // 4 carries
	subWidth  = subCarry + WordLimbs
)

// SubChip proves 32-bit wrapping subtraction a = b - c by running the limb
// adder backwards: it constrains b = a + c, so the same carry discipline as
// the add chip applies with the roles of a and b swapped.
type SubChip struct{}

// Name implementation for the Chip interface.
func (p *SubChip) Name() string { return "Sub" }

// Width implementation for the Chip interface.
func (p *SubChip) Width() uint { return subWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *SubChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *SubChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix { return nil }

// IncludedBy implementation for the Chip interface.
func (p *SubChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.SubEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *SubChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	for _, e := range record.SubEvents {
		output.AddU8RangeCheck(uint8(e.A), uint8(e.A>>8))
		output.AddU8RangeCheck(uint8(e.A>>16), uint8(e.A>>24))
	}
}

// GenerateTrace implementation for the Chip interface.
func (p *SubChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(subWidth, uint(len(record.SubEvents)))
	//
	for i, e := range record.SubEvents {
		row := matrix.Row(uint(i))
		row[subIsReal] = field.One()
		setWord(row, subA, e.A)
		setWord(row, subB, e.B)
		setWord(row, subC, e.C)
		fillCarries(row, subCarry, e.A, e.C)
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *SubChip) Eval(b *air.Builder) {
	b.AssertBool(air.Local(subIsReal))
	evalLimbAdder(b, air.Local(subIsReal), subA, subC, subB, subCarry)
	evalOutputRangeCheck(b, air.Local(subIsReal), subA)
	//
	b.ReceiveAlu(air.Local(subIsReal),
		aluValues(air.C(uint64(execution.SUB)), subA, subB, subC)...)
}
