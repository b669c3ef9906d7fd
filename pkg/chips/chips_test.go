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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

func TestChipSetIsWellFormed(t *testing.T) {
	var (
		chips = NewRiscvChips()
		names = map[string]bool{}
	)
	//
	require.Len(t, chips, 11)
	//
	for _, chip := range chips {
		require.False(t, names[chip.Name()], "duplicate chip name %s", chip.Name())
		names[chip.Name()] = true
		// Constraint and interaction declaration must succeed within the
		// machine degree bound.
		b := air.NewBuilder()
		require.NotPanics(t, func() { chip.Eval(b) }, "chip %s", chip.Name())
		require.NotEmpty(t, b.Interactions, "chip %s declares no interactions", chip.Name())
	}
}

func TestAddChipTrace(t *testing.T) {
	record := execution.NewExecutionRecord(nil)
	// 0x00ff + 0x0001 carries out of the low limb.
	record.AddAluEvent(execution.AluEvent{Opcode: execution.ADD, A: 0x100, B: 0xff, C: 0x01})
	//
	chip := &AddChip{}
	require.True(t, chip.IncludedBy(record))
	//
	matrix := chip.GenerateTrace(record)
	require.Equal(t, chip.Width(), matrix.Width())
	require.Equal(t, uint(4), matrix.Height())
	//
	row := matrix.Row(0)
	require.Equal(t, field.One(), row[addIsReal])
	require.Equal(t, field.Zero(), row[addA])
	require.Equal(t, field.One(), row[addA+1])
	require.Equal(t, field.FromUint(0xff), row[addB])
	require.Equal(t, field.One(), row[addC])
	// The low limb overflowed, the higher ones did not.
	require.Equal(t, field.One(), row[addCarry])
	require.Equal(t, field.Zero(), row[addCarry+1])
	require.Equal(t, field.Zero(), row[addCarry+2])
	// Padding rows are entirely zero, including is_real.
	require.Equal(t, field.Zero(), matrix.Row(1)[addIsReal])
	require.Equal(t, field.Zero(), row[addCarry+3])
}

func TestAddChipTraceWrapsAtTopLimb(t *testing.T) {
	record := execution.NewExecutionRecord(nil)
	// 0x80000000 + 0x80000000 wraps to zero, carrying out of the top limb.
	record.AddAluEvent(execution.AluEvent{Opcode: execution.ADD, A: 0, B: 0x80000000, C: 0x80000000})
	//
	row := (&AddChip{}).GenerateTrace(record).Row(0)
	//
	for i := uint(0); i < WordLimbs; i++ {
		require.Equal(t, field.Zero(), row[addA+i])
	}
	//
	require.Equal(t, field.Zero(), row[addCarry])
	require.Equal(t, field.Zero(), row[addCarry+1])
	require.Equal(t, field.Zero(), row[addCarry+2])
	require.Equal(t, field.One(), row[addCarry+3])
}

func TestSubChipTraceBorrows(t *testing.T) {
	record := execution.NewExecutionRecord(nil)
	// 0 - 1 wraps to 0xffffffff; the b = a + c form carries through every
	// limb, the top one included.
	record.AddAluEvent(execution.AluEvent{Opcode: execution.SUB, A: 0xffffffff, B: 0, C: 1})
	//
	row := (&SubChip{}).GenerateTrace(record).Row(0)
	//
	for i := uint(0); i < WordLimbs; i++ {
		require.Equal(t, field.FromUint(0xff), row[subA+i])
		require.Equal(t, field.Zero(), row[subB+i])
		require.Equal(t, field.One(), row[subCarry+i])
	}
}

func TestAddChipDependencies(t *testing.T) {
	var (
		record = execution.NewExecutionRecord(nil)
		output = execution.NewExecutionRecord(nil)
	)
	//
	record.AddAluEvent(execution.AluEvent{Opcode: execution.ADD, A: 0x04030201, B: 0, C: 0x04030201})
	//
	(&AddChip{}).GenerateDependencies(record, output)
	// The result word demands two pairwise byte range checks.
	require.Equal(t, uint32(1),
		output.ByteLookups[execution.ByteLookupEvent{Op: execution.ByteU8Range, B: 0x01, C: 0x02}])
	require.Equal(t, uint32(1),
		output.ByteLookups[execution.ByteLookupEvent{Op: execution.ByteU8Range, B: 0x03, C: 0x04}])
}

func TestBitwiseChipDependencies(t *testing.T) {
	var (
		record = execution.NewExecutionRecord(nil)
		output = execution.NewExecutionRecord(nil)
	)
	//
	record.AddAluEvent(execution.AluEvent{Opcode: execution.XOR, A: 12 ^ 10, B: 12, C: 10})
	//
	(&BitwiseChip{}).GenerateDependencies(record, output)
	// One lookup for the low limb, three for the zero upper limbs.
	require.Equal(t, uint32(1),
		output.ByteLookups[execution.ByteLookupEvent{Op: execution.ByteXor, A: 12 ^ 10, B: 12, C: 10}])
	require.Equal(t, uint32(3),
		output.ByteLookups[execution.ByteLookupEvent{Op: execution.ByteXor, A: 0, B: 0, C: 0}])
}

func TestByteChipTraceMultiplicities(t *testing.T) {
	record := execution.NewExecutionRecord(nil)
	//
	for i := 0; i < 3; i++ {
		record.AddByteLookupEvent(execution.ByteLookupEvent{Op: execution.ByteXor, A: 25 ^ 10, B: 25, C: 10})
	}
	//
	record.AddU16RangeCheck(0x1234)
	//
	matrix := (&ByteChip{}).GenerateTrace(record)
	require.Equal(t, uint(ByteChipRows), matrix.Height())
	//
	require.Equal(t, field.FromUint(3), matrix.Get(25*256+10, uint(execution.ByteXor)))
	// 0x1234 = 0x34 + 256*0x12 sits on row (b=0x34, c=0x12).
	require.Equal(t, field.One(), matrix.Get(0x34*256+0x12, uint(execution.ByteU16Range)))
}

func TestByteChipPreprocessedTable(t *testing.T) {
	matrix := (&ByteChip{}).GeneratePreprocessedTrace(nil)
	require.Equal(t, uint(bytePrepWidth), matrix.Width())
	//
	row := matrix.Row(200*256 + 78)
	require.Equal(t, field.FromUint(200), row[bytePrepB])
	require.Equal(t, field.FromUint(78), row[bytePrepC])
	require.Equal(t, field.FromUint(200&78), row[bytePrepAnd])
	require.Equal(t, field.FromUint(200|78), row[bytePrepOr])
	require.Equal(t, field.FromUint(200^78), row[bytePrepXor])
	require.Equal(t, field.Zero(), row[bytePrepLtu])
	//
	require.Equal(t, field.One(), matrix.Row(3*256+9)[bytePrepLtu])
}

func TestByteEventRowMapping(t *testing.T) {
	require.Equal(t, uint(7*256+9),
		byteEventRow(execution.ByteLookupEvent{Op: execution.ByteAnd, B: 7, C: 9}))
	require.Equal(t, uint(0xcd*256+0xab),
		byteEventRow(execution.ByteLookupEvent{Op: execution.ByteU16Range, A: 0xabcd}))
}

func TestMemoryGlobalChipTrace(t *testing.T) {
	record := execution.NewExecutionRecord(nil)
	record.MemoryInitializeEvents = []execution.MemoryInitializeFinalizeEvent{
		{Addr: 0, Used: true},
		{Addr: 5, Value: 0x01020304, Used: true},
		{Addr: 0x20000, Used: true},
	}
	//
	chip := NewMemoryGlobalChip(MemoryInitialize)
	matrix := chip.GenerateTrace(record)
	require.Equal(t, chip.Width(), matrix.Width())
	//
	var (
		row0 = matrix.Row(0)
		row1 = matrix.Row(1)
		row2 = matrix.Row(2)
	)
	// Gap 0 -> 5 is 4, entirely in the low diff limb.
	require.Equal(t, field.One(), row0[memIsComp])
	require.Equal(t, field.FromUint(4), row0[memDiffLo])
	require.Equal(t, field.Zero(), row0[memDiffHi])
	// Gap 5 -> 0x20000 is 0x1fffa, split across both limbs.
	require.Equal(t, field.FromUint(0xfffa), row1[memDiffLo])
	require.Equal(t, field.One(), row1[memDiffHi])
	// The final real row is not a comparison row.
	require.Equal(t, field.Zero(), row2[memIsComp])
	// Address bits decompose addr 5 as 101.
	require.Equal(t, field.One(), row1[memAddrBits])
	require.Equal(t, field.Zero(), row1[memAddrBits+1])
	require.Equal(t, field.One(), row1[memAddrBits+2])
	// Value limbs.
	require.Equal(t, field.FromUint(4), row1[memValue])
	require.Equal(t, field.FromUint(1), row1[memValue+3])
}

func TestMemoryGlobalChipDependencies(t *testing.T) {
	var (
		record = execution.NewExecutionRecord(nil)
		output = execution.NewExecutionRecord(nil)
	)
	//
	record.MemoryFinalizeEvents = []execution.MemoryInitializeFinalizeEvent{
		{Addr: 2, Used: true},
		{Addr: 0x20003, Used: true},
	}
	//
	NewMemoryGlobalChip(MemoryFinalize).GenerateDependencies(record, output)
	// Gap minus one is 0x20000, checked as two 16-bit halves.
	require.Equal(t, uint32(1),
		output.ByteLookups[execution.ByteLookupEvent{Op: execution.ByteU16Range, A: 0x0000}])
	require.Equal(t, uint32(1),
		output.ByteLookups[execution.ByteLookupEvent{Op: execution.ByteU16Range, A: 0x0002}])
}

func TestProgramChipTraces(t *testing.T) {
	program := execution.NewProgram(
		execution.I(execution.ADD, 1, 0, 5),
		execution.Halt(),
	)
	//
	chip := &ProgramChip{}
	prep := chip.GeneratePreprocessedTrace(program)
	require.Equal(t, chip.PreprocessedWidth(), prep.Width())
	//
	// First listing row carries the first instruction at the start pc.
	row := prep.Row(0)
	require.Equal(t, field.FromUint(uint64(program.PcBase)), row[programPrepPc])
	require.Equal(t, field.FromUint(uint64(execution.ADD)), row[programPrepOpcode])
	require.Equal(t, field.One(), row[programPrepRd])
	require.Equal(t, field.One(), row[programPrepUsesImm])
	require.Equal(t, field.FromUint(5), row[programPrepImm])
	//
	// Execution counts: run the program and count fetches.
	records, err := execution.Execute(program, execution.ExecOptions{})
	require.NoError(t, err)
	//
	main := (&ProgramChip{}).GenerateTrace(records[0])
	require.Equal(t, field.One(), main.Get(0, 0))
	require.Equal(t, field.One(), main.Get(1, 0))
}

func TestIncludedByFollowsEvents(t *testing.T) {
	program := execution.NewProgram(
		execution.I(execution.ADD, 1, 0, 3),
		execution.R(execution.XOR, 2, 1, 1),
		execution.Halt(),
	)
	//
	records, err := execution.Execute(program, execution.ExecOptions{})
	require.NoError(t, err)
	record := records[0]
	//
	included := map[string]bool{}
	//
	for _, chip := range NewRiscvChips() {
		included[chip.Name()] = chip.IncludedBy(record)
	}
	//
	require.True(t, included["Cpu"])
	require.True(t, included["Add"])
	require.True(t, included["Bitwise"])
	require.True(t, included["Syscall"])
	require.True(t, included["Byte"])
	require.False(t, included["Sub"])
	require.False(t, included["ShiftLeft"])
	require.False(t, included["Lt"])
}

func TestWordHelpers(t *testing.T) {
	limbs := wordLimbs(0x0a0b0c0d)
	require.Equal(t, field.FromUint(0x0d), limbs[0])
	require.Equal(t, field.FromUint(0x0a), limbs[3])
	//
	row := make([]field.F, 6)
	setWord(row, 2, 0xdeadbeef)
	require.Equal(t, field.FromUint(0xef), row[2])
	require.Equal(t, field.FromUint(0xde), row[5])
}
