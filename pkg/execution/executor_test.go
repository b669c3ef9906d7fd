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
package execution

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

func TestExecuteStraightLine(t *testing.T) {
	program := NewProgram(
		I(ADD, 1, 0, 5),  // x1 = 5
		I(ADD, 2, 0, 7),  // x2 = 7
		R(ADD, 3, 1, 2),  // x3 = 12
		R(SUB, 4, 2, 1),  // x4 = 2
		R(SLTU, 5, 1, 2), // x5 = 1
		Halt(),
	)
	//
	records, err := Execute(program, ExecOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	//
	record := records[0]
	require.Len(t, record.CpuEvents, 6)
	require.Len(t, record.SyscallEvents, 1)
	require.Equal(t, SyscallHalt, record.SyscallEvents[0].SyscallID)
	//
	// The ALU results land in the events and in the finalize image.
	require.Equal(t, uint32(12), record.CpuEvents[2].A)
	require.Equal(t, uint32(2), record.CpuEvents[3].A)
	require.Equal(t, uint32(1), record.CpuEvents[4].A)
	//
	finalized := map[uint32]uint32{}
	//
	for _, e := range record.MemoryFinalizeEvents {
		finalized[e.Addr] = e.Value
	}
	//
	require.Equal(t, uint32(5), finalized[1])
	require.Equal(t, uint32(12), finalized[3])
	require.Equal(t, uint32(0), finalized[31])
	//
	// Halting zeroes the next pc of both the last event and the shard.
	require.Equal(t, uint32(0), record.CpuEvents[5].NextPc)
	require.Equal(t, uint32(0), record.PublicValues.NextPc)
	require.Equal(t, program.PcStart, record.PublicValues.StartPc)
}

func TestExecuteBitwiseAndShift(t *testing.T) {
	program := NewProgram(
		I(ADD, 1, 0, 0b1100),
		I(ADD, 2, 0, 0b1010),
		R(XOR, 3, 1, 2),
		R(OR, 4, 1, 2),
		R(AND, 5, 1, 2),
		I(SLL, 6, 1, 4),
		Halt(),
	)
	//
	records, err := Execute(program, ExecOptions{})
	require.NoError(t, err)
	//
	events := records[0].CpuEvents
	require.Equal(t, uint32(0b0110), events[2].A)
	require.Equal(t, uint32(0b1110), events[3].A)
	require.Equal(t, uint32(0b1000), events[4].A)
	require.Equal(t, uint32(0b1100<<4), events[5].A)
}

func TestExecuteShardSplitting(t *testing.T) {
	instructions := make([]Instruction, 0, 11)
	//
	for i := 0; i < 10; i++ {
		instructions = append(instructions, I(ADD, 1, 1, 1))
	}
	//
	instructions = append(instructions, Halt())
	program := NewProgram(instructions...)
	//
	records, err := Execute(program, ExecOptions{MaxShardRows: 4})
	require.NoError(t, err)
	require.Len(t, records, 3)
	//
	for i, record := range records {
		require.Equal(t, uint32(i+1), record.Shard)
		require.Equal(t, uint32(i+1), record.PublicValues.Shard)
		require.LessOrEqual(t, len(record.CpuEvents), 4)
		//
		if i > 0 {
			prev := records[i-1].PublicValues
			require.Equal(t, prev.NextPc, record.PublicValues.StartPc)
			require.Equal(t, BitsToAddr(prev.LastInitAddrBits), BitsToAddr(record.PublicValues.PrevInitAddrBits))
		}
	}
	//
	// Initialization happens once, finalization once, at opposite ends.
	require.Len(t, records[0].MemoryInitializeEvents, NumRegisters)
	require.Empty(t, records[1].MemoryInitializeEvents)
	require.Empty(t, records[0].MemoryFinalizeEvents)
	require.Len(t, records[len(records)-1].MemoryFinalizeEvents, NumRegisters)
}

func TestExecuteMemoryTimestampsIncrease(t *testing.T) {
	program := NewProgram(
		I(ADD, 1, 0, 1),
		R(ADD, 1, 1, 1),
		R(ADD, 1, 1, 1),
		Halt(),
	)
	//
	records, err := Execute(program, ExecOptions{})
	require.NoError(t, err)
	//
	// Each rs1 read of x1 sees the previous write of x1 strictly before it.
	for _, e := range records[0].CpuEvents[1:3] {
		require.Equal(t, records[0].Shard, e.BRecord.PrevShard)
		require.Less(t, e.BRecord.PrevTimestamp, e.BRecord.Timestamp)
	}
}

func TestExecutePcEscapeFails(t *testing.T) {
	// No halt: the pc walks off the end of the listing.
	program := NewProgram(I(ADD, 1, 0, 1))
	//
	_, err := Execute(program, ExecOptions{})
	require.Error(t, err)
}

func TestMergeByteLookupsIsOrderInsensitive(t *testing.T) {
	build := func(order []uint8) *ExecutionRecord {
		r := NewExecutionRecord(nil)
		//
		for _, v := range order {
			r.AddU8RangeCheck(v, v+1)
		}
		//
		r.AddU16RangeCheck(0x1234)
		//
		return r
	}
	//
	var (
		a     = build([]uint8{1, 2, 3, 1})
		b     = build([]uint8{1, 1, 2, 3})
		extra = NewExecutionRecord(nil)
	)
	//
	extra.AddU8RangeCheck(9, 9)
	//
	a.MergeByteLookups(extra)
	b.MergeByteLookups(extra)
	//
	require.Equal(t, a.SortedByteLookups(), b.SortedByteLookups())
}

func TestPublicValuesVecRoundTrip(t *testing.T) {
	pv := NewPublicValues()
	pv.StartPc = 0x1000
	pv.NextPc = 0x1004
	pv.Shard = 3
	pv.ExecutionShard = 3
	pv.LastInitAddrBits = AddrToBits(31)
	pv.LastFinalizeAddrBits = AddrToBits(17)
	//
	back, err := PublicValuesFromVec(pv.ToVec())
	require.NoError(t, err)
	//
	require.Equal(t, pv.StartPc, back.StartPc)
	require.Equal(t, pv.NextPc, back.NextPc)
	require.Equal(t, pv.Shard, back.Shard)
	require.Equal(t, uint32(31), BitsToAddr(back.LastInitAddrBits))
	require.Equal(t, uint32(17), BitsToAddr(back.LastFinalizeAddrBits))
}

func TestPublicValuesFromVecRejectsBadShape(t *testing.T) {
	pv := NewPublicValues()
	vec := pv.ToVec()
	//
	_, err := PublicValuesFromVec(vec[:PvLen-1])
	require.Error(t, err)
	//
	// A non-bit value inside a bit-vector region is rejected.
	vec[PvLastInitAddrBits] = field.FromUint(2)
	_, err = PublicValuesFromVec(vec)
	require.Error(t, err)
}

func TestAddrBitsRoundTrip(t *testing.T) {
	for _, addr := range []uint32{0, 1, 31, 0xdeadbeef, ^uint32(0)} {
		require.Equal(t, addr, BitsToAddr(AddrToBits(addr)))
	}
}
