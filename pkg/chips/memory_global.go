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

// MemoryChipKind distinguishes the two global memory boundary tables.
type MemoryChipKind uint8

const (
	// MemoryInitialize seeds every cell's first state onto the memory bus.
	MemoryInitialize MemoryChipKind = iota
	// MemoryFinalize retires every cell's last state from the memory bus.
	MemoryFinalize
)

// Main column indices of the global memory chips.
const (
	memIsReal = iota
	memAddr
	memShard
	memClk
	memValue    // 4 limbs
	memAddrBits = memValue + WordLimbs // 32 boolean columns
	memIsComp   = memAddrBits + execution.AddrBitCount
	memDiffLo   = memIsComp + 1
	memDiffHi   = memDiffLo + 1
	memWidth    = memDiffHi + 1
)

// MemoryGlobalChip proves the boundary of a cell's lifetime: the initialize
// table places the initial (shard 0, clk 0) state of every touched address
// on the memory bus, and the finalize table consumes the final state.  Rows
// are sorted by address with strict in-shard ordering, and the first and
// last addresses are exported through the public values so the verifier can
// chain shards together.
type MemoryGlobalChip struct {
	kind MemoryChipKind
}

// NewMemoryGlobalChip constructs the boundary table of the given kind.
func NewMemoryGlobalChip(kind MemoryChipKind) *MemoryGlobalChip {
	return &MemoryGlobalChip{kind: kind}
}

// Name implementation for the Chip interface.
func (p *MemoryGlobalChip) Name() string {
	if p.kind == MemoryInitialize {
		return "MemoryInit"
	}
	//
	return "MemoryFinalize"
}

// Width implementation for the Chip interface.
func (p *MemoryGlobalChip) Width() uint { return memWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *MemoryGlobalChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *MemoryGlobalChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix {
	return nil
}

// IncludedBy implementation for the Chip interface.
func (p *MemoryGlobalChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(p.events(record)) > 0
}

func (p *MemoryGlobalChip) events(record *execution.ExecutionRecord) []execution.MemoryInitializeFinalizeEvent {
	if p.kind == MemoryInitialize {
		return record.MemoryInitializeEvents
	}
	//
	return record.MemoryFinalizeEvents
}

// GenerateDependencies implementation for the Chip interface.
func (p *MemoryGlobalChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	events := p.events(record)
	//
	for i := 1; i < len(events); i++ {
		diff := events[i].Addr - events[i-1].Addr - 1
		output.AddU16RangeCheck(uint16(diff))
		output.AddU16RangeCheck(uint16(diff >> 16))
	}
}

// GenerateTrace implementation for the Chip interface.  Events are expected
// in strictly increasing address order; the executor produces them that way.
func (p *MemoryGlobalChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	var (
		events = p.events(record)
		matrix = trace.NewMatrix(memWidth, uint(len(events)))
	)
	//
	for i, e := range events {
		row := matrix.Row(uint(i))
		row[memIsReal] = field.One()
		row[memAddr] = field.FromUint(uint64(e.Addr))
		row[memShard] = field.FromUint(uint64(e.Shard))
		row[memClk] = field.FromUint(uint64(e.Timestamp))
		setWord(row, memValue, e.Value)
		//
		for j := uint(0); j < execution.AddrBitCount; j++ {
			if (e.Addr>>j)&1 == 1 {
				row[memAddrBits+j] = field.One()
			}
		}
		//
		if i+1 < len(events) {
			diff := events[i+1].Addr - e.Addr - 1
			row[memIsComp] = field.One()
			row[memDiffLo] = field.FromUint(uint64(diff & 0xffff))
			row[memDiffHi] = field.FromUint(uint64(diff >> 16))
		}
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *MemoryGlobalChip) Eval(b *air.Builder) {
	var (
		isReal = air.Local(memIsReal)
		addr   = air.Local(memAddr)
		isComp = air.Local(memIsComp)
	)
	//
	b.AssertBool(isReal)
	// Real rows form a prefix.
	b.AssertZero(air.Mul(air.Transition(), air.Next(memIsReal), air.Sub(air.C(1), isReal)))
	// The address decomposes into its exported bit columns.
	recomposed := air.Expr(air.C(0))
	//
	for i := uint(0); i < execution.AddrBitCount; i++ {
		b.AssertBool(air.Local(memAddrBits + i))
		recomposed = air.Add(recomposed, air.Scale(uint64(1)<<i, air.Local(memAddrBits+i)))
	}
	//
	b.AssertZero(air.Mul(isReal, air.Sub(addr, recomposed)))
	// A comparison row is exactly a real row followed by another real row.
	b.AssertBool(isComp)
	b.AssertZero(air.Mul(air.Transition(),
		air.Sub(air.Mul(isReal, air.Next(memIsReal)), isComp)))
	b.AssertZero(air.Mul(air.Last(), isComp))
	// Strictly increasing addresses, shown by a 32-bit decomposition of the
	// gap minus one.
	b.AssertZero(air.Mul(isComp, air.Sub(
		air.Sub(air.Next(memAddr), addr),
		air.Add(air.C(1), air.Local(memDiffLo), air.Scale(1<<16, air.Local(memDiffHi))))))
	//
	b.SendByte(isComp, byteValues(air.C(uint64(execution.ByteU16Range)),
		air.Local(memDiffLo), air.C(0), air.C(0))...)
	b.SendByte(isComp, byteValues(air.C(uint64(execution.ByteU16Range)),
		air.Local(memDiffHi), air.C(0), air.C(0))...)
	// The last real address is exported through the public values.
	lastBits := p.lastBitsOffset()
	exported := air.Expr(air.C(0))
	//
	for i := uint(0); i < execution.AddrBitCount; i++ {
		exported = air.Add(exported, air.Scale(uint64(1)<<i, air.Pub(lastBits+i)))
	}
	//
	b.AssertZero(air.Mul(air.Transition(),
		air.Sub(isReal, air.Next(memIsReal)), air.Sub(addr, exported)))
	b.AssertZero(air.Mul(air.Last(), isReal, air.Sub(addr, exported)))
	// Bus contribution: initialization seeds state, finalization retires it.
	values := []air.Expr{addr, air.Local(memShard), air.Local(memClk)}
	values = append(values, wordExprs(memValue)...)
	//
	if p.kind == MemoryInitialize {
		b.SendMemory(isReal, values...)
	} else {
		b.ReceiveMemory(isReal, values...)
	}
}

func (p *MemoryGlobalChip) lastBitsOffset() uint {
	if p.kind == MemoryInitialize {
		return execution.PvLastInitAddrBits
	}
	//
	return execution.PvLastFinalizeAddrBits
}
