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
	"sort"
)

// ExecutionRecord is one shard's worth of events: everything a machine needs
// to generate traces.  The executor owns it; chips read it, and append only
// derived events (byte range checks discovered while building other traces).
type ExecutionRecord struct {
	Program *Program
	// Shard index, starting from 1.
	Shard uint32

	CpuEvents       []CpuEvent
	AddEvents       []AluEvent
	SubEvents       []AluEvent
	BitwiseEvents   []AluEvent
	ShiftLeftEvents []AluEvent
	LtEvents        []AluEvent
	SyscallEvents   []SyscallEvent

	MemoryInitializeEvents []MemoryInitializeFinalizeEvent
	MemoryFinalizeEvents   []MemoryInitializeFinalizeEvent

	// ByteLookups maps requested byte table lookups to their multiplicities.
	ByteLookups map[ByteLookupEvent]uint32

	PublicValues PublicValues
}

// NewExecutionRecord constructs an empty record for the given program.
func NewExecutionRecord(program *Program) *ExecutionRecord {
	return &ExecutionRecord{
		Program:     program,
		ByteLookups: make(map[ByteLookupEvent]uint32),
	}
}

// AddByteLookupEvent bumps the multiplicity of one byte table lookup.
func (r *ExecutionRecord) AddByteLookupEvent(e ByteLookupEvent) {
	r.ByteLookups[e]++
}

// AddU8RangeCheck requests a range check that b and c are bytes.
func (r *ExecutionRecord) AddU8RangeCheck(b, c uint8) {
	r.AddByteLookupEvent(ByteLookupEvent{Op: ByteU8Range, B: b, C: c})
}

// AddU16RangeCheck requests a range check that v is a 16-bit value.
func (r *ExecutionRecord) AddU16RangeCheck(v uint16) {
	r.AddByteLookupEvent(ByteLookupEvent{Op: ByteU16Range, A: v})
}

// AddAluEvent appends an arithmetic event to the list owned by its opcode's
// chip.
func (r *ExecutionRecord) AddAluEvent(e AluEvent) {
	switch e.Opcode {
	case ADD:
		r.AddEvents = append(r.AddEvents, e)
	case SUB:
		r.SubEvents = append(r.SubEvents, e)
	case XOR, OR, AND:
		r.BitwiseEvents = append(r.BitwiseEvents, e)
	case SLL:
		r.ShiftLeftEvents = append(r.ShiftLeftEvents, e)
	case SLTU:
		r.LtEvents = append(r.LtEvents, e)
	default:
		panic("not an ALU opcode: " + e.Opcode.String())
	}
}

// MergeByteLookups folds the byte multiplicities of others into this record.
// Workers each fill a private record; merging afterwards in deterministic
// key-sorted order keeps trace generation reproducible without any shared
// mutable map.
func (r *ExecutionRecord) MergeByteLookups(others ...*ExecutionRecord) {
	seen := make(map[ByteLookupEvent]bool)
	//
	var keys []ByteLookupEvent
	//
	for _, other := range others {
		for k := range other.ByteLookups {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	//
	sort.Slice(keys, func(i, j int) bool { return lessByteLookup(keys[i], keys[j]) })
	//
	for _, k := range keys {
		for _, other := range others {
			r.ByteLookups[k] += other.ByteLookups[k]
		}
	}
}

func lessByteLookup(x, y ByteLookupEvent) bool {
	if x.Op != y.Op {
		return x.Op < y.Op
	}
	//
	if x.A != y.A {
		return x.A < y.A
	}
	//
	if x.B != y.B {
		return x.B < y.B
	}
	//
	return x.C < y.C
}

// SortedByteLookups returns the multiplicity map as a key-sorted list, the
// canonical iteration order for trace generation.
func (r *ExecutionRecord) SortedByteLookups() []ByteLookupEvent {
	keys := make([]ByteLookupEvent, 0, len(r.ByteLookups))
	//
	for k := range r.ByteLookups {
		keys = append(keys, k)
	}
	//
	sort.Slice(keys, func(i, j int) bool { return lessByteLookup(keys[i], keys[j]) })
	//
	return keys
}
