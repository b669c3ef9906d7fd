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

// Package execution defines the event shapes the proof engine consumes from
// an executor: per-opcode events, memory access records with their previous
// states, the global memory boundary events, byte-lookup multiplicities and
// the shard public values vector.  A minimal reference executor for the
// supported instruction subset lives here too, so tests and the demo CLI
// have a source of fully consistent records.
package execution

import "fmt"

// Opcode enumerates the supported instruction set.
type Opcode uint32

const (
	// ADD computes a = b + c (mod 2^32).
	ADD Opcode = iota
	// SUB computes a = b - c (mod 2^32).
	SUB
	// XOR computes a = b ^ c.
	XOR
	// OR computes a = b | c.
	OR
	// AND computes a = b & c.
	AND
	// SLL computes a = b << (c & 31).
	SLL
	// SLTU computes a = 1 if b < c else 0 (unsigned).
	SLTU
	// ECALL invokes a system call; id 0 halts the machine.
	ECALL
)

// String implementation for the Stringer interface.
func (op Opcode) String() string {
	names := [...]string{"add", "sub", "xor", "or", "and", "sll", "sltu", "ecall"}
	//
	if int(op) < len(names) {
		return names[op]
	}
	//
	return fmt.Sprintf("op(%d)", uint32(op))
}

// IsAlu reports whether the opcode is handled by an arithmetic chip.
func (op Opcode) IsAlu() bool {
	return op != ECALL
}

// SyscallHalt is the system call id which stops execution.
const SyscallHalt uint32 = 0

// MemoryRecord is the state of one memory cell at one point in time.
type MemoryRecord struct {
	Shard     uint32
	Timestamp uint32
	Value     uint32
}

// MemoryReadRecord captures a read access together with the previous state
// of the cell.  The previous (shard, timestamp) must be lexicographically
// smaller than the access's own; violating that is an executor bug.
type MemoryReadRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// MemoryWriteRecord captures a write access; unlike a read it also carries
// the value being overwritten.
type MemoryWriteRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevValue     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// NewMemoryReadRecord constructs a read record, enforcing the timestamp
// ordering invariant at construction.
func NewMemoryReadRecord(value uint32, shard, timestamp, prevShard, prevTimestamp uint32) MemoryReadRecord {
	assertOrdered(prevShard, prevTimestamp, shard, timestamp)
	//
	return MemoryReadRecord{value, shard, timestamp, prevShard, prevTimestamp}
}

// NewMemoryWriteRecord constructs a write record, enforcing the timestamp
// ordering invariant at construction.
func NewMemoryWriteRecord(value uint32, shard, timestamp uint32, prevValue, prevShard, prevTimestamp uint32) MemoryWriteRecord {
	assertOrdered(prevShard, prevTimestamp, shard, timestamp)
	//
	return MemoryWriteRecord{value, shard, timestamp, prevValue, prevShard, prevTimestamp}
}

func assertOrdered(prevShard, prevTs, shard, ts uint32) {
	if prevShard > shard || (prevShard == shard && prevTs >= ts) {
		panic(fmt.Sprintf("memory access at (%d, %d) does not follow its previous access at (%d, %d)",
			shard, ts, prevShard, prevTs))
	}
}

// AluEvent is one arithmetic operation: a = op(b, c).
type AluEvent struct {
	Opcode Opcode
	Shard  uint32
	Clk    uint32
	A      uint32
	B      uint32
	C      uint32
}

// CpuEvent is one executed instruction, with the register file accesses it
// performed.  CRecord is nil when the instruction used an immediate operand.
type CpuEvent struct {
	Shard       uint32
	Clk         uint32
	Pc          uint32
	NextPc      uint32
	Instruction Instruction
	A           uint32
	B           uint32
	C           uint32
	ARecord     MemoryWriteRecord
	BRecord     MemoryReadRecord
	CRecord     *MemoryReadRecord
	DidWrite    bool
}

// SyscallEvent is one precompile invocation.
type SyscallEvent struct {
	Shard     uint32
	Clk       uint32
	SyscallID uint32
}

// MemoryInitializeFinalizeEvent marks the global first (initialize) or last
// (finalize) touch of an address over the whole multi-shard execution.
type MemoryInitializeFinalizeEvent struct {
	Addr      uint32
	Value     uint32
	Shard     uint32
	Timestamp uint32
	Used      bool
}

// ByteOpcode enumerates the operations of the shared byte table.
type ByteOpcode uint32

const (
	// ByteAnd looks up a = b & c.
	ByteAnd ByteOpcode = iota
	// ByteOr looks up a = b | c.
	ByteOr
	// ByteXor looks up a = b ^ c.
	ByteXor
	// ByteLtu looks up a = (b < c).
	ByteLtu
	// ByteU8Range checks that b and c are bytes.
	ByteU8Range
	// ByteU16Range checks that a is a 16-bit value (decomposed into the
	// table's pair coordinates).
	ByteU16Range
)

// NumByteOpcodes is the number of byte table operations.
const NumByteOpcodes = 6

// ByteLookupEvent is one requested byte table lookup.  It doubles as the
// multiplicity map key, so it must remain comparable.
type ByteLookupEvent struct {
	Op ByteOpcode
	A  uint16
	B  uint8
	C  uint8
}
