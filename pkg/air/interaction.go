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
package air

// BusKind identifies one of the machine's shared interaction buses.  Sends
// and receives on the same bus with matching value tuples must balance
// globally, across all chips and shards.
type BusKind uint8

const (
	// AluBus carries (opcode, a, b, c) operation claims from the CPU to the
	// arithmetic chips.
	AluBus BusKind = iota
	// ByteBus carries byte-level operation and range-check lookups into the
	// shared byte table.
	ByteBus
	// MemoryBus carries (addr, shard, clk, value) memory cell states; each
	// access receives the previous state and sends the new one.
	MemoryBus
	// ProgramBus carries (pc, instruction) lookups into the program table.
	ProgramBus
	// SyscallBus carries precompile invocations from ECALL rows.
	SyscallBus
	// FieldBus is reserved for field-operation precompiles.
	FieldBus
)

// String implementation for the Stringer interface.
func (k BusKind) String() string {
	switch k {
	case AluBus:
		return "alu"
	case ByteBus:
		return "byte"
	case MemoryBus:
		return "memory"
	case ProgramBus:
		return "program"
	case SyscallBus:
		return "syscall"
	case FieldBus:
		return "field"
	default:
		return "unknown"
	}
}

// Interaction is a declared send or receive on a bus.  Values and
// multiplicity must be affine (degree at most one) in the trace variables so
// that the permutation argument's constraint degree stays bounded; this is a
// structural convention checked when a machine is assembled.
type Interaction struct {
	// Bus this interaction lives on.
	Bus BusKind
	// Values is the tuple being claimed (send) or looked up (receive).
	Values []Expr
	// Multiplicity is the number of times this row claims the tuple.  It
	// must evaluate to zero on padding rows.
	Multiplicity Expr
	// IsSend distinguishes the two directions.  Sends contribute positively
	// to the bus balance, receives negatively.
	IsSend bool
}
