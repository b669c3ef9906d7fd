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

// NumRegisters is the size of the register file, which is also the machine's
// memory image for the purposes of the continuation argument.
const NumRegisters = 32

// PcStep is the program counter increment between consecutive instructions.
const PcStep = 4

// Instruction is one decoded instruction.
type Instruction struct {
	Opcode  Opcode
	Rd      uint32
	Rs1     uint32
	Rs2     uint32
	UsesImm bool
	Imm     uint32
}

// Program is a static instruction listing, the unit a proving key is built
// for.
type Program struct {
	Instructions []Instruction
	// PcStart is the entry point.
	PcStart uint32
	// PcBase is the address of Instructions[0].
	PcBase uint32
}

// NewProgram constructs a program starting and based at pc 0.
func NewProgram(instructions ...Instruction) *Program {
	return &Program{Instructions: instructions}
}

// FetchIndex maps a program counter to an instruction index, or false when
// pc is outside the listing.
func (p *Program) FetchIndex(pc uint32) (uint32, bool) {
	if pc < p.PcBase {
		return 0, false
	}
	//
	idx := (pc - p.PcBase) / PcStep
	//
	if uint64(idx) >= uint64(len(p.Instructions)) || (pc-p.PcBase)%PcStep != 0 {
		return 0, false
	}
	//
	return idx, true
}

// R constructs a register/register instruction.
func R(op Opcode, rd, rs1, rs2 uint32) Instruction {
	return Instruction{Opcode: op, Rd: rd, Rs1: rs1, Rs2: rs2}
}

// I constructs a register/immediate instruction.
func I(op Opcode, rd, rs1, imm uint32) Instruction {
	return Instruction{Opcode: op, Rd: rd, Rs1: rs1, UsesImm: true, Imm: imm}
}

// Halt constructs the halting ECALL.
func Halt() Instruction {
	return Instruction{Opcode: ECALL, UsesImm: true, Imm: SyscallHalt}
}
