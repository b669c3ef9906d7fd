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

// Preprocessed column indices of the program chip.
const (
	programPrepPc = iota
	programPrepOpcode
	programPrepRd
	programPrepRs1
	programPrepRs2
	programPrepUsesImm
	programPrepImm // 4 limbs
	programPrepWidth = programPrepImm + WordLimbs
)

// ProgramChip publishes the instruction listing.  The listing itself is a
// preprocessed trace fixed per program; the single main column counts how
// many times each instruction was executed, which weights the send so that
// every cpu fetch finds its instruction on the bus.
type ProgramChip struct{}

// Name implementation for the Chip interface.
func (p *ProgramChip) Name() string { return "Program" }

// Width implementation for the Chip interface.
func (p *ProgramChip) Width() uint { return 1 }

// PreprocessedWidth implementation for the Chip interface.
func (p *ProgramChip) PreprocessedWidth() uint { return programPrepWidth }

// IncludedBy implementation for the Chip interface.
func (p *ProgramChip) IncludedBy(record *execution.ExecutionRecord) bool { return true }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *ProgramChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix {
	matrix := trace.NewMatrix(programPrepWidth, uint(len(program.Instructions)))
	//
	for i, instr := range program.Instructions {
		row := matrix.Row(uint(i))
		row[programPrepPc] = field.FromUint(uint64(program.PcBase) + uint64(i)*execution.PcStep)
		row[programPrepOpcode] = field.FromUint(uint64(instr.Opcode))
		row[programPrepRd] = field.FromUint(uint64(instr.Rd))
		row[programPrepRs1] = field.FromUint(uint64(instr.Rs1))
		row[programPrepRs2] = field.FromUint(uint64(instr.Rs2))
		//
		if instr.UsesImm {
			row[programPrepUsesImm] = field.One()
		}
		//
		setWord(row, programPrepImm, instr.Imm)
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// GenerateDependencies implementation for the Chip interface.
func (p *ProgramChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
}

// GenerateTrace implementation for the Chip interface.
func (p *ProgramChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	var (
		height = trace.NextPowerOfTwo(uint(len(record.Program.Instructions)))
		matrix = trace.NewMatrix(1, height)
		counts = make(map[uint32]uint64)
	)
	//
	for _, e := range record.CpuEvents {
		if idx, ok := record.Program.FetchIndex(e.Pc); ok {
			counts[idx]++
		}
	}
	//
	for idx, count := range counts {
		matrix.Set(uint(idx), 0, field.FromUint(count))
	}
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *ProgramChip) Eval(b *air.Builder) {
	values := []air.Expr{
		air.PreLocal(programPrepPc),
		air.PreLocal(programPrepOpcode),
		air.PreLocal(programPrepRd),
		air.PreLocal(programPrepRs1),
		air.PreLocal(programPrepRs2),
		air.PreLocal(programPrepUsesImm),
	}
	//
	for i := uint(0); i < WordLimbs; i++ {
		values = append(values, air.PreLocal(programPrepImm+i))
	}
	//
	b.SendProgram(air.Local(0), values...)
}
