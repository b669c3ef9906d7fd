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

// Main column indices of the syscall chip.
const (
	syscallIsReal = iota
	syscallShard
	syscallClk
	syscallID
	syscallWidth
)

// SyscallChip absorbs the precompile invocations the cpu chip dispatches.
// It records each invocation so that the bus accounts for every ECALL; the
// precompile tables themselves would hang off this chip in a fuller machine.
type SyscallChip struct{}

// Name implementation for the Chip interface.
func (p *SyscallChip) Name() string { return "Syscall" }

// Width implementation for the Chip interface.
func (p *SyscallChip) Width() uint { return syscallWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *SyscallChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *SyscallChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix {
	return nil
}

// IncludedBy implementation for the Chip interface.
func (p *SyscallChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.SyscallEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *SyscallChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
}

// GenerateTrace implementation for the Chip interface.
func (p *SyscallChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(syscallWidth, uint(len(record.SyscallEvents)))
	//
	for i, e := range record.SyscallEvents {
		row := matrix.Row(uint(i))
		row[syscallIsReal] = field.One()
		row[syscallShard] = field.FromUint(uint64(e.Shard))
		row[syscallClk] = field.FromUint(uint64(e.Clk))
		row[syscallID] = field.FromUint(uint64(e.SyscallID))
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *SyscallChip) Eval(b *air.Builder) {
	isReal := air.Local(syscallIsReal)
	b.AssertBool(isReal)
	//
	b.ReceiveSyscall(isReal,
		air.Local(syscallShard), air.Local(syscallClk), air.Local(syscallID))
}
