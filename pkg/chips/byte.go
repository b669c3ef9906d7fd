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

// ByteChipRows is the height of the byte table: one row per (b, c) byte
// pair.  The table is never padded; its height is already a power of two.
const ByteChipRows = 1 << 16

// Preprocessed column indices of the byte table.
const (
	bytePrepB = iota
	bytePrepC
	bytePrepAnd
	bytePrepOr
	bytePrepXor
	bytePrepLtu
	bytePrepWidth
)

// ByteChip is the shared lookup table for all byte operations and range
// checks.  Its preprocessed trace enumerates every byte pair with the
// results of each operation; the main trace holds one multiplicity column
// per operation, counting how often the rest of the machine demanded that
// row.
type ByteChip struct{}

// Name implementation for the Chip interface.
func (p *ByteChip) Name() string { return "Byte" }

// Width implementation for the Chip interface.
func (p *ByteChip) Width() uint { return uint(execution.NumByteOpcodes) }

// PreprocessedWidth implementation for the Chip interface.
func (p *ByteChip) PreprocessedWidth() uint { return bytePrepWidth }

// IncludedBy implementation for the Chip interface.  The byte table is part
// of every shard, since padding traces still balance against it.
func (p *ByteChip) IncludedBy(record *execution.ExecutionRecord) bool { return true }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *ByteChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix {
	matrix := trace.NewMatrix(bytePrepWidth, ByteChipRows)
	//
	for b := uint(0); b < 256; b++ {
		for c := uint(0); c < 256; c++ {
			row := matrix.Row(b*256 + c)
			row[bytePrepB] = field.FromUint(uint64(b))
			row[bytePrepC] = field.FromUint(uint64(c))
			row[bytePrepAnd] = field.FromUint(uint64(b & c))
			row[bytePrepOr] = field.FromUint(uint64(b | c))
			row[bytePrepXor] = field.FromUint(uint64(b ^ c))
			//
			if b < c {
				row[bytePrepLtu] = field.One()
			}
		}
	}
	//
	return matrix
}

// GenerateDependencies implementation for the Chip interface.  The byte
// table is terminal: it never demands lookups of its own.
func (p *ByteChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
}

// GenerateTrace implementation for the Chip interface.
func (p *ByteChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(uint(execution.NumByteOpcodes), ByteChipRows)
	//
	for _, event := range record.SortedByteLookups() {
		var (
			row  = byteEventRow(event)
			col  = uint(event.Op)
			mult = record.ByteLookups[event]
		)
		//
		matrix.Set(row, col, field.FromUint(uint64(mult)))
	}
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *ByteChip) Eval(b *air.Builder) {
	var (
		colB = air.PreLocal(bytePrepB)
		colC = air.PreLocal(bytePrepC)
		ops  = []struct {
			op execution.ByteOpcode
			a  air.Expr
		}{
			{execution.ByteAnd, air.PreLocal(bytePrepAnd)},
			{execution.ByteOr, air.PreLocal(bytePrepOr)},
			{execution.ByteXor, air.PreLocal(bytePrepXor)},
			{execution.ByteLtu, air.PreLocal(bytePrepLtu)},
		}
	)
	// Byte operations carry their result in the a slot.
	for _, op := range ops {
		b.ReceiveByte(air.Local(uint(op.op)),
			byteValues(air.C(uint64(op.op)), op.a, colB, colC)...)
	}
	// U8 range checks carry the two bytes being checked in the b and c
	// slots, with a zero result.
	b.ReceiveByte(air.Local(uint(execution.ByteU8Range)),
		byteValues(air.C(uint64(execution.ByteU8Range)), air.C(0), colB, colC)...)
	// U16 range checks carry the recomposed 16-bit value in the a slot.
	b.ReceiveByte(air.Local(uint(execution.ByteU16Range)),
		byteValues(air.C(uint64(execution.ByteU16Range)),
			air.Add(colB, air.Scale(256, colC)), air.C(0), air.C(0))...)
}

// byteEventRow maps a lookup event to its row in the byte table.
func byteEventRow(e execution.ByteLookupEvent) uint {
	if e.Op == execution.ByteU16Range {
		// The 16-bit value v sits on the row where b + 256c = v.
		return uint(e.A&0xff)*256 + uint(e.A>>8)
	}
	//
	return uint(e.B)*256 + uint(e.C)
}
