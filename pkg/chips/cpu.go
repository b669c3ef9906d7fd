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

// Main column indices of the cpu chip.
const (
	cpuIsReal = iota
	cpuShard
	cpuClk
	cpuPc
	cpuNextPc
	cpuOpcode
	cpuRd
	cpuRs1
	cpuRs2
	cpuUsesImm
	cpuImm      // 4 limbs
	cpuAVal     = cpuImm + WordLimbs      // 4 limbs
	cpuBVal     = cpuAVal + WordLimbs     // 4 limbs
	cpuRs2Val   = cpuBVal + WordLimbs     // 4 limbs
	cpuCVal     = cpuRs2Val + WordLimbs   // 4 limbs
	cpuPrevAVal = cpuCVal + WordLimbs     // 4 limbs
	cpuIsAlu    = cpuPrevAVal + WordLimbs
	cpuSelEcall = cpuIsAlu + 1
	cpuIsHalt   = cpuSelEcall + 1
	cpuDoRs2    = cpuIsHalt + 1
	cpuAccessB  = cpuDoRs2 + 1
	cpuAccessC  = cpuAccessB + accessCols
	cpuAccessA  = cpuAccessC + accessCols
	cpuWidth    = cpuAccessA + accessCols
)

// Column offsets within one register access gadget.
const (
	accessPrevShard = iota
	accessPrevClk
	accessSameShard
	accessDiff16
	accessDiff8
	accessCols
)

// CpuChip proves the instruction cycle: it fetches from the program bus,
// reads and writes the register file over the memory bus, and dispatches
// the operation to the ALU tables or the syscall chip.  Each register
// access carries an ordering gadget proving the access strictly follows the
// cell's previous touch in (shard, clk) order.
type CpuChip struct{}

// Name implementation for the Chip interface.
func (p *CpuChip) Name() string { return "Cpu" }

// Width implementation for the Chip interface.
func (p *CpuChip) Width() uint { return cpuWidth }

// PreprocessedWidth implementation for the Chip interface.
func (p *CpuChip) PreprocessedWidth() uint { return 0 }

// GeneratePreprocessedTrace implementation for the Chip interface.
func (p *CpuChip) GeneratePreprocessedTrace(program *execution.Program) *trace.Matrix { return nil }

// IncludedBy implementation for the Chip interface.
func (p *CpuChip) IncludedBy(record *execution.ExecutionRecord) bool {
	return len(record.CpuEvents) > 0
}

// GenerateDependencies implementation for the Chip interface.
func (p *CpuChip) GenerateDependencies(record *execution.ExecutionRecord, output *execution.ExecutionRecord) {
	for _, e := range record.CpuEvents {
		addAccessRangeChecks(output, e.Shard, e.BRecord.Timestamp,
			e.BRecord.PrevShard, e.BRecord.PrevTimestamp)
		//
		if e.CRecord != nil {
			addAccessRangeChecks(output, e.Shard, e.CRecord.Timestamp,
				e.CRecord.PrevShard, e.CRecord.PrevTimestamp)
		}
		//
		if e.DidWrite {
			addAccessRangeChecks(output, e.Shard, e.ARecord.Timestamp,
				e.ARecord.PrevShard, e.ARecord.PrevTimestamp)
		}
	}
}

// GenerateTrace implementation for the Chip interface.
func (p *CpuChip) GenerateTrace(record *execution.ExecutionRecord) *trace.Matrix {
	matrix := trace.NewMatrix(cpuWidth, uint(len(record.CpuEvents)))
	//
	for i, e := range record.CpuEvents {
		var (
			row   = matrix.Row(uint(i))
			instr = e.Instruction
		)
		//
		row[cpuIsReal] = field.One()
		row[cpuShard] = field.FromUint(uint64(e.Shard))
		row[cpuClk] = field.FromUint(uint64(e.Clk))
		row[cpuPc] = field.FromUint(uint64(e.Pc))
		row[cpuNextPc] = field.FromUint(uint64(e.NextPc))
		row[cpuOpcode] = field.FromUint(uint64(instr.Opcode))
		row[cpuRd] = field.FromUint(uint64(instr.Rd))
		row[cpuRs1] = field.FromUint(uint64(instr.Rs1))
		row[cpuRs2] = field.FromUint(uint64(instr.Rs2))
		//
		if instr.UsesImm {
			row[cpuUsesImm] = field.One()
		}
		//
		setWord(row, cpuImm, instr.Imm)
		setWord(row, cpuAVal, e.A)
		setWord(row, cpuBVal, e.B)
		setWord(row, cpuCVal, e.C)
		//
		if instr.Opcode.IsAlu() {
			row[cpuIsAlu] = field.One()
			setWord(row, cpuPrevAVal, e.ARecord.PrevValue)
			fillAccessGadget(row, cpuAccessA, e.Shard,
				e.ARecord.Timestamp, e.ARecord.PrevShard, e.ARecord.PrevTimestamp)
		} else {
			row[cpuSelEcall] = field.One()
			//
			if e.C == execution.SyscallHalt {
				row[cpuIsHalt] = field.One()
			}
		}
		//
		fillAccessGadget(row, cpuAccessB, e.Shard,
			e.BRecord.Timestamp, e.BRecord.PrevShard, e.BRecord.PrevTimestamp)
		//
		if e.CRecord != nil {
			row[cpuDoRs2] = field.One()
			setWord(row, cpuRs2Val, e.CRecord.Value)
			fillAccessGadget(row, cpuAccessC, e.Shard,
				e.CRecord.Timestamp, e.CRecord.PrevShard, e.CRecord.PrevTimestamp)
		}
	}
	//
	matrix.PadToPowerOfTwo()
	//
	return matrix
}

// Eval implementation for the Chip interface.
func (p *CpuChip) Eval(b *air.Builder) {
	var (
		isReal   = air.Local(cpuIsReal)
		shard    = air.Local(cpuShard)
		clk      = air.Local(cpuClk)
		pc       = air.Local(cpuPc)
		nextPc   = air.Local(cpuNextPc)
		usesImm  = air.Local(cpuUsesImm)
		isAlu    = air.Local(cpuIsAlu)
		selEcall = air.Local(cpuSelEcall)
		isHalt   = air.Local(cpuIsHalt)
		doRs2    = air.Local(cpuDoRs2)
	)
	//
	b.AssertBool(isReal)
	b.AssertBool(usesImm)
	b.AssertBool(isAlu)
	b.AssertBool(selEcall)
	b.AssertBool(isHalt)
	// Every real instruction is exactly one of the two classes.
	b.AssertEq(air.Add(isAlu, selEcall), isReal)
	b.AssertZero(air.Mul(isHalt, air.Sub(air.C(1), selEcall)))
	b.AssertZero(air.Mul(selEcall, air.Sub(air.Local(cpuOpcode), air.C(uint64(execution.ECALL)))))
	// The rs2 read happens exactly on real register-operand rows.
	b.AssertEq(doRs2, air.Mul(isReal, air.Sub(air.C(1), usesImm)))
	// Operand c muxes between the immediate and the rs2 read.
	for i := uint(0); i < WordLimbs; i++ {
		b.AssertEq(air.Local(cpuCVal+i), air.Add(
			air.Mul(usesImm, air.Local(cpuImm+i)),
			air.Mul(air.Sub(air.C(1), usesImm), air.Local(cpuRs2Val+i))))
	}
	// Instruction fetch.
	fetch := []air.Expr{pc, air.Local(cpuOpcode), air.Local(cpuRd),
		air.Local(cpuRs1), air.Local(cpuRs2), usesImm}
	fetch = append(fetch, wordExprs(cpuImm)...)
	b.ReceiveProgram(isReal, fetch...)
	// ALU dispatch.
	b.SendAlu(isAlu, aluValues(air.Local(cpuOpcode), cpuAVal, cpuBVal, cpuCVal)...)
	// Syscall dispatch; the identifier is the full c operand.
	syscallID := wordValue(cpuCVal)
	b.SendSyscall(selEcall, shard, clk, syscallID)
	// Halting forces a zero identifier and a zero next pc; every other real
	// row advances the pc by one instruction.
	b.AssertZero(air.Mul(isHalt, syscallID))
	b.AssertZero(air.Mul(isHalt, nextPc))
	b.AssertZero(air.Mul(air.Sub(isReal, isHalt),
		air.Sub(nextPc, air.Add(pc, air.C(execution.PcStep)))))
	// Register file accesses.  Reads place the value they saw back on the
	// bus; the rd write replaces the previous value.
	evalRegisterAccess(b, isReal, cpuAccessB,
		air.Local(cpuRs1), air.C(execution.TsOffsetB), wordExprs(cpuBVal), wordExprs(cpuBVal))
	evalRegisterAccess(b, doRs2, cpuAccessC,
		air.Local(cpuRs2), air.C(execution.TsOffsetC), wordExprs(cpuRs2Val), wordExprs(cpuRs2Val))
	evalRegisterAccess(b, isAlu, cpuAccessA,
		air.Local(cpuRd), air.C(execution.TsOffsetA), wordExprs(cpuPrevAVal), wordExprs(cpuAVal))
	// Real rows form a prefix of the trace.
	b.AssertZero(air.Mul(air.Transition(), air.Next(cpuIsReal), air.Sub(air.C(1), isReal)))
	// Consecutive real rows chain pc, clk and shard.
	b.AssertZero(air.Mul(air.Transition(), air.Next(cpuIsReal),
		air.Sub(air.Next(cpuPc), nextPc)))
	b.AssertZero(air.Mul(air.Transition(), air.Next(cpuIsReal),
		air.Sub(air.Next(cpuClk), air.Add(clk, air.C(execution.ClkStep)))))
	b.AssertZero(air.Mul(air.Transition(), air.Next(cpuIsReal),
		air.Sub(air.Next(cpuShard), shard)))
	// Boundary conditions against the shard's public values.
	b.AssertZero(air.Mul(air.First(), isReal, air.Sub(clk, air.C(execution.ClkStep))))
	b.AssertZero(air.Mul(air.First(), isReal, air.Sub(pc, air.Pub(execution.PvStartPc))))
	b.AssertZero(air.Mul(isReal, air.Sub(shard, air.Pub(execution.PvShard))))
	// The final real row's next pc is the shard's exported continuation
	// point, whether the trace ends mid-domain or at the last row.
	b.AssertZero(air.Mul(air.Transition(),
		air.Sub(isReal, air.Next(cpuIsReal)),
		air.Sub(nextPc, air.Pub(execution.PvNextPc))))
	b.AssertZero(air.Mul(air.Last(), isReal,
		air.Sub(nextPc, air.Pub(execution.PvNextPc))))
}

// evalRegisterAccess wires one register access: it consumes the cell's
// previous state from the memory bus, publishes the new state, and proves
// the access strictly follows the previous one in (shard, clk) order.
func evalRegisterAccess(b *air.Builder, do air.Expr, base uint, addr, tsOffset air.Expr,
	prevValue, value []air.Expr) {
	var (
		shard     = air.Local(cpuShard)
		ts        = air.Add(air.Local(cpuClk), tsOffset)
		prevShard = air.Local(base + accessPrevShard)
		prevClk   = air.Local(base + accessPrevClk)
		sameShard = air.Local(base + accessSameShard)
		d16       = air.Local(base + accessDiff16)
		d8        = air.Local(base + accessDiff8)
	)
	//
	b.AssertBool(sameShard)
	b.AssertZero(air.Mul(do, sameShard, air.Sub(shard, prevShard)))
	// The strict ordering check: the elapsed clock within a shard, or the
	// shard distance across shards, is positive, shown by decomposing the
	// distance minus one into 24 bits.
	compared := air.Add(
		air.Mul(sameShard, air.Sub(ts, prevClk)),
		air.Mul(air.Sub(air.C(1), sameShard), air.Sub(shard, prevShard)))
	//
	b.AssertZero(air.Mul(do, air.Sub(compared,
		air.Add(air.C(1), d16, air.Scale(1<<16, d8)))))
	//
	b.SendByte(do, byteValues(air.C(uint64(execution.ByteU16Range)),
		d16, air.C(0), air.C(0))...)
	b.SendByte(do, byteValues(air.C(uint64(execution.ByteU8Range)),
		air.C(0), d8, air.C(0))...)
	// Bus plumbing: consume the previous cell state, publish the new one.
	receive := []air.Expr{addr, prevShard, prevClk}
	receive = append(receive, prevValue...)
	b.ReceiveMemory(do, receive...)
	//
	send := []air.Expr{addr, shard, ts}
	send = append(send, value...)
	b.SendMemory(do, send...)
}

// fillAccessGadget populates one access gadget's columns for a real access.
func fillAccessGadget(row []field.F, base uint, shard, ts, prevShard, prevTs uint32) {
	row[base+accessPrevShard] = field.FromUint(uint64(prevShard))
	row[base+accessPrevClk] = field.FromUint(uint64(prevTs))
	//
	var diff uint32
	//
	if shard == prevShard {
		row[base+accessSameShard] = field.One()
		diff = ts - prevTs
	} else {
		diff = shard - prevShard
	}
	//
	row[base+accessDiff16] = field.FromUint(uint64(diff-1) & 0xffff)
	row[base+accessDiff8] = field.FromUint(uint64(diff-1) >> 16)
}

// addAccessRangeChecks records the byte table demands of one access gadget.
func addAccessRangeChecks(output *execution.ExecutionRecord, shard, ts, prevShard, prevTs uint32) {
	var diff uint32
	//
	if shard == prevShard {
		diff = ts - prevTs
	} else {
		diff = shard - prevShard
	}
	//
	output.AddU16RangeCheck(uint16(diff - 1))
	output.AddU8RangeCheck(uint8((diff-1)>>16), 0)
}
