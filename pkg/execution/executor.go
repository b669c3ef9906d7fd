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
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Intra-row timestamp offsets of the three register file accesses.  Keeping
// them distinct gives every access to the same address a strictly increasing
// timestamp, which the memory argument requires.
const (
	// TsOffsetB is the rs1 read.
	TsOffsetB = 0
	// TsOffsetC is the rs2 read.
	TsOffsetC = 1
	// TsOffsetA is the rd write.
	TsOffsetA = 2
	// ClkStep is the clock increment per executed instruction.
	ClkStep = 4
)

// ExecOptions configures the reference executor.
type ExecOptions struct {
	// MaxShardRows bounds the number of instructions per shard; execution
	// longer than this is split into multiple shards.  Zero means unbounded.
	MaxShardRows uint
	// MaxCycles aborts runaway programs.  Zero means the default bound.
	MaxCycles uint64
}

const defaultMaxCycles = 1 << 22

// Execute runs a program under the reference executor and returns one
// ExecutionRecord per shard.  The records carry every event shape of the
// external executor contract, constructed so that all cross-chip and
// cross-shard invariants hold; proving failures on them indicate engine
// bugs, not input problems.
func Execute(program *Program, opts ExecOptions) ([]*ExecutionRecord, error) {
	if opts.MaxCycles == 0 {
		opts.MaxCycles = defaultMaxCycles
	}
	//
	var (
		exec = &executor{
			program: program,
			opts:    opts,
			pc:      program.PcStart,
			shard:   1,
		}
	)
	//
	exec.startShard()
	//
	if err := exec.run(); err != nil {
		return nil, err
	}
	//
	exec.finish()
	//
	log.Debugf("executed %d cycles over %d shard(s)", exec.cycles, len(exec.records))
	//
	return exec.records, nil
}

type executor struct {
	program *Program
	opts    ExecOptions

	regs   [NumRegisters]uint32
	last   [NumRegisters]MemoryRecord
	pc     uint32
	clk    uint32
	shard  uint32
	halted bool
	cycles uint64

	current *ExecutionRecord
	records []*ExecutionRecord
}

func (e *executor) startShard() {
	e.current = NewExecutionRecord(e.program)
	e.current.Shard = e.shard
	e.clk = 0
	//
	pv := NewPublicValues()
	pv.Shard = e.shard
	pv.ExecutionShard = e.shard
	pv.StartPc = e.pc
	e.current.PublicValues = pv
	//
	if e.shard == 1 {
		// The whole memory image is initialised in the first shard.
		for addr := uint32(0); addr < NumRegisters; addr++ {
			e.current.MemoryInitializeEvents = append(e.current.MemoryInitializeEvents,
				MemoryInitializeFinalizeEvent{Addr: addr, Used: true})
		}
		//
		e.current.PublicValues.LastInitAddrBits = AddrToBits(NumRegisters - 1)
	} else {
		prev := e.records[len(e.records)-1].PublicValues
		e.current.PublicValues.PrevInitAddrBits = prev.LastInitAddrBits.Clone()
		e.current.PublicValues.LastInitAddrBits = prev.LastInitAddrBits.Clone()
		e.current.PublicValues.PrevFinalizeAddrBits = prev.LastFinalizeAddrBits.Clone()
		e.current.PublicValues.LastFinalizeAddrBits = prev.LastFinalizeAddrBits.Clone()
	}
}

func (e *executor) sealShard() {
	e.current.PublicValues.NextPc = e.pc
	//
	if e.halted {
		e.current.PublicValues.NextPc = 0
	}
	//
	e.records = append(e.records, e.current)
	e.current = nil
}

func (e *executor) run() error {
	for !e.halted {
		if e.cycles >= e.opts.MaxCycles {
			return fmt.Errorf("execution exceeded %d cycles without halting", e.opts.MaxCycles)
		}
		//
		idx, ok := e.program.FetchIndex(e.pc)
		//
		if !ok {
			return fmt.Errorf("program counter %d escaped the program", e.pc)
		}
		//
		e.step(e.program.Instructions[idx])
		e.cycles++
		//
		if !e.halted && e.opts.MaxShardRows > 0 && uint(len(e.current.CpuEvents)) >= e.opts.MaxShardRows {
			e.sealShard()
			e.shard++
			e.startShard()
		}
	}
	//
	return nil
}

// finish seals the final shard and emits the finalize table for the whole
// memory image.
func (e *executor) finish() {
	for addr := uint32(0); addr < NumRegisters; addr++ {
		rec := e.last[addr]
		e.current.MemoryFinalizeEvents = append(e.current.MemoryFinalizeEvents,
			MemoryInitializeFinalizeEvent{
				Addr:      addr,
				Value:     rec.Value,
				Shard:     rec.Shard,
				Timestamp: rec.Timestamp,
				Used:      true,
			})
	}
	//
	e.current.PublicValues.LastFinalizeAddrBits = AddrToBits(NumRegisters - 1)
	e.sealShard()
}

func (e *executor) read(addr uint32, ts uint32) MemoryReadRecord {
	prev := e.last[addr]
	rec := NewMemoryReadRecord(e.regs[addr], e.shard, ts, prev.Shard, prev.Timestamp)
	e.last[addr] = MemoryRecord{Shard: e.shard, Timestamp: ts, Value: e.regs[addr]}
	//
	return rec
}

func (e *executor) write(addr uint32, value uint32, ts uint32) MemoryWriteRecord {
	prev := e.last[addr]
	rec := NewMemoryWriteRecord(value, e.shard, ts, prev.Value, prev.Shard, prev.Timestamp)
	e.last[addr] = MemoryRecord{Shard: e.shard, Timestamp: ts, Value: value}
	e.regs[addr] = value
	//
	return rec
}

func (e *executor) step(instr Instruction) {
	// Timestamps start at ClkStep so that every access strictly follows the
	// (0, 0) initialisation point.
	clk := e.clk + ClkStep
	//
	event := CpuEvent{
		Shard:       e.shard,
		Clk:         clk,
		Pc:          e.pc,
		Instruction: instr,
	}
	//
	event.BRecord = e.read(instr.Rs1, clk+TsOffsetB)
	event.B = event.BRecord.Value
	//
	if instr.UsesImm {
		event.C = instr.Imm
	} else {
		rec := e.read(instr.Rs2, clk+TsOffsetC)
		event.CRecord = &rec
		event.C = rec.Value
	}
	//
	switch instr.Opcode {
	case ADD:
		event.A = event.B + event.C
	case SUB:
		event.A = event.B - event.C
	case XOR:
		event.A = event.B ^ event.C
	case OR:
		event.A = event.B | event.C
	case AND:
		event.A = event.B & event.C
	case SLL:
		event.A = event.B << (event.C & 31)
	case SLTU:
		if event.B < event.C {
			event.A = 1
		}
	case ECALL:
		e.current.SyscallEvents = append(e.current.SyscallEvents, SyscallEvent{
			Shard:     e.shard,
			Clk:       clk,
			SyscallID: event.C,
		})
		//
		if event.C == SyscallHalt {
			e.halted = true
		}
	default:
		panic("unsupported opcode: " + instr.Opcode.String())
	}
	//
	if instr.Opcode.IsAlu() {
		event.DidWrite = true
		event.ARecord = e.write(instr.Rd, event.A, clk+TsOffsetA)
		//
		e.current.AddAluEvent(AluEvent{
			Opcode: instr.Opcode,
			Shard:  e.shard,
			Clk:    clk,
			A:      event.A,
			B:      event.B,
			C:      event.C,
		})
	}
	//
	event.NextPc = e.pc + PcStep
	//
	if e.halted {
		event.NextPc = 0
	}
	//
	e.current.CpuEvents = append(e.current.CpuEvents, event)
	//
	e.pc = event.NextPc
	e.clk += ClkStep
}
