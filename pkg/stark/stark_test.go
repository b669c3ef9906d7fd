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
package stark

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
)

// testProgram exercises every instruction class.
func testProgram() *execution.Program {
	return execution.NewProgram(
		execution.I(execution.ADD, 1, 0, 25),
		execution.I(execution.ADD, 2, 0, 10),
		execution.R(execution.ADD, 3, 1, 2),
		execution.R(execution.SUB, 4, 3, 2),
		execution.R(execution.XOR, 5, 1, 2),
		execution.R(execution.OR, 6, 1, 2),
		execution.R(execution.AND, 7, 1, 2),
		execution.I(execution.SLL, 8, 1, 3),
		execution.R(execution.SLTU, 9, 2, 1),
		execution.Halt(),
	)
}

func executeTestProgram(t *testing.T, opts execution.ExecOptions) (*execution.Program, []*execution.ExecutionRecord) {
	program := testProgram()
	records, err := execution.Execute(program, opts)
	require.NoError(t, err)
	//
	return program, records
}

func TestDebugConstraintsOnExecution(t *testing.T) {
	_, records := executeTestProgram(t, execution.ExecOptions{})
	//
	require.NoError(t, NewMachine().DebugConstraints(records))
}

func TestProveVerifyRoundTrip(t *testing.T) {
	program, records := executeTestProgram(t, execution.ExecOptions{})
	machine := NewMachine()
	//
	proof, err := machine.Prove(records)
	require.NoError(t, err)
	require.Len(t, proof.Shards, 1)
	//
	require.NoError(t, machine.Verify(program, proof))
}

func TestProveVerifyWrappingArithmetic(t *testing.T) {
	// 0x80000000 + 0x80000000 wraps to zero and 0 - 1 borrows through
	// every limb; both must prove like any other execution.
	program := execution.NewProgram(
		execution.I(execution.ADD, 1, 0, 0x80000000),
		execution.R(execution.ADD, 2, 1, 1),
		execution.I(execution.ADD, 3, 0, 1),
		execution.R(execution.SUB, 4, 0, 3),
		execution.Halt(),
	)
	//
	machine := NewMachine()
	records, err := execution.Execute(program, execution.ExecOptions{})
	require.NoError(t, err)
	require.NoError(t, machine.DebugConstraints(records))
	//
	proof, err := machine.Prove(records)
	require.NoError(t, err)
	require.NoError(t, machine.Verify(program, proof))
}

func TestProveVerifyMultiShard(t *testing.T) {
	program, records := executeTestProgram(t, execution.ExecOptions{MaxShardRows: 4})
	require.Greater(t, len(records), 1)
	//
	machine := NewMachine()
	require.NoError(t, machine.DebugConstraints(records))
	//
	proof, err := machine.Prove(records)
	require.NoError(t, err)
	require.Len(t, proof.Shards, len(records))
	//
	require.NoError(t, machine.Verify(program, proof))
}

func TestProveIsDeterministic(t *testing.T) {
	_, records := executeTestProgram(t, execution.ExecOptions{})
	machine := NewMachine()
	//
	a, err := machine.Prove(records)
	require.NoError(t, err)
	b, err := machine.Prove(records)
	require.NoError(t, err)
	//
	require.Equal(t, a.Shards[0].MainCommitment, b.Shards[0].MainCommitment)
	require.Equal(t, a.Shards[0].PermCommitment, b.Shards[0].PermCommitment)
	require.Equal(t, a.Shards[0].QuotientCommitment, b.Shards[0].QuotientCommitment)
	require.Equal(t, a.Shards[0].CumulativeSums, b.Shards[0].CumulativeSums)
}

// proveTampered regenerates the shard's traces and proves them after letting
// the caller corrupt them.
func proveTampered(t *testing.T, machine *Machine, record *execution.ExecutionRecord,
	mutate func(name string, main *trace.Matrix)) *ShardProof {
	included := machine.IncludedChips(record)
	deps := make([]*execution.ExecutionRecord, len(included))
	//
	for i, chip := range included {
		deps[i] = execution.NewExecutionRecord(record.Program)
		chip.Chip.GenerateDependencies(record, deps[i])
	}
	//
	work := *record
	work.ByteLookups = maps.Clone(record.ByteLookups)
	work.MergeByteLookups(deps...)
	//
	mains := make([]*trace.Matrix, len(included))
	//
	for i, chip := range included {
		mains[i] = chip.Chip.GenerateTrace(&work)
		mutate(chip.Chip.Name(), mains[i])
	}
	//
	proof, err := machine.proveShardWithTraces(&work, included, mains)
	require.NoError(t, err)
	//
	return proof
}

func TestVerifyRejectsTamperedTrace(t *testing.T) {
	program, records := executeTestProgram(t, execution.ExecOptions{})
	machine := NewMachine()
	// Bump one result limb of the add table.  The tampered prover builds a
	// self-consistent permutation trace and quotient over the corrupted
	// matrix, but the adder constraint no longer vanishes on the trace
	// domain, which surfaces at the out-of-domain point.
	proof := proveTampered(t, machine, records[0], func(name string, main *trace.Matrix) {
		if name == "Add" {
			main.Set(0, 1, field.Add(main.Get(0, 1), field.One()))
		}
	})
	//
	err := machine.VerifyShard(program, proof)
	require.ErrorIs(t, err, ErrOodEvaluationMismatch)
}

func TestVerifyRejectsPhantomRow(t *testing.T) {
	program, records := executeTestProgram(t, execution.ExecOptions{})
	machine := NewMachine()
	// Mark a padding row of the syscall table as real, inventing a syscall
	// the cpu never dispatched.
	proof := proveTampered(t, machine, records[0], func(name string, main *trace.Matrix) {
		if name == "Syscall" {
			last := main.Height() - 1
			main.Set(last, 0, field.One())
		}
	})
	//
	require.Error(t, machine.Verify(program, &MachineProof{Shards: []*ShardProof{proof}}))
}

func TestVerifyRejectsSuppressedRow(t *testing.T) {
	program, records := executeTestProgram(t, execution.ExecOptions{})
	machine := NewMachine()
	// Zero the is_real flag of a real add row, regenerating nothing else.
	// The row's own constraints are all gated off by the flag, but its alu
	// receive and byte range-check sends drop with it, leaving the cpu's
	// matching send and the byte table's multiplicities unanswered.
	proof := proveTampered(t, machine, records[0], func(name string, main *trace.Matrix) {
		if name == "Add" {
			main.Set(0, 0, field.Zero())
		}
	})
	//
	err := machine.Verify(program, &MachineProof{Shards: []*ShardProof{proof}})
	require.ErrorIs(t, err, ErrCumulativeSums)
}

func TestByteBusAbsorbsBitwiseAtScale(t *testing.T) {
	instructions := []execution.Instruction{
		execution.I(execution.ADD, 1, 0, 10),
		execution.I(execution.ADD, 2, 0, 19),
	}
	//
	for i := 0; i < 1000; i++ {
		instructions = append(instructions,
			execution.R(execution.XOR, 3, 1, 2),
			execution.R(execution.OR, 4, 1, 2),
			execution.R(execution.AND, 5, 1, 2),
		)
	}
	//
	instructions = append(instructions, execution.Halt())
	//
	program := execution.NewProgram(instructions...)
	records, err := execution.Execute(program, execution.ExecOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].BitwiseEvents, 3000)
	require.Equal(t, uint32(25), records[0].BitwiseEvents[0].A)
	require.Equal(t, uint32(27), records[0].BitwiseEvents[1].A)
	require.Equal(t, uint32(2), records[0].BitwiseEvents[2].A)
	// Every one of the per-limb byte lookups the bitwise table demands must
	// be absorbed by the byte table, or the bus check below fails.
	machine := NewMachine()
	require.NoError(t, machine.DebugConstraints(records))
	//
	proof, err := machine.Prove(records)
	require.NoError(t, err)
	require.NoError(t, machine.Verify(program, proof))
}

func TestVerifyRejectsTamperedPublicValues(t *testing.T) {
	program, records := executeTestProgram(t, execution.ExecOptions{})
	machine := NewMachine()
	//
	proof, err := machine.Prove(records)
	require.NoError(t, err)
	//
	proof.Shards[0].PublicValues[execution.PvNextPc] = field.FromUint(4)
	require.Error(t, machine.Verify(program, proof))
}

func TestGlobalSumCheck(t *testing.T) {
	machine := NewMachine()
	//
	balanced := &MachineProof{Shards: []*ShardProof{
		{CumulativeSums: []field.Ext{field.ExtFromBase(field.FromUint(5))}},
		{CumulativeSums: []field.Ext{field.ExtNeg(field.ExtFromBase(field.FromUint(5)))}},
	}}
	require.NoError(t, machine.verifyGlobalSum(balanced))
	//
	unbalanced := &MachineProof{Shards: []*ShardProof{
		{CumulativeSums: []field.Ext{field.ExtOne()}},
	}}
	require.ErrorIs(t, machine.verifyGlobalSum(unbalanced), ErrCumulativeSums)
}

func TestResolveChipsShapeChecks(t *testing.T) {
	machine := NewMachine()
	//
	_, err := machine.resolveChips(&ShardProof{})
	require.ErrorIs(t, err, ErrShapeMismatch)
	//
	// Unknown chip name.
	_, err = machine.resolveChips(&ShardProof{
		ChipNames:      []string{"Nonsense"},
		LogDegrees:     []uint{2},
		CumulativeSums: make([]field.Ext, 1),
	})
	require.ErrorIs(t, err, ErrShapeMismatch)
	//
	// Right names in the wrong order.
	_, err = machine.resolveChips(&ShardProof{
		ChipNames:      []string{"Byte", "Cpu"},
		LogDegrees:     []uint{16, 2},
		CumulativeSums: make([]field.Ext, 2),
	})
	require.ErrorIs(t, err, ErrShapeMismatch)
	//
	// Per-chip sections of inconsistent lengths.
	_, err = machine.resolveChips(&ShardProof{
		ChipNames:      []string{"Cpu"},
		LogDegrees:     []uint{2, 3},
		CumulativeSums: make([]field.Ext, 1),
	})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPublicValueChain(t *testing.T) {
	var (
		machine = NewMachine()
		program = testProgram()
	)
	//
	shard := func(index, startPc, nextPc uint32) *ShardProof {
		pv := execution.NewPublicValues()
		pv.Shard = index
		pv.ExecutionShard = index
		pv.StartPc = startPc
		pv.NextPc = nextPc
		//
		return &ShardProof{PublicValues: pv.ToVec()}
	}
	//
	ok := &MachineProof{Shards: []*ShardProof{
		shard(1, program.PcStart, 24),
		shard(2, 24, 0),
	}}
	require.NoError(t, machine.verifyPublicValueChain(program, ok))
	//
	// A gap in the pc chain.
	broken := &MachineProof{Shards: []*ShardProof{
		shard(1, program.PcStart, 24),
		shard(2, 28, 0),
	}}
	require.ErrorIs(t, machine.verifyPublicValueChain(program, broken), ErrInvalidPublicValues)
	//
	// Wrong shard numbering.
	renumbered := &MachineProof{Shards: []*ShardProof{shard(2, program.PcStart, 0)}}
	require.ErrorIs(t, machine.verifyPublicValueChain(program, renumbered), ErrInvalidPublicValues)
	//
	// Execution which never halts.
	running := &MachineProof{Shards: []*ShardProof{shard(1, program.PcStart, 40)}}
	require.ErrorIs(t, machine.verifyPublicValueChain(program, running), ErrInvalidPublicValues)
}

func TestNumBatches(t *testing.T) {
	require.Equal(t, uint(1), numBatches(1))
	require.Equal(t, uint(1), numBatches(2))
	require.Equal(t, uint(2), numBatches(3))
	require.Equal(t, uint(3), numBatches(6))
}

func TestChallengerDeterminism(t *testing.T) {
	var (
		a = NewChallenger(transcriptLabel)
		b = NewChallenger(transcriptLabel)
	)
	//
	a.ObserveBytes([]byte("hello"))
	b.ObserveBytes([]byte("hello"))
	//
	x := a.SampleExt()
	y := b.SampleExt()
	require.True(t, x.Equal(&y))
	// Sampling ratchets the state: the next sample differs.
	z := a.SampleExt()
	require.False(t, x.Equal(&z))
}

func TestChallengerSensitivity(t *testing.T) {
	var (
		a = NewChallenger(transcriptLabel)
		b = NewChallenger(transcriptLabel)
		c = NewChallenger("other-label")
	)
	//
	a.ObserveBytes([]byte("hello"))
	b.ObserveBytes([]byte("hellp"))
	c.ObserveBytes([]byte("hello"))
	//
	var (
		x = a.SampleExt()
		y = b.SampleExt()
		z = c.SampleExt()
	)
	//
	require.False(t, x.Equal(&y))
	require.False(t, x.Equal(&z))
}

func TestMachineShape(t *testing.T) {
	machine := NewMachine()
	require.Len(t, machine.Chips(), 11)
	//
	cpu := machine.ChipNamed("Cpu")
	require.NotNil(t, cpu)
	require.NotEmpty(t, cpu.Constraints)
	require.NotEmpty(t, cpu.Interactions)
	require.Equal(t, numBatches(uint(len(cpu.Interactions)))+1, cpu.PermWidth())
	//
	require.Nil(t, machine.ChipNamed("Mul"))
}

func TestPaddingRowsAreInteractionNeutral(t *testing.T) {
	machine := NewMachine()
	// An all-zero row stands in for a padding row; every declared
	// interaction multiplicity must vanish on it.
	for _, chip := range machine.Chips() {
		var (
			main = trace.NewMatrix(chip.Chip.Width(), 4)
			prep *trace.Matrix
		)
		//
		if w := chip.Chip.PreprocessedWidth(); w > 0 {
			prep = trace.NewMatrix(w, 4)
		}
		//
		rv := debugRowView{
			traceRowView: traceRowView{
				main: main,
				prep: prep,
				pubs: make([]field.F, execution.PvLen),
				row:  3,
			},
			height: 4,
		}
		//
		for i, in := range chip.Interactions {
			mult := air.Eval[field.F](in.Multiplicity, rv)
			require.True(t, mult.IsZero(), "chip %s interaction %d", chip.Chip.Name(), i)
		}
	}
}

func TestProveHonoursFixedShape(t *testing.T) {
	machine := NewMachine()
	records, err := execution.Execute(testProgram(), execution.ExecOptions{})
	require.NoError(t, err)
	// A generous shape fits every trace.
	shape := make(map[string]uint)
	//
	for _, chip := range machine.Chips() {
		shape[chip.Chip.Name()] = 20
	}
	//
	machine.SetShape(shape)
	proof, err := machine.Prove(records)
	require.NoError(t, err)
	require.NoError(t, machine.Verify(testProgram(), proof))
	// The byte table alone has 2^16 rows, which no 2^4 slot can hold.
	for name := range shape {
		shape[name] = 4
	}
	//
	machine.SetShape(shape)
	_, err = machine.Prove(records)
	require.ErrorIs(t, err, ErrShapeMismatch)
	// A chip missing from the shape entirely does not fit either.
	machine.SetShape(map[string]uint{})
	_, err = machine.Prove(records)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestVerifyRejectsEmptyProof(t *testing.T) {
	machine := NewMachine()
	err := machine.Verify(testProgram(), &MachineProof{})
	require.ErrorIs(t, err, ErrShapeMismatch)
}
