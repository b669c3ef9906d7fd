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
	"fmt"

	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
	"golang.org/x/sync/errgroup"
)

// Verify checks a complete execution proof: every shard proof individually,
// then the global conditions which tie the shards together, namely the bus
// balance across all cumulative sums and the chaining of the public values.
func (p *Machine) Verify(program *execution.Program, proof *MachineProof) error {
	if len(proof.Shards) == 0 {
		return shapeErrorf("", "proof has no shards")
	}
	//
	var group errgroup.Group
	//
	for _, shard := range proof.Shards {
		group.Go(func() error {
			return p.VerifyShard(program, shard)
		})
	}
	//
	if err := group.Wait(); err != nil {
		return err
	}
	//
	if err := p.verifyGlobalSum(proof); err != nil {
		return err
	}
	//
	return p.verifyPublicValueChain(program, proof)
}

// VerifyShard checks one shard proof against the machine.
func (p *Machine) VerifyShard(program *execution.Program, proof *ShardProof) error {
	included, err := p.resolveChips(proof)
	//
	if err != nil {
		return err
	}
	//
	if len(proof.PublicValues) != execution.PvLen {
		return shapeErrorf("", "public values vector has length %d, expected %d",
			len(proof.PublicValues), execution.PvLen)
	}
	//
	if _, err := execution.PublicValuesFromVec(proof.PublicValues); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicValues, err)
	}
	// The preprocessed commitment is recomputable from the program alone.
	var (
		prepBatch []*trace.Matrix
		prepIndex []int
	)
	//
	for i, chip := range included {
		if chip.Chip.PreprocessedWidth() > 0 {
			prep := chip.Chip.GeneratePreprocessedTrace(program)
			//
			if log2(prep.Height()) != proof.LogDegrees[i] {
				return shapeErrorf(chip.Chip.Name(), "log degree %d does not match preprocessed height %d",
					proof.LogDegrees[i], prep.Height())
			}
			//
			prepBatch = append(prepBatch, prep)
			prepIndex = append(prepIndex, i)
		}
	}
	//
	if prepCommit, _ := p.scheme.Commit(prepBatch); prepCommit != proof.PrepCommitment {
		return shapeErrorf("", "preprocessed commitment does not match the program")
	}
	// Replay the transcript.
	challenger := NewChallenger(transcriptLabel)
	challenger.ObserveCommitment(proof.PrepCommitment)
	challenger.ObserveCommitment(proof.MainCommitment)
	challenger.ObserveElements(proof.PublicValues)
	//
	ch := &Challenges{Alpha: challenger.SampleExt(), Beta: challenger.SampleExt()}
	//
	challenger.ObserveCommitment(proof.PermCommitment)
	//
	for _, cum := range proof.CumulativeSums {
		challenger.ObserveExt(cum)
	}
	//
	alphaC := challenger.SampleExt()
	challenger.ObserveCommitment(proof.QuotientCommitment)
	zeta := challenger.SampleExt()
	// Check the openings against their commitments.
	var (
		tracePoints    = make([][]field.Ext, len(included))
		quotientPoints = make([][]field.Ext, len(included))
	)
	//
	for i := range included {
		g := field.RootOfUnity(proof.LogDegrees[i])
		tracePoints[i] = []field.Ext{zeta, field.ExtMulBase(zeta, g)}
		quotientPoints[i] = []field.Ext{zeta}
	}
	//
	prepPoints := make([][]field.Ext, len(prepBatch))
	//
	for i, chipIdx := range prepIndex {
		prepPoints[i] = tracePoints[chipIdx]
	}
	//
	openings := &proof.Openings
	//
	if err := p.scheme.Verify(proof.PrepCommitment, prepPoints, openings.PrepValues, openings.PrepProof); err != nil {
		return err
	}
	//
	if err := p.scheme.Verify(proof.MainCommitment, tracePoints, openings.MainValues, openings.MainProof); err != nil {
		return err
	}
	//
	if err := p.scheme.Verify(proof.PermCommitment, tracePoints, openings.PermValues, openings.PermProof); err != nil {
		return err
	}
	//
	if err := p.scheme.Verify(proof.QuotientCommitment, quotientPoints, openings.QuotientValues, openings.QuotientProof); err != nil {
		return err
	}
	// Check the quotient identity of every chip at zeta.
	prepOf := make(map[int]int)
	//
	for packed, chipIdx := range prepIndex {
		prepOf[chipIdx] = packed
	}
	//
	for i, chip := range included {
		var prepOpened [][]field.Ext
		//
		if packed, ok := prepOf[i]; ok {
			prepOpened = openings.PrepValues[packed]
		}
		//
		err := p.verifyChipOpening(chip, proof, i, prepOpened, zeta, ch, alphaC)
		//
		if err != nil {
			return err
		}
	}
	//
	return nil
}

// verifyChipOpening folds the chip's constraints at zeta over the opened
// values and compares against the opened quotient.
func (p *Machine) verifyChipOpening(chip *ChipInstance, proof *ShardProof, idx int,
	prepOpened [][]field.Ext, zeta field.Ext, ch *Challenges, alphaC field.Ext) error {
	var (
		name       = chip.Chip.Name()
		openings   = &proof.Openings
		mainOpened = openings.MainValues[idx]
		permOpened = openings.PermValues[idx]
		nb         = numBatches(uint(len(chip.Interactions)))
	)
	//
	if uint(len(mainOpened[0])) != chip.Chip.Width() {
		return shapeErrorf(name, "opened %d main columns, expected %d",
			len(mainOpened[0]), chip.Chip.Width())
	}
	//
	if uint(len(permOpened[0])) != (nb+1)*field.ExtDegree {
		return shapeErrorf(name, "opened %d permutation columns, expected %d",
			len(permOpened[0]), (nb+1)*field.ExtDegree)
	}
	//
	quotientOpened := openings.QuotientValues[idx][0]
	//
	if uint(len(quotientOpened)) != QuotientChunks*field.ExtDegree {
		return shapeErrorf(name, "opened %d quotient columns, expected %d",
			len(quotientOpened), QuotientChunks*field.ExtDegree)
	}
	//
	if prepOpened == nil && chip.Chip.PreprocessedWidth() > 0 {
		return shapeErrorf(name, "missing preprocessed opening")
	}
	// Selector values at zeta.
	var (
		n      = uint(1) << proof.LogDegrees[idx]
		g      = field.RootOfUnity(proof.LogDegrees[idx])
		gLast  = field.Pow(g, uint64(n-1))
		zetaN  = field.ExtPow(zeta, uint64(n))
		zh     = field.ExtSub(zetaN, field.ExtOne())
		rv     = extRowView{opened: openings, proof: proof, idx: idx, prep: prepOpened}
	)
	//
	rv.first = field.ExtMul(zh, field.ExtInverse(field.ExtSub(zeta, field.ExtOne())))
	rv.last = field.ExtMul(zh, field.ExtInverse(field.ExtSub(zeta, field.ExtFromBase(gLast))))
	rv.transition = field.ExtSub(zeta, field.ExtFromBase(gLast))
	// Fold the constraints exactly as the prover did.
	f := newFolder(alphaC)
	//
	for _, c := range chip.Constraints {
		f.FoldExt(air.Eval[field.Ext](c, rv))
	}
	//
	perm := permRow{
		Local: recombineExt(permOpened[0]),
		Next:  recombineExt(permOpened[1]),
	}
	//
	foldPermConstraints(f, chip, rv, extIdentity, perm, ch, proof.CumulativeSums[idx])
	// Recombine the quotient and check the identity
	// folded = Z_H(zeta) * (q_0 + zeta^n * q_1).
	chunks := recombineExt(quotientOpened)
	quotient := chunks[0]
	//
	for k := 1; k < len(chunks); k++ {
		quotient = field.ExtAdd(quotient, field.ExtMul(zetaN, chunks[k]))
	}
	//
	var (
		folded   = f.Sum()
		expected = field.ExtMul(zh, quotient)
	)
	//
	if !folded.Equal(&expected) {
		return fmt.Errorf("%w: chip %s", ErrOodEvaluationMismatch, name)
	}
	//
	return nil
}

// extRowView binds expression variables to the proof's opened values at the
// out-of-domain point.
type extRowView struct {
	opened     *ShardOpenings
	proof      *ShardProof
	prep       [][]field.Ext
	idx        int
	first      field.Ext
	last       field.Ext
	transition field.Ext
}

// Main implementation for the RowView interface.
func (v extRowView) Main(col, off uint) field.Ext {
	return v.opened.MainValues[v.idx][off][col]
}

// Preprocessed implementation for the RowView interface.
func (v extRowView) Preprocessed(col, off uint) field.Ext {
	return v.prep[off][col]
}

// Public implementation for the RowView interface.
func (v extRowView) Public(index uint) field.Ext {
	return field.ExtFromBase(v.proof.PublicValues[index])
}

// Selector implementation for the RowView interface.
func (v extRowView) Selector(kind air.SelectorKind) field.Ext {
	switch kind {
	case air.IsFirstRow:
		return v.first
	case air.IsLastRow:
		return v.last
	default:
		return v.transition
	}
}

// Const implementation for the RowView interface.
func (v extRowView) Const(c field.F) field.Ext { return field.ExtFromBase(c) }

// Add implementation for the RowView interface.
func (v extRowView) Add(x, y field.Ext) field.Ext { return field.ExtAdd(x, y) }

// Sub implementation for the RowView interface.
func (v extRowView) Sub(x, y field.Ext) field.Ext { return field.ExtSub(x, y) }

// Mul implementation for the RowView interface.
func (v extRowView) Mul(x, y field.Ext) field.Ext { return field.ExtMul(x, y) }

// extIdentity is the lift function over an already extension-valued view.
func extIdentity(x field.Ext) field.Ext { return x }

// recombineExt folds groups of four opened limb values back into extension
// elements.
func recombineExt(limbs []field.Ext) []field.Ext {
	out := make([]field.Ext, len(limbs)/field.ExtDegree)
	//
	for j := range out {
		value := field.ExtZero()
		//
		for t := 0; t < field.ExtDegree; t++ {
			value = field.ExtAdd(value,
				field.ExtMul(field.ExtBasis(uint(t)), limbs[j*field.ExtDegree+t]))
		}
		//
		out[j] = value
	}
	//
	return out
}

// resolveChips maps the proof's chip names onto the machine's chip set,
// checking canonical order and the mutual consistency of the per-chip
// sections.
func (p *Machine) resolveChips(proof *ShardProof) ([]*ChipInstance, error) {
	if len(proof.ChipNames) == 0 {
		return nil, shapeErrorf("", "proof names no chips")
	}
	//
	if len(proof.LogDegrees) != len(proof.ChipNames) || len(proof.CumulativeSums) != len(proof.ChipNames) {
		return nil, shapeErrorf("", "inconsistent per-chip sections")
	}
	//
	var (
		included []*ChipInstance
		cursor   = 0
	)
	//
	for _, name := range proof.ChipNames {
		found := false
		//
		for ; cursor < len(p.chips); cursor++ {
			if p.chips[cursor].Chip.Name() == name {
				included = append(included, p.chips[cursor])
				cursor++
				found = true
				//
				break
			}
		}
		//
		if !found {
			return nil, shapeErrorf(name, "unknown chip or non-canonical order")
		}
	}
	//
	if len(proof.Openings.MainValues) != len(included) ||
		len(proof.Openings.PermValues) != len(included) ||
		len(proof.Openings.QuotientValues) != len(included) {
		return nil, shapeErrorf("", "opening sections do not match the chip count")
	}
	//
	return included, nil
}

// verifyGlobalSum checks that the bus argument balances over the whole
// execution.
func (p *Machine) verifyGlobalSum(proof *MachineProof) error {
	total := field.ExtZero()
	//
	for _, shard := range proof.Shards {
		for _, cum := range shard.CumulativeSums {
			total = field.ExtAdd(total, cum)
		}
	}
	//
	if !total.IsZero() {
		return ErrCumulativeSums
	}
	//
	return nil
}

// verifyPublicValueChain checks the native cross-shard conditions over the
// public values: shard numbering, pc continuation, halting, and the
// monotone progression of the global memory addresses.
func (p *Machine) verifyPublicValueChain(program *execution.Program, proof *MachineProof) error {
	var prev execution.PublicValues
	//
	for i, shard := range proof.Shards {
		pv, err := execution.PublicValuesFromVec(shard.PublicValues)
		//
		if err != nil {
			return fmt.Errorf("%w: shard %d: %v", ErrInvalidPublicValues, i, err)
		}
		//
		if pv.Shard != uint32(i+1) {
			return fmt.Errorf("%w: shard %d claims index %d", ErrInvalidPublicValues, i, pv.Shard)
		}
		//
		if pv.ExitCode != 0 {
			return fmt.Errorf("%w: shard %d has nonzero exit code", ErrInvalidPublicValues, i)
		}
		//
		if i == 0 {
			if pv.StartPc != program.PcStart {
				return fmt.Errorf("%w: execution does not start at the program entry", ErrInvalidPublicValues)
			}
		} else {
			if pv.StartPc != prev.NextPc {
				return fmt.Errorf("%w: shard %d does not continue shard %d", ErrInvalidPublicValues, i, i-1)
			}
			//
			if execution.BitsToAddr(pv.PrevInitAddrBits) < execution.BitsToAddr(prev.LastInitAddrBits) ||
				execution.BitsToAddr(pv.PrevFinalizeAddrBits) < execution.BitsToAddr(prev.LastFinalizeAddrBits) {
				return fmt.Errorf("%w: shard %d rewinds the global memory addresses", ErrInvalidPublicValues, i)
			}
		}
		//
		prev = pv
	}
	//
	if prev.NextPc != 0 {
		return fmt.Errorf("%w: execution does not halt", ErrInvalidPublicValues)
	}
	//
	return nil
}
