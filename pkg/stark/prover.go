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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
	"golang.org/x/sync/errgroup"
)

// Prove proves a complete execution, one shard proof per record.  Shards
// are proven in parallel.
func (p *Machine) Prove(records []*execution.ExecutionRecord) (*MachineProof, error) {
	var (
		group  errgroup.Group
		shards = make([]*ShardProof, len(records))
	)
	//
	for i, record := range records {
		group.Go(func() error {
			proof, err := p.ProveShard(record)
			shards[i] = proof
			//
			return err
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	return &MachineProof{Shards: shards}, nil
}

// ProveShard generates all traces for one shard and proves it.
func (p *Machine) ProveShard(record *execution.ExecutionRecord) (*ShardProof, error) {
	var (
		start    = time.Now()
		included = p.IncludedChips(record)
		deps     = make([]*execution.ExecutionRecord, len(included))
		group    errgroup.Group
	)
	// Derive the secondary events each chip's rows will demand.
	for i, chip := range included {
		deps[i] = execution.NewExecutionRecord(record.Program)
		//
		group.Go(func() error {
			chip.Chip.GenerateDependencies(record, deps[i])
			//
			return nil
		})
	}
	//
	_ = group.Wait()
	// Merge into a copy, keeping the caller's record reusable.
	work := *record
	work.ByteLookups = maps.Clone(record.ByteLookups)
	work.MergeByteLookups(deps...)
	//
	mains := make([]*trace.Matrix, len(included))
	//
	for i, chip := range included {
		group.Go(func() error {
			mains[i] = chip.Chip.GenerateTrace(&work)
			//
			return nil
		})
	}
	//
	_ = group.Wait()
	//
	if err := p.checkShape(included, mains); err != nil {
		return nil, err
	}
	//
	proof, err := p.proveShardWithTraces(&work, included, mains)
	//
	if err == nil {
		log.Debugf("proved shard %d (%d chips) in %s", record.Shard, len(included), time.Since(start))
	}
	//
	return proof, err
}

// proveShardWithTraces runs the proving protocol over already generated
// main traces.  Splitting it out lets tests prove deliberately corrupted
// traces.
func (p *Machine) proveShardWithTraces(record *execution.ExecutionRecord,
	included []*ChipInstance, mains []*trace.Matrix) (*ShardProof, error) {
	var (
		pubs       = record.PublicValues.ToVec()
		challenger = NewChallenger(transcriptLabel)
		group      errgroup.Group
	)
	// Preprocessed matrices, for the chips which have them.
	preps := make([]*trace.Matrix, len(included))
	//
	for i, chip := range included {
		if chip.Chip.PreprocessedWidth() > 0 {
			preps[i] = chip.Chip.GeneratePreprocessedTrace(record.Program)
		}
	}
	//
	prepBatch, prepIndex := packMatrices(preps)
	prepCommit, prepData := p.scheme.Commit(prepBatch)
	challenger.ObserveCommitment(prepCommit)
	// Main traces.
	mainCommit, mainData := p.scheme.Commit(mains)
	challenger.ObserveCommitment(mainCommit)
	challenger.ObserveElements(pubs)
	//
	ch := &Challenges{Alpha: challenger.SampleExt(), Beta: challenger.SampleExt()}
	// Permutation traces for the bus argument.
	var (
		perms = make([]*trace.Matrix, len(included))
		cums  = make([]field.Ext, len(included))
	)
	//
	for i, chip := range included {
		group.Go(func() error {
			perms[i], cums[i] = GeneratePermTrace(chip, mains[i], preps[i], pubs, ch)
			//
			return nil
		})
	}
	//
	_ = group.Wait()
	//
	permCommit, permData := p.scheme.Commit(perms)
	challenger.ObserveCommitment(permCommit)
	//
	for _, cum := range cums {
		challenger.ObserveExt(cum)
	}
	//
	alphaC := challenger.SampleExt()
	// Quotient chunks.
	quotients := make([]*trace.Matrix, len(included))
	//
	for i, chip := range included {
		group.Go(func() error {
			quotients[i] = ComputeQuotient(chip, mains[i], preps[i], perms[i],
				pubs, ch, alphaC, cums[i])
			//
			return nil
		})
	}
	//
	_ = group.Wait()
	//
	quotientCommit, quotientData := p.scheme.Commit(quotients)
	challenger.ObserveCommitment(quotientCommit)
	//
	zeta := challenger.SampleExt()
	// Open everything at zeta, and the trace matrices also at the next row.
	var (
		tracePoints    = make([][]field.Ext, len(included))
		quotientPoints = make([][]field.Ext, len(included))
	)
	//
	for i := range included {
		g := field.RootOfUnity(log2(mains[i].Height()))
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
	var openings ShardOpenings
	//
	openings.PrepValues, openings.PrepProof = p.scheme.Open(prepData, prepCommit, prepPoints)
	openings.MainValues, openings.MainProof = p.scheme.Open(mainData, mainCommit, tracePoints)
	openings.PermValues, openings.PermProof = p.scheme.Open(permData, permCommit, tracePoints)
	openings.QuotientValues, openings.QuotientProof =
		p.scheme.Open(quotientData, quotientCommit, quotientPoints)
	//
	proof := &ShardProof{
		PublicValues:       pubs,
		ChipNames:          make([]string, len(included)),
		LogDegrees:         make([]uint, len(included)),
		CumulativeSums:     cums,
		PrepCommitment:     prepCommit,
		MainCommitment:     mainCommit,
		PermCommitment:     permCommit,
		QuotientCommitment: quotientCommit,
		Openings:           openings,
	}
	//
	for i, chip := range included {
		proof.ChipNames[i] = chip.Chip.Name()
		proof.LogDegrees[i] = log2(mains[i].Height())
	}
	//
	return proof, nil
}

// packMatrices drops nil entries, returning the packed slice and the index
// of each packed matrix in the original slice.
func packMatrices(matrices []*trace.Matrix) ([]*trace.Matrix, []int) {
	var (
		packed []*trace.Matrix
		index  []int
	)
	//
	for i, m := range matrices {
		if m != nil {
			packed = append(packed, m)
			index = append(index, i)
		}
	}
	//
	return packed, index
}
