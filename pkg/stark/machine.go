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
	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/chips"
	"github.com/succinctlabs/sp1-sub008/pkg/commit"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
)

// transcriptLabel seeds every transcript of this machine version.
const transcriptLabel = "rv32-machine-v1"

// ChipInstance pairs a chip with its declared constraints and interactions,
// evaluated once when the machine is assembled.
type ChipInstance struct {
	Chip chips.Chip
	// Constraints in declaration order; the folding order of the quotient
	// argument.
	Constraints []air.Expr
	// Interactions in declaration order; the batching order of the
	// permutation argument.
	Interactions []air.Interaction
}

// PermWidth returns the number of extension columns of this chip's
// permutation trace: one per interaction batch plus the cumulative sum.
func (p *ChipInstance) PermWidth() uint {
	return numBatches(uint(len(p.Interactions))) + 1
}

// Machine is the full proof system: the chip set with its constraint
// systems, and the commitment scheme proofs are built over.
type Machine struct {
	chips  []*ChipInstance
	scheme commit.Scheme
	shape  map[string]uint
}

// NewMachine assembles the RISC-V machine.
func NewMachine() *Machine {
	m := &Machine{scheme: commit.NewScheme()}
	//
	for _, chip := range chips.NewRiscvChips() {
		builder := air.NewBuilder()
		chip.Eval(builder)
		//
		m.chips = append(m.chips, &ChipInstance{
			Chip:         chip,
			Constraints:  builder.Constraints,
			Interactions: builder.Interactions,
		})
	}
	//
	return m
}

// SetShape fixes the maximum log height of every chip.  A record whose
// traces do not fit makes the prover fail with ErrShapeMismatch instead of
// growing the proof; callers may retry with a larger shape or more shards.
// A nil shape accepts any trace heights.
func (p *Machine) SetShape(shape map[string]uint) {
	p.shape = shape
}

// checkShape validates the generated main traces against the fixed shape,
// if one is set.
func (p *Machine) checkShape(included []*ChipInstance, mains []*trace.Matrix) error {
	if p.shape == nil {
		return nil
	}
	//
	for i, chip := range included {
		name := chip.Chip.Name()
		logHeight, ok := p.shape[name]
		//
		if !ok {
			return shapeErrorf(name, "chip not present in the fixed shape")
		} else if mains[i].Height() > 1<<logHeight {
			return shapeErrorf(name, "%d rows exceed fixed height 2^%d",
				mains[i].Height(), logHeight)
		}
	}
	//
	return nil
}

// Chips returns every chip instance in canonical order.
func (p *Machine) Chips() []*ChipInstance {
	return p.chips
}

// ChipNamed returns the chip instance with the given name, or nil.
func (p *Machine) ChipNamed(name string) *ChipInstance {
	for _, chip := range p.chips {
		if chip.Chip.Name() == name {
			return chip
		}
	}
	//
	return nil
}

// IncludedChips returns the chip instances contributing to the given
// record's shard, in canonical order.
func (p *Machine) IncludedChips(record *execution.ExecutionRecord) []*ChipInstance {
	var included []*ChipInstance
	//
	for _, chip := range p.chips {
		if chip.Chip.IncludedBy(record) {
			included = append(included, chip)
		}
	}
	//
	return included
}
