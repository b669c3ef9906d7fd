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
	"maps"
	"strings"

	"github.com/succinctlabs/sp1-sub008/pkg/air"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// DebugConstraints checks every chip constraint on every row of the
// generated traces, and the global balance of every bus, without running
// the prover.  It reports the first violation found, naming the chip, the
// row and the constraint index, which the proving pipeline cannot do.
func (p *Machine) DebugConstraints(records []*execution.ExecutionRecord) error {
	buses := make(map[string]field.F)
	//
	for _, record := range records {
		if err := p.debugShard(record, buses); err != nil {
			return err
		}
	}
	//
	for key, sum := range buses {
		if !sum.IsZero() {
			return fmt.Errorf("unbalanced bus tuple %s", key)
		}
	}
	//
	return nil
}

func (p *Machine) debugShard(record *execution.ExecutionRecord, buses map[string]field.F) error {
	work := *record
	work.ByteLookups = maps.Clone(record.ByteLookups)
	//
	for _, chip := range p.IncludedChips(record) {
		dep := execution.NewExecutionRecord(record.Program)
		chip.Chip.GenerateDependencies(record, dep)
		work.MergeByteLookups(dep)
	}
	//
	var (
		pubs     = work.PublicValues.ToVec()
		included = p.IncludedChips(&work)
	)
	//
	for _, chip := range included {
		var (
			main = chip.Chip.GenerateTrace(&work)
			prep = chip.Chip.GeneratePreprocessedTrace(work.Program)
			n    = main.Height()
		)
		//
		for r := uint(0); r < n; r++ {
			rv := debugRowView{
				traceRowView: traceRowView{main: main, prep: prep, pubs: pubs, row: r},
				height:       n,
			}
			//
			for c, constraint := range chip.Constraints {
				if v := air.Eval[field.F](constraint, rv); !v.IsZero() {
					return fmt.Errorf("chip %s: constraint %d does not vanish at row %d",
						chip.Chip.Name(), c, r)
				}
			}
			//
			accumulateBus(buses, chip, rv)
		}
	}
	//
	return nil
}

// debugRowView evaluates selectors as row indicators, which agrees with the
// vanishing semantics of the polynomial selectors on the trace domain.
type debugRowView struct {
	traceRowView
	height uint
}

// Selector implementation for the RowView interface.
func (v debugRowView) Selector(kind air.SelectorKind) field.F {
	var active bool
	//
	switch kind {
	case air.IsFirstRow:
		active = v.row == 0
	case air.IsLastRow:
		active = v.row == v.height-1
	default:
		active = v.row != v.height-1
	}
	//
	if active {
		return field.One()
	}
	//
	return field.Zero()
}

// accumulateBus adds the row's signed interaction multiplicities into the
// per-tuple balance map.
func accumulateBus(buses map[string]field.F, chip *ChipInstance, rv debugRowView) {
	for _, in := range chip.Interactions {
		mult := air.Eval[field.F](in.Multiplicity, rv)
		//
		if mult.IsZero() {
			continue
		}
		//
		var key strings.Builder
		//
		key.WriteString(in.Bus.String())
		//
		for _, value := range in.Values {
			v := air.Eval[field.F](value, rv)
			fmt.Fprintf(&key, ":%s", v.String())
		}
		//
		if !in.IsSend {
			mult = field.Neg(mult)
		}
		//
		buses[key.String()] = field.Add(buses[key.String()], mult)
	}
}
