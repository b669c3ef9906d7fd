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
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
)

// batchSize is the number of interactions folded into one permutation
// column.  Two keeps the batch correctness constraint at the machine's
// degree bound.
const batchSize = 2

// Challenges bundles the random values of the bus argument: alpha separates
// tuples, beta combines the values within a tuple.
type Challenges struct {
	Alpha field.Ext
	Beta  field.Ext
}

func numBatches(k uint) uint {
	return (k + batchSize - 1) / batchSize
}

// traceRowView binds expression variables to a row of the generated traces,
// with the next row wrapping around the domain.  Selectors are not defined
// on this view; only affine interaction expressions are evaluated through
// it.
type traceRowView struct {
	main *trace.Matrix
	prep *trace.Matrix
	pubs []field.F
	row  uint
}

// Main implementation for the RowView interface.
func (v traceRowView) Main(col, off uint) field.F {
	return v.main.Get((v.row+off)%v.main.Height(), col)
}

// Preprocessed implementation for the RowView interface.
func (v traceRowView) Preprocessed(col, off uint) field.F {
	return v.prep.Get((v.row+off)%v.prep.Height(), col)
}

// Public implementation for the RowView interface.
func (v traceRowView) Public(index uint) field.F {
	return v.pubs[index]
}

// Selector implementation for the RowView interface.
func (v traceRowView) Selector(kind air.SelectorKind) field.F {
	panic("row selectors are not defined on the trace domain")
}

// Const implementation for the RowView interface.
func (v traceRowView) Const(c field.F) field.F { return c }

// Add implementation for the RowView interface.
func (v traceRowView) Add(x, y field.F) field.F { return field.Add(x, y) }

// Sub implementation for the RowView interface.
func (v traceRowView) Sub(x, y field.F) field.F { return field.Sub(x, y) }

// Mul implementation for the RowView interface.
func (v traceRowView) Mul(x, y field.F) field.F { return field.Mul(x, y) }

// interactionDenominator computes alpha minus the fingerprint of one
// interaction's tuple at the given view: the bus kind plus the tuple values
// combined by increasing powers of beta.
func interactionDenominator[T any](in air.Interaction, rv air.RowView[T],
	lift func(T) field.Ext, ch *Challenges) field.Ext {
	var (
		fp      = field.ExtFromBase(field.FromUint(uint64(in.Bus)))
		betaPow = ch.Beta
	)
	//
	for _, value := range in.Values {
		term := field.ExtMul(betaPow, lift(air.Eval(value, rv)))
		fp = field.ExtAdd(fp, term)
		betaPow = field.ExtMul(betaPow, ch.Beta)
	}
	//
	return field.ExtSub(ch.Alpha, fp)
}

// signedMultiplicity evaluates an interaction's multiplicity with the bus
// direction applied: sends positive, receives negative.
func signedMultiplicity[T any](in air.Interaction, rv air.RowView[T],
	lift func(T) field.Ext) field.Ext {
	mult := lift(air.Eval(in.Multiplicity, rv))
	//
	if !in.IsSend {
		mult = field.ExtNeg(mult)
	}
	//
	return mult
}

// GeneratePermTrace computes the permutation trace of one chip: the batched
// reciprocal columns of its interactions and the running cumulative sum,
// each extension value flattened into four base columns.  It returns the
// trace together with the chip's cumulative sum, the value of the last row
// of the running sum column.
func GeneratePermTrace(chip *ChipInstance, main, prep *trace.Matrix,
	pubs []field.F, ch *Challenges) (*trace.Matrix, field.Ext) {
	var (
		n      = main.Height()
		k      = uint(len(chip.Interactions))
		nb     = numBatches(k)
		matrix = trace.NewMatrix((nb+1)*field.ExtDegree, n)
		denoms = make([]field.Ext, n*k)
		mults  = make([]field.Ext, n*k)
	)
	//
	for r := uint(0); r < n; r++ {
		rv := traceRowView{main: main, prep: prep, pubs: pubs, row: r}
		//
		for i, in := range chip.Interactions {
			denoms[r*k+uint(i)] = interactionDenominator(in, rv, field.ExtFromBase, ch)
			mults[r*k+uint(i)] = signedMultiplicity(in, rv, field.ExtFromBase)
		}
	}
	// One inversion for the whole table.
	field.BatchInvertExt(denoms)
	//
	z := field.ExtZero()
	//
	for r := uint(0); r < n; r++ {
		for j := uint(0); j < nb; j++ {
			batch := field.ExtZero()
			//
			for i := j * batchSize; i < min((j+1)*batchSize, k); i++ {
				batch = field.ExtAdd(batch, field.ExtMul(mults[r*k+i], denoms[r*k+i]))
			}
			//
			setExt(matrix, r, j*field.ExtDegree, batch)
			z = field.ExtAdd(z, batch)
		}
		//
		setExt(matrix, r, nb*field.ExtDegree, z)
	}
	//
	return matrix, z
}

// setExt writes the four limbs of an extension value into consecutive
// columns.
func setExt(matrix *trace.Matrix, row, col uint, x field.Ext) {
	limbs := field.ExtLimbs(x)
	//
	for t := uint(0); t < field.ExtDegree; t++ {
		matrix.Set(row, col+t, limbs[t])
	}
}

// permRow holds the recombined permutation column values at one evaluation
// point.
type permRow struct {
	Local []field.Ext
	Next  []field.Ext
}

// foldPermConstraints folds the permutation argument's constraints for one
// chip into the running constraint accumulator, in the canonical order:
// batch correctness first, then the cumulative sum boundary and transition
// rules.  It is shared verbatim between the prover's quotient computation
// and the verifier's out-of-domain check.
func foldPermConstraints[T any](f *folder, chip *ChipInstance, rv air.RowView[T],
	lift func(T) field.Ext, perm permRow, ch *Challenges, cum field.Ext) {
	var (
		k  = uint(len(chip.Interactions))
		nb = numBatches(k)
	)
	// Batch correctness: the batch column times the product of its
	// denominators equals the sum of each multiplicity times the other
	// denominators.
	for j := uint(0); j < nb; j++ {
		var (
			ints   = chip.Interactions[j*batchSize : min((j+1)*batchSize, k)]
			denoms = make([]field.Ext, len(ints))
			c      = perm.Local[j]
		)
		//
		for i, in := range ints {
			denoms[i] = interactionDenominator(in, rv, lift, ch)
			c = field.ExtMul(c, denoms[i])
		}
		//
		for i, in := range ints {
			term := signedMultiplicity(in, rv, lift)
			//
			for l := range ints {
				if l != i {
					term = field.ExtMul(term, denoms[l])
				}
			}
			//
			c = field.ExtSub(c, term)
		}
		//
		f.FoldExt(c)
	}
	// The running sum starts at the first row's batch total, accumulates
	// every following row, and ends at the claimed cumulative sum.
	var (
		z        = perm.Local[nb]
		zNext    = perm.Next[nb]
		sumLocal = field.ExtZero()
		sumNext  = field.ExtZero()
	)
	//
	for j := uint(0); j < nb; j++ {
		sumLocal = field.ExtAdd(sumLocal, perm.Local[j])
		sumNext = field.ExtAdd(sumNext, perm.Next[j])
	}
	//
	var (
		first      = lift(rv.Selector(air.IsFirstRow))
		last       = lift(rv.Selector(air.IsLastRow))
		transition = lift(rv.Selector(air.IsTransition))
	)
	//
	f.FoldExt(field.ExtMul(first, field.ExtSub(z, sumLocal)))
	f.FoldExt(field.ExtMul(transition, field.ExtSub(field.ExtSub(zNext, z), sumNext)))
	f.FoldExt(field.ExtMul(last, field.ExtSub(z, cum)))
}
