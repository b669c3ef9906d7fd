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
	"github.com/succinctlabs/sp1-sub008/pkg/poly"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
)

// QuotientChunks is the number of trace-sized chunks the quotient
// polynomial decomposes into, fixed by the constraint degree bound.
const QuotientChunks = air.MaxConstraintDegree - 1

// folder accumulates constraint values into a single extension element by
// Horner evaluation in the folding challenge.  Prover and verifier fold the
// same constraints in the same order, so the accumulators agree exactly
// when every constraint holds.
type folder struct {
	alpha field.Ext
	acc   field.Ext
}

func newFolder(alpha field.Ext) *folder {
	return &folder{alpha: alpha, acc: field.ExtZero()}
}

// FoldExt absorbs one extension-valued constraint.
func (p *folder) FoldExt(c field.Ext) {
	p.acc = field.ExtAdd(field.ExtMul(p.acc, p.alpha), c)
}

// FoldBase absorbs one base-valued constraint.
func (p *folder) FoldBase(c field.F) {
	p.FoldExt(field.ExtFromBase(c))
}

// Sum returns the folded accumulator.
func (p *folder) Sum() field.Ext {
	return p.acc
}

// cosetSelectors holds the row selector values over the quotient coset,
// plus the inverted vanishing polynomial.
type cosetSelectors struct {
	first      []field.F
	last       []field.F
	transition []field.F
	invZh      []field.F
}

// newCosetSelectors evaluates the selectors of a domain of size n over the
// shifted coset of size blowup times n.  The selectors are the unnormalised
// Lagrange forms: first = Z_H(x)/(x - 1), last = Z_H(x)/(x - g^{n-1}) and
// transition = x - g^{n-1}.
func newCosetSelectors(n, size uint, shift field.F) *cosetSelectors {
	var (
		w     = field.RootOfUnity(log2(size))
		g     = field.RootOfUnity(log2(n))
		gLast = field.Pow(g, uint64(n-1))
		sel   = &cosetSelectors{
			first:      make([]field.F, size),
			last:       make([]field.F, size),
			transition: make([]field.F, size),
			invZh:      make([]field.F, size),
		}
		x = shift
	)
	//
	one := field.One()
	//
	for r := uint(0); r < size; r++ {
		var (
			zh        = field.Sub(field.Pow(x, uint64(n)), one)
			invFirst  = field.Inverse(field.Sub(x, one))
			invLast   = field.Inverse(field.Sub(x, gLast))
		)
		//
		sel.first[r] = field.Mul(zh, invFirst)
		sel.last[r] = field.Mul(zh, invLast)
		sel.transition[r] = field.Sub(x, gLast)
		sel.invZh[r] = field.Inverse(zh)
		//
		x = field.Mul(x, w)
	}
	//
	return sel
}

// cosetRowView binds expression variables to one point of the quotient
// coset, reading from the low-degree extensions of the committed columns.
type cosetRowView struct {
	main   [][]field.F
	prep   [][]field.F
	pubs   []field.F
	sel    *cosetSelectors
	row    uint
	blowup uint
	size   uint
}

// Main implementation for the RowView interface.
func (v cosetRowView) Main(col, off uint) field.F {
	return v.main[col][(v.row+off*v.blowup)%v.size]
}

// Preprocessed implementation for the RowView interface.
func (v cosetRowView) Preprocessed(col, off uint) field.F {
	return v.prep[col][(v.row+off*v.blowup)%v.size]
}

// Public implementation for the RowView interface.
func (v cosetRowView) Public(index uint) field.F {
	return v.pubs[index]
}

// Selector implementation for the RowView interface.
func (v cosetRowView) Selector(kind air.SelectorKind) field.F {
	switch kind {
	case air.IsFirstRow:
		return v.sel.first[v.row]
	case air.IsLastRow:
		return v.sel.last[v.row]
	default:
		return v.sel.transition[v.row]
	}
}

// Const implementation for the RowView interface.
func (v cosetRowView) Const(c field.F) field.F { return c }

// Add implementation for the RowView interface.
func (v cosetRowView) Add(x, y field.F) field.F { return field.Add(x, y) }

// Sub implementation for the RowView interface.
func (v cosetRowView) Sub(x, y field.F) field.F { return field.Sub(x, y) }

// Mul implementation for the RowView interface.
func (v cosetRowView) Mul(x, y field.F) field.F { return field.Mul(x, y) }

// ldeColumns extends every column of a matrix onto the shifted coset of the
// given size.
func ldeColumns(matrix *trace.Matrix, size uint, shift field.F) [][]field.F {
	if matrix == nil {
		return nil
	}
	//
	columns := make([][]field.F, matrix.Width())
	//
	for c := uint(0); c < matrix.Width(); c++ {
		columns[c] = poly.EvalCoset(poly.Interpolate(matrix.Column(c)), shift, size)
	}
	//
	return columns
}

// ComputeQuotient evaluates the folded constraint polynomial of one chip
// over a shifted coset, divides by the vanishing polynomial of the trace
// domain and returns the quotient decomposed into trace-sized chunks, each
// extension coordinate flattened into a base column.
func ComputeQuotient(chip *ChipInstance, main, prep, perm *trace.Matrix,
	pubs []field.F, ch *Challenges, alphaC, cum field.Ext) *trace.Matrix {
	var (
		n        = main.Height()
		size     = QuotientChunks * n
		shift    = field.MultiplicativeGenerator()
		mainLde  = ldeColumns(main, size, shift)
		prepLde  = ldeColumns(prep, size, shift)
		permLde  = ldeColumns(perm, size, shift)
		sel      = newCosetSelectors(n, size, shift)
		nb       = numBatches(uint(len(chip.Interactions)))
		limbVals = make([][]field.F, field.ExtDegree)
	)
	//
	for t := range limbVals {
		limbVals[t] = make([]field.F, size)
	}
	//
	for r := uint(0); r < size; r++ {
		var (
			rv = cosetRowView{main: mainLde, prep: prepLde, pubs: pubs,
				sel: sel, row: r, blowup: QuotientChunks, size: size}
			f = newFolder(alphaC)
		)
		//
		for _, c := range chip.Constraints {
			f.FoldBase(air.Eval[field.F](c, rv))
		}
		//
		foldPermConstraints(f, chip, rv, field.ExtFromBase,
			permRowAt(permLde, r, QuotientChunks, size, nb), ch, cum)
		//
		limbs := field.ExtLimbs(field.ExtMulBase(f.Sum(), sel.invZh[r]))
		//
		for t := uint(0); t < field.ExtDegree; t++ {
			limbVals[t][r] = limbs[t]
		}
	}
	// Interpolate the quotient over the coset and split it into chunks
	// evaluated back over the trace domain.
	matrix := trace.NewMatrix(QuotientChunks*field.ExtDegree, n)
	//
	for t := uint(0); t < field.ExtDegree; t++ {
		coeffs := poly.InterpolateCoset(limbVals[t], shift)
		//
		for chunk := uint(0); chunk < QuotientChunks; chunk++ {
			evals := make([]field.F, n)
			copy(evals, coeffs[chunk*n:(chunk+1)*n])
			poly.NTT(evals)
			//
			for r := uint(0); r < n; r++ {
				matrix.Set(r, chunk*field.ExtDegree+t, evals[r])
			}
		}
	}
	//
	return matrix
}

// permRowAt recombines the permutation limb columns at one coset point into
// extension values, local and next.
func permRowAt(permLde [][]field.F, row, blowup, size, nb uint) permRow {
	perm := permRow{
		Local: make([]field.Ext, nb+1),
		Next:  make([]field.Ext, nb+1),
	}
	//
	for j := uint(0); j <= nb; j++ {
		var local, next [field.ExtDegree]field.F
		//
		for t := uint(0); t < field.ExtDegree; t++ {
			local[t] = permLde[j*field.ExtDegree+t][row]
			next[t] = permLde[j*field.ExtDegree+t][(row+blowup)%size]
		}
		//
		perm.Local[j] = field.ExtFromLimbs(local)
		perm.Next[j] = field.ExtFromLimbs(next)
	}
	//
	return perm
}

func log2(n uint) uint {
	var l uint
	//
	for m := uint(1); m < n; m <<= 1 {
		l++
	}
	//
	return l
}
