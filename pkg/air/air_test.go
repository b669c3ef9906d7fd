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
package air

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// fieldRow is a minimal RowView over fixed row contents, with indicator
// selectors.
type fieldRow struct {
	prep, main, next []field.F
	pubs             []field.F
	first, last      bool
}

func (r fieldRow) Preprocessed(col uint, off uint) field.F {
	if off != 0 {
		panic("no preprocessed next row in test view")
	}
	//
	return r.prep[col]
}

func (r fieldRow) Main(col uint, off uint) field.F {
	if off == 0 {
		return r.main[col]
	}
	//
	return r.next[col]
}

func (r fieldRow) Public(index uint) field.F {
	return r.pubs[index]
}

func (r fieldRow) Selector(kind SelectorKind) field.F {
	switch kind {
	case IsFirstRow:
		if r.first {
			return field.One()
		}
	case IsLastRow:
		if r.last {
			return field.One()
		}
	case IsTransition:
		if !r.last {
			return field.One()
		}
	}
	//
	return field.Zero()
}

func (r fieldRow) Const(v field.F) field.F  { return v }
func (r fieldRow) Add(x, y field.F) field.F { return field.Add(x, y) }
func (r fieldRow) Sub(x, y field.F) field.F { return field.Sub(x, y) }
func (r fieldRow) Mul(x, y field.F) field.F { return field.Mul(x, y) }

func TestEvalArithmetic(t *testing.T) {
	rv := fieldRow{
		prep: []field.F{field.FromUint(2)},
		main: []field.F{field.FromUint(3), field.FromUint(4)},
		next: []field.F{field.FromUint(5), field.FromUint(6)},
		pubs: []field.F{field.FromUint(7)},
	}
	// 2*prep[0] + main[0]*next[1] - pub[0] = 4 + 18 - 7 = 15
	e := Sub(Add(Scale(2, PreLocal(0)), Mul(Local(0), Next(1))), Pub(0))
	//
	require.Equal(t, field.FromUint(15), Eval[field.F](e, rv))
	// Negation and constants.
	require.Equal(t, field.Neg(field.FromUint(10)), Eval[field.F](Neg(C(10)), rv))
}

func TestEvalSelectors(t *testing.T) {
	var (
		mid   = fieldRow{main: []field.F{field.One()}}
		first = fieldRow{main: []field.F{field.One()}, first: true}
		last  = fieldRow{main: []field.F{field.One()}, last: true}
		gated = Mul(First(), Local(0))
	)
	//
	gatedMid := Eval[field.F](gated, mid)
	require.True(t, gatedMid.IsZero())
	require.Equal(t, field.One(), Eval[field.F](gated, first))
	//
	trans := Mul(Transition(), Local(0))
	require.Equal(t, field.One(), Eval[field.F](trans, mid))
	transLast := Eval[field.F](trans, last)
	require.True(t, transLast.IsZero())
}

func TestDegreeComputation(t *testing.T) {
	cases := []struct {
		expr   Expr
		degree uint
	}{
		{C(5), 0},
		{Pub(0), 0},
		{Local(0), 1},
		{First(), 1},
		{Add(Local(0), Next(1)), 1},
		{Mul(Local(0), Local(1)), 2},
		{Mul(First(), Local(0), Local(1)), 3},
		{Sub(Mul(Local(0), Local(1)), C(1)), 2},
		{Neg(Mul(Local(0), Local(0))), 2},
	}
	//
	for i, c := range cases {
		require.Equal(t, c.degree, c.expr.Degree(), "case %d", i)
	}
}

func TestBuilderRejectsHighDegree(t *testing.T) {
	b := NewBuilder()
	// Degree 4 exceeds the machine bound.
	quartic := Mul(Mul(Local(0), Local(0)), Mul(Local(0), Local(0)))
	//
	require.Panics(t, func() { b.AssertZero(quartic) })
	// Degree 3 is the bound itself, and fine.
	require.NotPanics(t, func() { b.AssertZero(Mul(First(), Local(0), Local(1))) })
}

func TestBuilderRejectsNonAffineInteractions(t *testing.T) {
	b := NewBuilder()
	//
	require.Panics(t, func() { b.SendAlu(Mul(Local(0), Local(1)), Local(2)) })
	require.Panics(t, func() { b.SendByte(Local(0), Mul(Local(1), Local(2))) })
	//
	require.NotPanics(t, func() { b.SendAlu(Local(0), Add(Local(1), C(3))) })
	require.Len(t, b.Interactions, 1)
	require.True(t, b.Interactions[0].IsSend)
	require.Equal(t, AluBus, b.Interactions[0].Bus)
}

func TestAssertBoolShape(t *testing.T) {
	var (
		b    = NewBuilder()
		zero = fieldRow{main: []field.F{field.Zero(), field.One(), field.FromUint(2)}}
	)
	//
	b.AssertBool(Local(0))
	b.AssertBool(Local(1))
	b.AssertBool(Local(2))
	//
	c0 := Eval[field.F](b.Constraints[0], zero)
	require.True(t, c0.IsZero())
	c1 := Eval[field.F](b.Constraints[1], zero)
	require.True(t, c1.IsZero())
	c2 := Eval[field.F](b.Constraints[2], zero)
	require.False(t, c2.IsZero())
}
