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

// Package air defines the constraint language chips speak: a closed algebra
// of expressions over trace columns, row selectors and public values, plus
// the bus interactions which tie chips together.  Expressions are built once
// when a machine is constructed, then evaluated many times — over the base
// field during quotient computation, and over the extension field when a
// proof is verified at an out-of-domain point.
package air

import (
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// MatrixKind distinguishes which committed matrix a variable reads from.
type MatrixKind uint8

const (
	// Preprocessed matrices are fixed per program, not per shard.
	Preprocessed MatrixKind = iota
	// Main matrices carry the per-shard chip traces.
	Main
)

// SelectorKind identifies the Lagrange-style row selectors available to
// constraints.  Their concrete values depend on the evaluation point and are
// supplied by the evaluation context, never committed.
type SelectorKind uint8

const (
	// IsFirstRow is nonzero only at the first row of the trace domain.
	IsFirstRow SelectorKind = iota
	// IsLastRow is nonzero only at the last row of the trace domain.
	IsLastRow
	// IsTransition vanishes at the last row, gating (local, next) pairs that
	// would otherwise wrap around the domain boundary.
	IsTransition
)

// Expr is a constraint-system expression.  The set of implementations is
// closed; evaluation dispatches over it in Eval.
type Expr interface {
	// Degree returns the degree of this expression in the trace variables,
	// counting every variable and selector as degree one.
	Degree() uint
}

// Constant is a literal base field value.
type Constant struct{ Value field.F }

// Var reads a column at the local (offset 0) or next (offset 1) row.
type Var struct {
	Matrix MatrixKind
	Col    uint
	Off    uint
}

// Public reads an entry of the shard's public values vector.
type Public struct{ Index uint }

// Selector reads a row selector.
type Selector struct{ Kind SelectorKind }

// Sum is x + y.
type Sum struct{ X, Y Expr }

// Difference is x - y.
type Difference struct{ X, Y Expr }

// Product is x * y.
type Product struct{ X, Y Expr }

// Negation is -x.
type Negation struct{ X Expr }

// Degree implementation for the Expr interface.
func (e Constant) Degree() uint { return 0 }

// Degree implementation for the Expr interface.
func (e Var) Degree() uint { return 1 }

// Degree implementation for the Expr interface.
func (e Public) Degree() uint { return 0 }

// Degree implementation for the Expr interface.
func (e Selector) Degree() uint { return 1 }

// Degree implementation for the Expr interface.
func (e Sum) Degree() uint { return max(e.X.Degree(), e.Y.Degree()) }

// Degree implementation for the Expr interface.
func (e Difference) Degree() uint { return max(e.X.Degree(), e.Y.Degree()) }

// Degree implementation for the Expr interface.
func (e Product) Degree() uint { return e.X.Degree() + e.Y.Degree() }

// Degree implementation for the Expr interface.
func (e Negation) Degree() uint { return e.X.Degree() }

// C constructs a constant expression from a small natural number.
func C(v uint64) Expr {
	return Constant{field.FromUint(v)}
}

// ConstF constructs a constant expression from a field element.
func ConstF(v field.F) Expr {
	return Constant{v}
}

// Local reads main column col at the current row.
func Local(col uint) Expr {
	return Var{Matrix: Main, Col: col, Off: 0}
}

// Next reads main column col at the following row.
func Next(col uint) Expr {
	return Var{Matrix: Main, Col: col, Off: 1}
}

// PreLocal reads preprocessed column col at the current row.
func PreLocal(col uint) Expr {
	return Var{Matrix: Preprocessed, Col: col, Off: 0}
}

// PreNext reads preprocessed column col at the following row.
func PreNext(col uint) Expr {
	return Var{Matrix: Preprocessed, Col: col, Off: 1}
}

// Pub reads the given public values entry.
func Pub(index uint) Expr {
	return Public{index}
}

// First is the first-row selector.
func First() Expr { return Selector{IsFirstRow} }

// Last is the last-row selector.
func Last() Expr { return Selector{IsLastRow} }

// Transition is the transition selector.
func Transition() Expr { return Selector{IsTransition} }

// Add folds one or more expressions into a sum.
func Add(x Expr, ys ...Expr) Expr {
	for _, y := range ys {
		x = Sum{x, y}
	}
	//
	return x
}

// Sub constructs x - y.
func Sub(x, y Expr) Expr {
	return Difference{x, y}
}

// Mul folds one or more expressions into a product.
func Mul(x Expr, ys ...Expr) Expr {
	for _, y := range ys {
		x = Product{x, y}
	}
	//
	return x
}

// Neg constructs -x.
func Neg(x Expr) Expr {
	return Negation{x}
}

// Scale constructs c·x for a small natural constant.
func Scale(c uint64, x Expr) Expr {
	return Product{C(c), x}
}
