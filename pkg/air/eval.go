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
	"fmt"

	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// RowView supplies the variable bindings and ring operations for one
// evaluation point.  The prover instantiates it over the base field (one view
// per point of the quotient coset); the verifier instantiates it over the
// extension field at the out-of-domain point, with variables bound to the
// proof's opened values.
type RowView[T any] interface {
	// Preprocessed returns the value of a preprocessed column at the local
	// (off = 0) or next (off = 1) row.
	Preprocessed(col, off uint) T
	// Main returns the value of a main trace column.
	Main(col, off uint) T
	// Public returns an entry of the public values vector.
	Public(index uint) T
	// Selector returns the value of a row selector at this point.
	Selector(kind SelectorKind) T
	// Const embeds a base field constant.
	Const(c field.F) T
	// Add returns x + y.
	Add(x, y T) T
	// Sub returns x - y.
	Sub(x, y T) T
	// Mul returns x * y.
	Mul(x, y T) T
}

// Eval computes the value of an expression under the given view.
func Eval[T any](e Expr, rv RowView[T]) T {
	switch e := e.(type) {
	case Constant:
		return rv.Const(e.Value)
	case Var:
		if e.Matrix == Preprocessed {
			return rv.Preprocessed(e.Col, e.Off)
		}
		//
		return rv.Main(e.Col, e.Off)
	case Public:
		return rv.Public(e.Index)
	case Selector:
		return rv.Selector(e.Kind)
	case Sum:
		return rv.Add(Eval(e.X, rv), Eval(e.Y, rv))
	case Difference:
		return rv.Sub(Eval(e.X, rv), Eval(e.Y, rv))
	case Product:
		return rv.Mul(Eval(e.X, rv), Eval(e.Y, rv))
	case Negation:
		zero := rv.Const(field.Zero())
		//
		return rv.Sub(zero, Eval(e.X, rv))
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
}
