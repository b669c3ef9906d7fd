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
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/koalabear"
)

// F is the base field of the machine: KoalaBear, a 31-bit two-adic prime
// field (p = 2^31 - 2^24 + 1).  All trace columns hold values of this type.
type F = koalabear.Element

// ExtDegree is the number of base-field coordinates per extension element.
const ExtDegree = 4

// Zero returns the additive identity of F.
func Zero() F {
	var z F
	//
	return z
}

// One returns the multiplicative identity of F.
func One() F {
	var z F
	z.SetOne()
	//
	return z
}

// FromUint constructs a base field element from a small natural number.
func FromUint(v uint64) F {
	var z F
	z.SetUint64(v)
	//
	return z
}

// Add returns x + y.
func Add(x, y F) F {
	var z F
	z.Add(&x, &y)
	//
	return z
}

// Sub returns x - y.
func Sub(x, y F) F {
	var z F
	z.Sub(&x, &y)
	//
	return z
}

// Mul returns x * y.
func Mul(x, y F) F {
	var z F
	z.Mul(&x, &y)
	//
	return z
}

// Neg returns -x.
func Neg(x F) F {
	var z F
	z.Neg(&x)
	//
	return z
}

// Inverse returns x⁻¹, or 0 if x = 0.
func Inverse(x F) F {
	var z F
	z.Inverse(&x)
	//
	return z
}

// Pow returns x^k for a (small) natural exponent.
func Pow(x F, k uint64) F {
	var z F
	z.Exp(x, new(big.Int).SetUint64(k))
	//
	return z
}

// Modulus returns the order of F.
func Modulus() *big.Int {
	return koalabear.Modulus()
}
