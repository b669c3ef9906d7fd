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
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
)

// Ext is the proof extension field: the quartic tower extension of KoalaBear.
// The randomised lookup argument and all out-of-domain evaluation happens
// here, since the base field alone is far too small for soundness.
type Ext = extensions.E4

// ExtZero returns the additive identity of Ext.
func ExtZero() Ext {
	var z Ext
	//
	return z
}

// ExtOne returns the multiplicative identity of Ext.
func ExtOne() Ext {
	var z Ext
	z.SetOne()
	//
	return z
}

// ExtFromBase embeds a base field element into Ext.
func ExtFromBase(x F) Ext {
	var z Ext
	z.B0.A0 = x
	//
	return z
}

// ExtAdd returns x + y.
func ExtAdd(x, y Ext) Ext {
	var z Ext
	z.Add(&x, &y)
	//
	return z
}

// ExtSub returns x - y.
func ExtSub(x, y Ext) Ext {
	var z Ext
	z.Sub(&x, &y)
	//
	return z
}

// ExtMul returns x * y.
func ExtMul(x, y Ext) Ext {
	var z Ext
	z.Mul(&x, &y)
	//
	return z
}

// ExtMulBase returns x * c for a base field scalar c.  Scalar multiplication
// acts coordinate-wise, which avoids a full extension multiplication.
func ExtMulBase(x Ext, c F) Ext {
	var z Ext
	z.B0.A0.Mul(&x.B0.A0, &c)
	z.B0.A1.Mul(&x.B0.A1, &c)
	z.B1.A0.Mul(&x.B1.A0, &c)
	z.B1.A1.Mul(&x.B1.A1, &c)
	//
	return z
}

// ExtInverse returns x⁻¹, or 0 if x = 0.
func ExtInverse(x Ext) Ext {
	var z Ext
	z.Inverse(&x)
	//
	return z
}

// ExtNeg returns -x.
func ExtNeg(x Ext) Ext {
	var zero, z Ext
	z.Sub(&zero, &x)
	//
	return z
}

// ExtPow returns x^k by square and multiply.
func ExtPow(x Ext, k uint64) Ext {
	z := ExtOne()
	//
	for i := 63; i >= 0; i-- {
		z.Square(&z)
		//
		if (k>>uint(i))&1 == 1 {
			z.Mul(&z, &x)
		}
	}
	//
	return z
}

// ExtLimbs decomposes x into its four base-field coordinates, in the order
// used everywhere an extension value is flattened into trace columns.
func ExtLimbs(x Ext) [ExtDegree]F {
	return [ExtDegree]F{x.B0.A0, x.B0.A1, x.B1.A0, x.B1.A1}
}

// ExtFromLimbs is the inverse of ExtLimbs.
func ExtFromLimbs(limbs [ExtDegree]F) Ext {
	var z Ext
	z.B0.A0 = limbs[0]
	z.B0.A1 = limbs[1]
	z.B1.A0 = limbs[2]
	z.B1.A1 = limbs[3]
	//
	return z
}

// ExtBasis returns the i-th element of the basis dual to ExtLimbs, such that
// x = Σ_i limbs(x)[i] · ExtBasis(i).
func ExtBasis(i uint) Ext {
	var limbs [ExtDegree]F
	limbs[i] = One()
	//
	return ExtFromLimbs(limbs)
}

// BatchInvertExt efficiently inverts the list of elements s, in place.  Zero
// entries are left as zero.
func BatchInvertExt(s []Ext) {
	if len(s) == 0 {
		return
	}
	//
	var (
		one = ExtOne()
		// identifies entries which are zero
		isZero = make([]bool, len(s))

		m = make([]Ext, len(s)) // m[i] = s[i] * s[i+1] * ...
	)
	//
	n := len(s)
	isZero[n-1] = s[n-1].IsZero()

	if isZero[n-1] {
		s[n-1] = one
	}

	m[n-1] = s[n-1]

	for i := n - 2; i >= 0; i-- {
		isZero[i] = s[i].IsZero()

		if isZero[i] {
			s[i] = one
		}

		m[i] = ExtMul(m[i+1], s[i])
	}

	inv := ExtInverse(m[0]) // inv = s[0]⁻¹ * s[1]⁻¹ * ...

	for i := 0; i < n-1; i++ {
		// inv = s[i]⁻¹ * s[i+1]⁻¹ * ...
		newInv := ExtMul(inv, s[i])
		s[i] = ExtMul(inv, m[i+1])
		inv = newInv
		// inv = s[i+1]⁻¹ * s[i+2]⁻¹ * ...
		if isZero[i] {
			s[i] = ExtZero()
		}
	}

	s[n-1] = inv

	if isZero[n-1] {
		s[n-1] = ExtZero()
	}
}
