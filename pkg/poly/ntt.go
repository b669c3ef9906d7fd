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

// Package poly provides the polynomial plumbing beneath the commitment and
// quotient layers: radix-2 number-theoretic transforms over the base field,
// coset low-degree extensions and out-of-domain evaluation in the extension
// field.
package poly

import (
	"fmt"
	"math/bits"

	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// log2Exact returns log2(n), panicking unless n is a power of two.
func log2Exact(n uint) uint {
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("domain size %d is not a power of two", n))
	}
	//
	return uint(bits.TrailingZeros(n))
}

// bitReverse permutes a into bit-reversed index order, in place.
func bitReverse(a []field.F) {
	var (
		n     = uint(len(a))
		shift = 64 - log2Exact(n)
	)
	//
	for i := uint(0); i < n; i++ {
		j := uint(bits.Reverse64(uint64(i)) >> shift)
		//
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// NTT evaluates the polynomial with coefficient vector a over the two-adic
// subgroup of order len(a), in place.  The output is in natural order:
// a[i] = poly(w^i) for w the subgroup generator.
func NTT(a []field.F) {
	var (
		n    = uint(len(a))
		logN = log2Exact(n)
	)
	//
	bitReverse(a)
	//
	for s := uint(1); s <= logN; s++ {
		var (
			m    = uint(1) << s
			half = m >> 1
			wm   = field.RootOfUnity(s)
		)
		//
		for k := uint(0); k < n; k += m {
			w := field.One()
			//
			for j := uint(0); j < half; j++ {
				var (
					t = field.Mul(w, a[k+j+half])
					u = a[k+j]
				)
				//
				a[k+j] = field.Add(u, t)
				a[k+j+half] = field.Sub(u, t)
				w = field.Mul(w, wm)
			}
		}
	}
}

// INTT interpolates evaluations over the two-adic subgroup of order len(a)
// back into coefficient form, in place.
func INTT(a []field.F) {
	var (
		n    = uint(len(a))
		logN = log2Exact(n)
	)
	//
	bitReverse(a)
	//
	for s := uint(1); s <= logN; s++ {
		var (
			m    = uint(1) << s
			half = m >> 1
			wm   = field.Inverse(field.RootOfUnity(s))
		)
		//
		for k := uint(0); k < n; k += m {
			w := field.One()
			//
			for j := uint(0); j < half; j++ {
				var (
					t = field.Mul(w, a[k+j+half])
					u = a[k+j]
				)
				//
				a[k+j] = field.Add(u, t)
				a[k+j+half] = field.Sub(u, t)
				w = field.Mul(w, wm)
			}
		}
	}
	// Scale by n⁻¹
	nInv := field.Inverse(field.FromUint(uint64(n)))
	//
	for i := range a {
		a[i] = field.Mul(a[i], nInv)
	}
}

// Interpolate returns the coefficient form of the polynomial whose
// evaluations over the order-len(values) subgroup are the given values.
func Interpolate(values []field.F) []field.F {
	coeffs := make([]field.F, len(values))
	copy(coeffs, values)
	INTT(coeffs)
	//
	return coeffs
}

// EvalCoset evaluates the polynomial with the given coefficients over the
// coset shift·K, where K is the two-adic subgroup of order size.  The
// coefficient vector may be shorter than size.
func EvalCoset(coeffs []field.F, shift field.F, size uint) []field.F {
	if uint(len(coeffs)) > size {
		panic("coefficient vector exceeds target domain")
	}
	//
	var (
		scaled = make([]field.F, size)
		power  = field.One()
	)
	// Scale coefficient j by shift^j so that the plain transform lands on the
	// shifted domain.
	for j := range coeffs {
		scaled[j] = field.Mul(coeffs[j], power)
		power = field.Mul(power, shift)
	}
	//
	NTT(scaled)
	//
	return scaled
}

// InterpolateCoset is the inverse of EvalCoset: it recovers coefficients from
// evaluations over shift·K.
func InterpolateCoset(values []field.F, shift field.F) []field.F {
	var (
		coeffs   = Interpolate(values)
		shiftInv = field.Inverse(shift)
		power    = field.One()
	)
	//
	for j := range coeffs {
		coeffs[j] = field.Mul(coeffs[j], power)
		power = field.Mul(power, shiftInv)
	}
	//
	return coeffs
}

// EvalExt evaluates the polynomial with base-field coefficients at a point of
// the extension field, by Horner's rule.
func EvalExt(coeffs []field.F, x field.Ext) field.Ext {
	z := field.ExtZero()
	//
	for i := len(coeffs) - 1; i >= 0; i-- {
		z = field.ExtMul(z, x)
		z = field.ExtAdd(z, field.ExtFromBase(coeffs[i]))
	}
	//
	return z
}
