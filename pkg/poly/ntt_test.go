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
package poly

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

func TestNttRoundTrip(t *testing.T) {
	for _, n := range []uint{1, 2, 8, 64} {
		original := testVector(n)
		work := make([]field.F, n)
		copy(work, original)
		//
		NTT(work)
		INTT(work)
		//
		require.Equal(t, original, work, "size %d", n)
	}
}

func TestInterpolateRecoversEvaluations(t *testing.T) {
	var (
		n      = uint(16)
		values = testVector(n)
		coeffs = Interpolate(values)
		w      = field.RootOfUnity(4)
		x      = field.One()
	)
	// Evaluating the interpolant on the subgroup reproduces the table.
	for i := uint(0); i < n; i++ {
		got := evalBase(coeffs, x)
		require.Equal(t, values[i], got, "point %d", i)
		x = field.Mul(x, w)
	}
}

func TestEvalCosetAgreesWithDirectEvaluation(t *testing.T) {
	var (
		n      = uint(8)
		coeffs = testVector(n)
		shift  = field.MultiplicativeGenerator()
		size   = 2 * n
		table  = EvalCoset(coeffs, shift, size)
		w      = field.RootOfUnity(4)
		x      = shift
	)
	//
	require.Len(t, table, int(size))
	//
	for i := uint(0); i < size; i++ {
		require.Equal(t, evalBase(coeffs, x), table[i], "coset point %d", i)
		x = field.Mul(x, w)
	}
}

func TestInterpolateCosetRoundTrip(t *testing.T) {
	var (
		shift  = field.MultiplicativeGenerator()
		coeffs = testVector(16)
		values = EvalCoset(coeffs, shift, 16)
		back   = InterpolateCoset(values, shift)
	)
	//
	require.Equal(t, coeffs, back)
}

func TestEvalExtMatchesBaseEvaluation(t *testing.T) {
	var (
		coeffs = testVector(8)
		x      = field.FromUint(97)
		base   = evalBase(coeffs, x)
		ext    = EvalExt(coeffs, field.ExtFromBase(x))
		lifted = field.ExtFromBase(base)
	)
	//
	require.True(t, ext.Equal(&lifted))
}

// Horner evaluation used as an NTT-free oracle.
func evalBase(coeffs []field.F, x field.F) field.F {
	z := field.Zero()
	//
	for i := len(coeffs) - 1; i >= 0; i-- {
		z = field.Add(field.Mul(z, x), coeffs[i])
	}
	//
	return z
}

func testVector(n uint) []field.F {
	vec := make([]field.F, n)
	//
	for i := uint(0); i < n; i++ {
		vec[i] = field.FromUint(uint64(i)*uint64(i) + 3)
	}
	//
	return vec
}
