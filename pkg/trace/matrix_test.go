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
package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[uint]uint{0: MinRows, 1: MinRows, 4: 4, 5: 8, 8: 8, 1000: 1024}
	//
	for n, expected := range cases {
		require.Equal(t, expected, NextPowerOfTwo(n), "n=%d", n)
	}
}

func TestPadToPowerOfTwo(t *testing.T) {
	m := NewMatrix(3, 5)
	//
	for i := uint(0); i < 5; i++ {
		m.Set(i, 0, field.FromUint(uint64(i)+1))
	}
	//
	m.PadToPowerOfTwo()
	//
	require.Equal(t, uint(8), m.Height())
	require.Equal(t, uint(3), m.Width())
	// Original rows survive, padding rows are zero.
	require.Equal(t, field.FromUint(5), m.Get(4, 0))
	//
	for i := uint(5); i < 8; i++ {
		for j := uint(0); j < 3; j++ {
			v := m.Get(i, j)
			require.True(t, v.IsZero(), "padding row %d col %d", i, j)
		}
	}
}

func TestColumnCopiesStride(t *testing.T) {
	m := NewMatrix(2, 4)
	//
	for i := uint(0); i < 4; i++ {
		m.Set(i, 0, field.FromUint(uint64(i)))
		m.Set(i, 1, field.FromUint(uint64(i) * 10))
	}
	//
	col := m.Column(1)
	require.Len(t, col, 4)
	//
	for i := uint(0); i < 4; i++ {
		require.Equal(t, field.FromUint(uint64(i)*10), col[i])
	}
	// The returned slice is a copy, not a view.
	col[0] = field.FromUint(999)
	first := m.Get(0, 1)
	require.True(t, first.IsZero())
}

func TestBytesIsDeterministicAndPositional(t *testing.T) {
	var (
		a = NewMatrix(2, 2)
		b = NewMatrix(2, 2)
	)
	//
	a.Set(1, 1, field.FromUint(7))
	b.Set(1, 1, field.FromUint(7))
	require.Equal(t, a.Bytes(), b.Bytes())
	// Moving the same value to another cell changes the encoding.
	b.Set(1, 1, field.Zero())
	b.Set(0, 1, field.FromUint(7))
	require.NotEqual(t, a.Bytes(), b.Bytes())
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMatrix(1, 4)
	m.Set(2, 0, field.FromUint(42))
	//
	c := m.Clone()
	c.Set(2, 0, field.FromUint(43))
	//
	require.Equal(t, field.FromUint(42), m.Get(2, 0))
	require.Equal(t, field.FromUint(43), c.Get(2, 0))
}
