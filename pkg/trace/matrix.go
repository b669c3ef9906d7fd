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

// Package trace provides the row-major matrices of base field elements which
// every chip produces, and the power-of-two padding discipline they share.
package trace

import (
	"bytes"
	"fmt"

	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// MinRows is the smallest permitted trace height.  Padding always rounds up
// to at least this, so that transition constraints have rows to bite on.
const MinRows = 4

// Matrix is a row-major table of base field elements with a fixed width.
// Heights are always powers of two; rows beyond the real data are padding.
type Matrix struct {
	width uint
	data  []field.F
}

// NewMatrix constructs a zeroed matrix of the given dimensions.
func NewMatrix(width, height uint) *Matrix {
	return &Matrix{width: width, data: make([]field.F, width*height)}
}

// Width returns the number of columns.
func (p *Matrix) Width() uint {
	return p.width
}

// Height returns the number of rows.
func (p *Matrix) Height() uint {
	if p.width == 0 {
		return 0
	}
	//
	return uint(len(p.data)) / p.width
}

// Row returns the given row as a mutable slice into the matrix.
func (p *Matrix) Row(i uint) []field.F {
	return p.data[i*p.width : (i+1)*p.width]
}

// Get returns the value at the given row and column.
func (p *Matrix) Get(row, col uint) field.F {
	return p.data[row*p.width+col]
}

// Set assigns the value at the given row and column.
func (p *Matrix) Set(row, col uint, val field.F) {
	p.data[row*p.width+col] = val
}

// Column returns a copy of the given column.
func (p *Matrix) Column(col uint) []field.F {
	out := make([]field.F, p.Height())
	//
	for i := range out {
		out[i] = p.data[uint(i)*p.width+col]
	}
	//
	return out
}

// Clone creates an identical copy of this matrix.
func (p *Matrix) Clone() *Matrix {
	data := make([]field.F, len(p.data))
	copy(data, p.data)
	//
	return &Matrix{width: p.width, data: data}
}

// Bytes returns a canonical byte serialisation of the matrix, used for
// commitment hashing and for byte-identity checks between runs.
func (p *Matrix) Bytes() []byte {
	var buf bytes.Buffer
	//
	for i := range p.data {
		buf.Write(p.data[i].Marshal())
	}
	//
	return buf.Bytes()
}

// String renders small matrices for debugging.
func (p *Matrix) String() string {
	return fmt.Sprintf("matrix %dx%d", p.Height(), p.width)
}

// PadToPowerOfTwo grows the matrix with zero rows until its height is a power
// of two of at least MinRows.  Chips which need a non-trivial padding row
// fill it in afterwards.
func (p *Matrix) PadToPowerOfTwo() {
	var (
		height = p.Height()
		target = NextPowerOfTwo(height)
	)
	//
	if target == height {
		return
	}
	//
	padded := make([]field.F, p.width*target)
	copy(padded, p.data)
	p.data = padded
}

// NextPowerOfTwo returns the smallest power of two which is at least n and at
// least MinRows.
func NextPowerOfTwo(n uint) uint {
	target := uint(MinRows)
	//
	for target < n {
		target <<= 1
	}
	//
	return target
}
