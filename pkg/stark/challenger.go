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
package stark

import (
	"encoding/binary"

	"github.com/succinctlabs/sp1-sub008/pkg/commit"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
	"golang.org/x/crypto/sha3"
)

// Challenger is the Fiat-Shamir transcript.  Prover and verifier feed it the
// same observations in the same order, so both derive the same challenges
// without interaction.  The state is a sha3-256 hash chain: observing
// absorbs data into the running state, sampling stretches the state and
// ratchets it forward.
type Challenger struct {
	state [32]byte
}

// NewChallenger constructs a transcript seeded with a domain separator.
func NewChallenger(label string) *Challenger {
	c := &Challenger{}
	c.ObserveBytes([]byte(label))
	//
	return c
}

// ObserveBytes absorbs raw bytes into the transcript.
func (p *Challenger) ObserveBytes(data []byte) {
	hash := sha3.New256()
	hash.Write(p.state[:])
	//
	var length [8]byte
	//
	binary.BigEndian.PutUint64(length[:], uint64(len(data)))
	hash.Write(length[:])
	hash.Write(data)
	//
	copy(p.state[:], hash.Sum(nil))
}

// ObserveCommitment absorbs a commitment.
func (p *Challenger) ObserveCommitment(c commit.Commitment) {
	p.ObserveBytes(c[:])
}

// ObserveElements absorbs a vector of base field elements.
func (p *Challenger) ObserveElements(values []field.F) {
	var buf []byte
	//
	for i := range values {
		buf = append(buf, values[i].Marshal()...)
	}
	//
	p.ObserveBytes(buf)
}

// ObserveExt absorbs an extension field element.
func (p *Challenger) ObserveExt(x field.Ext) {
	limbs := field.ExtLimbs(x)
	p.ObserveElements(limbs[:])
}

// SampleBase draws a base field challenge and ratchets the state.
func (p *Challenger) SampleBase() field.F {
	hash := sha3.New256()
	hash.Write(p.state[:])
	hash.Write([]byte{0x73}) // sample marker
	digest := hash.Sum(nil)
	//
	copy(p.state[:], digest)
	//
	var x field.F
	// Reducing eight uniform bytes modulo the 31-bit prime leaves
	// negligible bias.
	x.SetBytes(digest[:8])
	//
	return x
}

// SampleExt draws an extension field challenge.
func (p *Challenger) SampleExt() field.Ext {
	var limbs [field.ExtDegree]field.F
	//
	for i := range limbs {
		limbs[i] = p.SampleBase()
	}
	//
	return field.ExtFromLimbs(limbs)
}
