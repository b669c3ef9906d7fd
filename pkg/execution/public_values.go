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
package execution

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// Fixed offsets of the public values vector.  These are part of the wire
// format: prover and verifier must agree on them exactly, and the CPU and
// global memory chips reference them by index in their constraints.
const (
	// PvDigestOffset is the committed-value digest (8 words).
	PvDigestOffset = 0
	// PvDeferredOffset is the deferred-proofs digest (8 elements).
	PvDeferredOffset = 8
	// PvStartPc is the program counter at the start of the shard.
	PvStartPc = 16
	// PvNextPc is the program counter the next shard must start at (0 after
	// a halt).
	PvNextPc = 17
	// PvExitCode is the program's exit code.
	PvExitCode = 18
	// PvShard is the shard index, starting at 1.
	PvShard = 19
	// PvExecutionShard is the execution shard index.
	PvExecutionShard = 20
	// PvPrevInitAddrBits is the 32-bit vector of the first address in this
	// shard's memory-initialize table.
	PvPrevInitAddrBits = 21
	// PvLastInitAddrBits is the 32-bit vector of the last address in this
	// shard's memory-initialize table.
	PvLastInitAddrBits = 53
	// PvPrevFinalizeAddrBits is the analogue for the finalize table.
	PvPrevFinalizeAddrBits = 85
	// PvLastFinalizeAddrBits is the analogue for the finalize table.
	PvLastFinalizeAddrBits = 117
	// pvEnd is the first unused offset before padding.
	pvEnd = 149
	// PvLen is the padded vector length (a multiple of 8).
	PvLen = 152
)

// AddrBitCount is the width of each address bit-vector.
const AddrBitCount = 32

// PublicValues is the externally visible summary of one shard.
type PublicValues struct {
	CommittedValueDigest  [8]uint32
	DeferredProofsDigest  [8]uint32
	StartPc               uint32
	NextPc                uint32
	ExitCode              uint32
	Shard                 uint32
	ExecutionShard        uint32
	PrevInitAddrBits      *bitset.BitSet
	LastInitAddrBits      *bitset.BitSet
	PrevFinalizeAddrBits  *bitset.BitSet
	LastFinalizeAddrBits  *bitset.BitSet
}

// NewPublicValues constructs a zeroed public values record.
func NewPublicValues() PublicValues {
	return PublicValues{
		PrevInitAddrBits:     bitset.New(AddrBitCount),
		LastInitAddrBits:     bitset.New(AddrBitCount),
		PrevFinalizeAddrBits: bitset.New(AddrBitCount),
		LastFinalizeAddrBits: bitset.New(AddrBitCount),
	}
}

// AddrToBits expands a 32-bit address into a little-endian bit vector.
func AddrToBits(addr uint32) *bitset.BitSet {
	bits := bitset.New(AddrBitCount)
	//
	for i := uint(0); i < AddrBitCount; i++ {
		if (addr>>i)&1 == 1 {
			bits.Set(i)
		}
	}
	//
	return bits
}

// BitsToAddr recomposes a bit vector into an address.
func BitsToAddr(bits *bitset.BitSet) uint32 {
	var addr uint32
	//
	for i := uint(0); i < AddrBitCount; i++ {
		if bits.Test(i) {
			addr |= 1 << i
		}
	}
	//
	return addr
}

// ToVec serialises the public values into the fixed-offset field element
// vector observed by the transcript and referenced by constraints.
func (p *PublicValues) ToVec() []field.F {
	vec := make([]field.F, PvLen)
	//
	for i, w := range p.CommittedValueDigest {
		vec[PvDigestOffset+i] = field.FromUint(uint64(w))
	}
	//
	for i, w := range p.DeferredProofsDigest {
		vec[PvDeferredOffset+i] = field.FromUint(uint64(w))
	}
	//
	vec[PvStartPc] = field.FromUint(uint64(p.StartPc))
	vec[PvNextPc] = field.FromUint(uint64(p.NextPc))
	vec[PvExitCode] = field.FromUint(uint64(p.ExitCode))
	vec[PvShard] = field.FromUint(uint64(p.Shard))
	vec[PvExecutionShard] = field.FromUint(uint64(p.ExecutionShard))
	//
	writeBits(vec, PvPrevInitAddrBits, p.PrevInitAddrBits)
	writeBits(vec, PvLastInitAddrBits, p.LastInitAddrBits)
	writeBits(vec, PvPrevFinalizeAddrBits, p.PrevFinalizeAddrBits)
	writeBits(vec, PvLastFinalizeAddrBits, p.LastFinalizeAddrBits)
	//
	return vec
}

// PublicValuesFromVec is the inverse of ToVec.  It rejects vectors of the
// wrong shape, non-bit entries in the bit-vector regions, and nonzero
// padding.
func PublicValuesFromVec(vec []field.F) (PublicValues, error) {
	if len(vec) != PvLen {
		return PublicValues{}, fmt.Errorf("public values vector has length %d, expected %d", len(vec), PvLen)
	}
	//
	p := NewPublicValues()
	//
	for i := range p.CommittedValueDigest {
		p.CommittedValueDigest[i] = uint32(vec[PvDigestOffset+i].Uint64())
	}
	//
	for i := range p.DeferredProofsDigest {
		p.DeferredProofsDigest[i] = uint32(vec[PvDeferredOffset+i].Uint64())
	}
	//
	p.StartPc = uint32(vec[PvStartPc].Uint64())
	p.NextPc = uint32(vec[PvNextPc].Uint64())
	p.ExitCode = uint32(vec[PvExitCode].Uint64())
	p.Shard = uint32(vec[PvShard].Uint64())
	p.ExecutionShard = uint32(vec[PvExecutionShard].Uint64())
	//
	for _, region := range []struct {
		offset uint
		bits   *bitset.BitSet
	}{
		{PvPrevInitAddrBits, p.PrevInitAddrBits},
		{PvLastInitAddrBits, p.LastInitAddrBits},
		{PvPrevFinalizeAddrBits, p.PrevFinalizeAddrBits},
		{PvLastFinalizeAddrBits, p.LastFinalizeAddrBits},
	} {
		if err := readBits(vec, region.offset, region.bits); err != nil {
			return PublicValues{}, err
		}
	}
	//
	for i := pvEnd; i < PvLen; i++ {
		if !vec[i].IsZero() {
			return PublicValues{}, fmt.Errorf("public values padding at offset %d is nonzero", i)
		}
	}
	//
	return p, nil
}

func writeBits(vec []field.F, offset uint, bits *bitset.BitSet) {
	for i := uint(0); i < AddrBitCount; i++ {
		if bits.Test(i) {
			vec[offset+i] = field.One()
		}
	}
}

func readBits(vec []field.F, offset uint, bits *bitset.BitSet) error {
	for i := uint(0); i < AddrBitCount; i++ {
		switch {
		case vec[offset+i].IsZero():
			// clear
		case vec[offset+i].IsOne():
			bits.Set(i)
		default:
			return fmt.Errorf("public values entry %d is not a bit", offset+i)
		}
	}
	//
	return nil
}
