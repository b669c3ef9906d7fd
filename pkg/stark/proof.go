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
	"github.com/succinctlabs/sp1-sub008/pkg/commit"
	"github.com/succinctlabs/sp1-sub008/pkg/field"
)

// ShardProof attests to one shard of an execution.
type ShardProof struct {
	// PublicValues is the shard's serialised public values vector.
	PublicValues []field.F
	// ChipNames lists the chips contributing to this shard, in the
	// machine's canonical order.
	ChipNames []string
	// LogDegrees gives the log2 trace height of each listed chip.
	LogDegrees []uint
	// CumulativeSums holds each chip's bus argument total; they cancel
	// across all chips and shards of a valid execution.
	CumulativeSums []field.Ext

	// Commitments to the preprocessed, main, permutation and quotient
	// matrices, in transcript order.
	PrepCommitment     commit.Commitment
	MainCommitment     commit.Commitment
	PermCommitment     commit.Commitment
	QuotientCommitment commit.Commitment

	// Openings of every commitment at the out-of-domain point.
	Openings ShardOpenings
}

// ShardOpenings carries the opened column values and their binding proofs.
// Preprocessed, main and permutation matrices are opened at zeta and at
// zeta times the chip's domain generator; quotient matrices at zeta only.
// Values are indexed by matrix, then point, then column.
type ShardOpenings struct {
	PrepValues     [][][]field.Ext
	MainValues     [][][]field.Ext
	PermValues     [][][]field.Ext
	QuotientValues [][][]field.Ext

	PrepProof     commit.OpeningProof
	MainProof     commit.OpeningProof
	PermProof     commit.OpeningProof
	QuotientProof commit.OpeningProof
}

// MachineProof attests to a complete multi-shard execution.
type MachineProof struct {
	Shards []*ShardProof
}
