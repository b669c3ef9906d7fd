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

// Package stark orchestrates the proof system: transcript management,
// permutation traces for the bus argument, quotient computation and the
// shard prover and verifier built from them.
package stark

import (
	"errors"
	"fmt"
)

// ErrOodEvaluationMismatch indicates that the folded constraint value at the
// out-of-domain point does not match the opened quotient, i.e. some
// constraint does not hold over the committed traces.
var ErrOodEvaluationMismatch = errors.New("out-of-domain evaluation mismatch")

// ErrCumulativeSums indicates that the bus argument does not balance across
// the shards of a proof.
var ErrCumulativeSums = errors.New("cumulative sums do not vanish")

// ErrInvalidPublicValues indicates malformed or inconsistently chained
// public values.
var ErrInvalidPublicValues = errors.New("invalid public values")

// ErrShapeMismatch indicates a proof whose structure does not match the
// machine.
var ErrShapeMismatch = errors.New("proof shape mismatch")

// ShapeError carries the detail of a shape mismatch.
type ShapeError struct {
	// Chip the mismatch was detected in, if any.
	Chip string
	// Detail describes the mismatch.
	Detail string
}

// Error implementation for the error interface.
func (p *ShapeError) Error() string {
	if p.Chip != "" {
		return fmt.Sprintf("%s: %s: %s", ErrShapeMismatch, p.Chip, p.Detail)
	}
	//
	return fmt.Sprintf("%s: %s", ErrShapeMismatch, p.Detail)
}

// Unwrap implementation for errors.Is.
func (p *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeErrorf(chip, format string, args ...any) error {
	return &ShapeError{Chip: chip, Detail: fmt.Sprintf(format, args...)}
}
