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
	"fmt"
	"math/big"
	"sync"
)

// TwoAdicity is the largest k such that 2^k divides p-1, and hence the
// largest power-of-two subgroup available for trace domains.
const TwoAdicity = 24

var (
	generatorOnce sync.Once
	generator     F
)

// MultiplicativeGenerator returns a fixed generator of the full
// multiplicative group of F.  It is located by a deterministic search, so
// prover and verifier always agree on domains without a hard-coded constant.
func MultiplicativeGenerator() F {
	generatorOnce.Do(func() {
		var (
			p      = Modulus()
			pMinus = new(big.Int).Sub(p, big.NewInt(1))
			// p - 1 = 2^24 * 127, so primality of an element reduces to two
			// cofactor checks.
			cofactors = []*big.Int{big.NewInt(2), big.NewInt(127)}
		)
		//
		for g := uint64(2); ; g++ {
			var (
				candidate = FromUint(g)
				ok        = true
			)
			//
			for _, q := range cofactors {
				var (
					exp = new(big.Int).Div(pMinus, q)
					pow F
				)
				//
				pow.Exp(candidate, exp)
				//
				if pow.IsOne() {
					ok = false
					break
				}
			}
			//
			if ok {
				generator = candidate
				return
			}
		}
	})
	//
	return generator
}

// RootOfUnity returns a generator of the subgroup of order 2^log2n.
func RootOfUnity(log2n uint) F {
	if log2n > TwoAdicity {
		panic(fmt.Sprintf("no subgroup of order 2^%d (two-adicity is %d)", log2n, TwoAdicity))
	}
	//
	var (
		exp = new(big.Int).Rsh(new(big.Int).Sub(Modulus(), big.NewInt(1)), log2n)
		z   F
	)
	//
	z.Exp(MultiplicativeGenerator(), exp)
	//
	return z
}
