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
package air

import "fmt"

// MaxConstraintDegree is the machine-wide constraint degree bound.  It fixes
// the quotient blowup factor, so every declared constraint must respect it.
const MaxConstraintDegree = 3

// Builder collects the constraints and interactions a chip declares from its
// Eval method.  Emission order matters: the constraint folder and the
// permutation argument both replay it verbatim on the verifier side.
type Builder struct {
	// Constraints are polynomial identities which must vanish on every row.
	Constraints []Expr
	// Interactions are the chip's declared bus sends and receives.
	Interactions []Interaction
}

// NewBuilder constructs an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AssertZero declares that an expression vanishes on every row.
func (b *Builder) AssertZero(e Expr) {
	if d := e.Degree(); d > MaxConstraintDegree {
		panic(fmt.Sprintf("constraint degree %d exceeds bound %d", d, MaxConstraintDegree))
	}
	//
	b.Constraints = append(b.Constraints, e)
}

// AssertEq declares x = y on every row.
func (b *Builder) AssertEq(x, y Expr) {
	b.AssertZero(Sub(x, y))
}

// AssertBool declares that an expression takes only the values 0 and 1.
func (b *Builder) AssertBool(e Expr) {
	b.AssertZero(Mul(e, Sub(e, C(1))))
}

// WhenTransition declares a constraint which only applies between
// consecutive rows of the trace, not across the wraparound boundary.
func (b *Builder) WhenTransition(e Expr) {
	b.AssertZero(Mul(Transition(), e))
}

// WhenFirstRow declares a constraint anchored to the first row.
func (b *Builder) WhenFirstRow(e Expr) {
	b.AssertZero(Mul(First(), e))
}

// WhenLastRow declares a constraint anchored to the last row.
func (b *Builder) WhenLastRow(e Expr) {
	b.AssertZero(Mul(Last(), e))
}

func (b *Builder) interact(bus BusKind, isSend bool, mult Expr, values []Expr) {
	if d := mult.Degree(); d > 1 {
		panic(fmt.Sprintf("%s bus multiplicity has degree %d, must be affine", bus, d))
	}
	//
	for _, v := range values {
		if d := v.Degree(); d > 1 {
			panic(fmt.Sprintf("%s bus value has degree %d, must be affine", bus, d))
		}
	}
	//
	b.Interactions = append(b.Interactions, Interaction{
		Bus:          bus,
		Values:       values,
		Multiplicity: mult,
		IsSend:       isSend,
	})
}

// SendAlu claims an ALU operation (opcode, a, b, c) happened, with operand
// words given as four byte limbs each.
func (b *Builder) SendAlu(mult Expr, values ...Expr) {
	b.interact(AluBus, true, mult, values)
}

// ReceiveAlu looks up an ALU operation claimed elsewhere.
func (b *Builder) ReceiveAlu(mult Expr, values ...Expr) {
	b.interact(AluBus, false, mult, values)
}

// SendByte requests a byte operation or range check from the shared table.
func (b *Builder) SendByte(mult Expr, values ...Expr) {
	b.interact(ByteBus, true, mult, values)
}

// ReceiveByte absorbs byte lookups; only the byte table does this.
func (b *Builder) ReceiveByte(mult Expr, values ...Expr) {
	b.interact(ByteBus, false, mult, values)
}

// SendMemory places a new (addr, shard, clk, value) cell state on the bus.
func (b *Builder) SendMemory(mult Expr, values ...Expr) {
	b.interact(MemoryBus, true, mult, values)
}

// ReceiveMemory consumes a previous cell state from the bus.
func (b *Builder) ReceiveMemory(mult Expr, values ...Expr) {
	b.interact(MemoryBus, false, mult, values)
}

// SendProgram publishes an instruction listing entry, weighted by its
// execution count.
func (b *Builder) SendProgram(mult Expr, values ...Expr) {
	b.interact(ProgramBus, true, mult, values)
}

// ReceiveProgram fetches the instruction at the current pc.
func (b *Builder) ReceiveProgram(mult Expr, values ...Expr) {
	b.interact(ProgramBus, false, mult, values)
}

// SendSyscall dispatches a precompile invocation.
func (b *Builder) SendSyscall(mult Expr, values ...Expr) {
	b.interact(SyscallBus, true, mult, values)
}

// ReceiveSyscall absorbs a precompile invocation in the owning chip.
func (b *Builder) ReceiveSyscall(mult Expr, values ...Expr) {
	b.interact(SyscallBus, false, mult, values)
}
