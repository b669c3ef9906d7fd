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
package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/succinctlabs/sp1-sub008/pkg/execution"
	"github.com/succinctlabs/sp1-sub008/pkg/stark"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	demoCmd.Flags().Uint("max-shard-rows", 0, "split execution into shards of at most this many cycles")
	demoCmd.Flags().Uint("rounds", 16, "number of demo loop rounds to execute")
	demoCmd.Flags().Bool("debug", false, "check constraints row by row before proving")
	rootCmd.AddCommand(demoCmd)
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rvprove",
	Short: "Prover and verifier for the RV32 machine.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Execute, prove and verify a built-in demo program.",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			maxRows, _ = cmd.Flags().GetUint("max-shard-rows")
			rounds, _  = cmd.Flags().GetUint("rounds")
			debug, _   = cmd.Flags().GetBool("debug")
			program    = demoProgram(rounds)
			machine    = stark.NewMachine()
		)
		//
		records, err := execution.Execute(program, execution.ExecOptions{MaxShardRows: maxRows})
		//
		if err != nil {
			fmt.Fprintf(os.Stderr, "execution failed: %v\n", err)
			os.Exit(1)
		}
		//
		fmt.Printf("executed %d shard(s)\n", len(records))
		//
		if debug {
			if err := machine.DebugConstraints(records); err != nil {
				fmt.Fprintf(os.Stderr, "constraint check failed: %v\n", err)
				os.Exit(1)
			}
			//
			fmt.Println("all constraints hold on the trace domain")
		}
		//
		start := time.Now()
		proof, err := machine.Prove(records)
		//
		if err != nil {
			fmt.Fprintf(os.Stderr, "proving failed: %v\n", err)
			os.Exit(1)
		}
		//
		fmt.Printf("proved in %s\n", time.Since(start))
		//
		start = time.Now()
		//
		if err := machine.Verify(program, proof); err != nil {
			fmt.Fprintf(os.Stderr, "verification failed: %v\n", err)
			os.Exit(1)
		}
		//
		fmt.Printf("verified in %s\n", time.Since(start))
	},
}

// demoProgram builds a small loop exercising every supported instruction:
// each round mixes a Fibonacci step with bitwise and comparison noise, then
// the program halts through ECALL.
func demoProgram(rounds uint) *execution.Program {
	var instructions []execution.Instruction
	// x1, x2 seed the Fibonacci pair; x3 is scratch.
	instructions = append(instructions,
		execution.I(execution.ADD, 1, 0, 1),
		execution.I(execution.ADD, 2, 0, 2),
	)
	//
	for i := uint(0); i < rounds; i++ {
		instructions = append(instructions,
			execution.R(execution.ADD, 3, 1, 2),
			execution.R(execution.ADD, 1, 2, 0),
			execution.R(execution.ADD, 2, 3, 0),
			execution.I(execution.XOR, 4, 3, 0xff),
			execution.I(execution.AND, 5, 4, 0x3c),
			execution.I(execution.OR, 6, 5, 0x101),
			execution.I(execution.SLL, 7, 6, 3),
			execution.R(execution.SLTU, 8, 1, 2),
			execution.R(execution.SUB, 9, 7, 5),
		)
	}
	//
	instructions = append(instructions, execution.Halt())
	//
	return execution.NewProgram(instructions...)
}
