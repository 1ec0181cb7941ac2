/*
 *     Copyright 2024 The Netanomaly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/pkg/types"
)

var (
	generateRows   int
	generateSeed   int64
	generateOutput string
)

// generateCmd writes a synthetic labeled dataset.
var generateCmd = &cobra.Command{
	Use:               "generate",
	Short:             "generate a synthetic dataset",
	Long:              `generate writes a synthetic labeled dataset with the four traffic features, every fourth row is an anomaly.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateRows <= 0 {
			return errors.New("rows must be positive")
		}

		if err := dataset.Synthetic(generateRows, generateSeed).WriteFile(generateOutput); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Dataset with %d rows written to %s\n", generateRows, generateOutput)
		return nil
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.IntVar(&generateRows, "rows", 1000, "number of rows")
	flags.Int64Var(&generateSeed, "seed", 42, "seed of the generator")
	flags.StringVarP(&generateOutput, "output", "o", types.DefaultDatasetFilename, "path of the dataset")
}
