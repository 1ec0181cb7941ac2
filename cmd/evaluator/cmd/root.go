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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netanomaly/netanomaly/cmd/dependency"
	"github.com/netanomaly/netanomaly/evaluator"
	"github.com/netanomaly/netanomaly/evaluator/config"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/pkg/reachable"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "evaluator",
	Short: "replay a dataset against the classifier",
	Long: `Evaluator sends every row of the labeled dataset to a running classifier, one request at a time,
and reports the accuracy of the predictions with the first mismatches.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate config.
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Initialize logger.
		if err := logger.InitEvaluator(cfg.Verbose); err != nil {
			return fmt.Errorf("init evaluator logger: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		return runEvaluator(ctx, cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Initialize default evaluator config.
	cfg = config.New()
	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, true, cfg)

	// Add evaluator flags.
	flags := rootCmd.Flags()
	flags.String("url", cfg.Client.URL, "url of the prediction endpoint")
	flags.String("dataset", cfg.Dataset, "path of the labeled dataset")
	flags.String("mismatches", cfg.Mismatches, "path of a csv file receiving every mismatch")
	flags.Float64("qps", cfg.Client.QPS, "maximum requests per second, 0 means unlimited")
	dependency.BindFlags(flags, map[string]string{
		"url":        "client.url",
		"qps":        "client.qps",
		"dataset":    "dataset",
		"mismatches": "mismatches",
	})
}

func runEvaluator(ctx context.Context, cmd *cobra.Command) error {
	d, err := dataset.Open(cfg.Dataset)
	if err != nil {
		return err
	}

	// Rows still run against an unreachable endpoint and are reported as errors.
	if err := reachable.New(&reachable.Config{URL: cfg.Client.URL, Timeout: cfg.Client.Timeout}).Check(ctx); err != nil {
		logger.Warnf("%s is not reachable: %s", cfg.Client.URL, err.Error())
	}

	options := []evaluator.Option{evaluator.WithQPS(cfg.Client.QPS)}
	if cfg.Progress {
		options = append(options, evaluator.WithProgress(cmd.ErrOrStderr()))
	}

	e := evaluator.New(evaluator.NewClient(cfg.Client.URL, cfg.Client.Timeout), options...)
	report := e.Run(ctx, d)
	if err := report.Print(cmd.OutOrStdout()); err != nil {
		return err
	}

	if summary, err := report.LatencySummary(); err == nil {
		logger.Infof("latency mean %s, p50 %s, p99 %s, max %s", summary.Mean, summary.P50, summary.P99, summary.Max)
	}

	if cfg.Mismatches == "" {
		return nil
	}

	file, err := os.Create(cfg.Mismatches)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := report.WriteCSV(file); err != nil {
		return err
	}
	logger.Infof("%d mismatches written to %s", len(report.Mismatches), cfg.Mismatches)

	return nil
}
