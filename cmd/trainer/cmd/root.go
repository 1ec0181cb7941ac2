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
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/workpath"
	"github.com/netanomaly/netanomaly/trainer"
	"github.com/netanomaly/netanomaly/trainer/config"
	"github.com/netanomaly/netanomaly/version"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "the trainer of the network anomaly model",
	Long: `Trainer fits the random forest on the labeled dataset, reports its accuracy on a holdout split
and writes the model artifact loaded by the classifier.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate config.
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Initialize workpath.
		w, err := initWorkpath(&cfg.Server)
		if err != nil {
			return err
		}
		rotateConfig := logger.LogRotateConfig{
			MaxSize:    cfg.Server.LogMaxSize,
			MaxAge:     cfg.Server.LogMaxAge,
			MaxBackups: cfg.Server.LogMaxBackups}

		// Initialize logger.
		if err := logger.InitTrainer(cfg.Verbose, cfg.Console, w.LogDir(), rotateConfig); err != nil {
			return fmt.Errorf("init trainer logger: %w", err)
		}

		dependency.SetupQuitSignalHandler(cancel)
		return runTrainer(ctx, cmd, w)
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
	// Initialize default trainer config.
	cfg = config.New()
	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, true, cfg)

	// Add trainer flags.
	flags := rootCmd.Flags()
	flags.String("dataset", cfg.Training.Dataset, "path of the labeled dataset")
	flags.StringP("output", "o", cfg.Training.Output, "path of the model artifact")
	dependency.BindFlags(flags, map[string]string{
		"dataset": "training.dataset",
		"output":  "training.output",
	})

	rootCmd.AddCommand(generateCmd)
}

func initWorkpath(cfg *config.ServerConfig) (workpath.Workpath, error) {
	var options []workpath.Option
	if cfg.WorkDir != "" {
		options = append(options, workpath.WithWorkDir(cfg.WorkDir))
	}

	if cfg.LogDir != "" {
		options = append(options, workpath.WithLogDir(cfg.LogDir))
	}

	return workpath.New(options...)
}

func runTrainer(ctx context.Context, cmd *cobra.Command, w workpath.Workpath) error {
	logger.Infof("version:\n%s", version.Version())

	ff := dependency.InitMonitor(cfg.PProfPort, cfg.Telemetry)
	defer ff()

	t, err := trainer.New(cfg, w)
	if err != nil {
		return err
	}

	result, err := t.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.TestRows > 0 {
		fmt.Fprintf(out, "Accuracy: %.4f\n", result.Accuracy)
	}
	fmt.Fprintf(out, "Model saved successfully as %s\n", result.ModelPath)
	return nil
}
