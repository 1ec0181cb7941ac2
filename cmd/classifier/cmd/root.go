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

	"github.com/netanomaly/netanomaly/classifier"
	"github.com/netanomaly/netanomaly/classifier/config"
	"github.com/netanomaly/netanomaly/cmd/dependency"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/workpath"
	"github.com/netanomaly/netanomaly/version"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "classifier",
	Short: "the network anomaly classifier",
	Long: `Classifier is a long-running http service that labels network traffic samples as normal or anomalous.
On startup it loads the model artifact, or trains one from the labeled dataset when no artifact exists.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Convert config.
		if err := cfg.Convert(); err != nil {
			return err
		}

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
		if err := logger.InitClassifier(cfg.Verbose, cfg.Console, w.LogDir(), rotateConfig); err != nil {
			return fmt.Errorf("init classifier logger: %w", err)
		}

		return runClassifier(ctx, w)
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
	// Initialize default classifier config.
	cfg = config.New()
	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, true, cfg)
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

func runClassifier(ctx context.Context, w workpath.Workpath) error {
	logger.Infof("version:\n%s", version.Version())

	ff := dependency.InitMonitor(cfg.PProfPort, cfg.Telemetry)
	defer ff()

	svr, err := classifier.New(ctx, cfg, w)
	if err != nil {
		return err
	}

	dependency.SetupQuitSignalHandler(func() { svr.Stop() })
	return svr.Serve()
}
