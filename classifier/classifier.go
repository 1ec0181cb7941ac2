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

package classifier

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/netanomaly/netanomaly/classifier/config"
	"github.com/netanomaly/netanomaly/classifier/metrics"
	"github.com/netanomaly/netanomaly/classifier/resolver"
	"github.com/netanomaly/netanomaly/classifier/router"
	"github.com/netanomaly/netanomaly/classifier/service"
	"github.com/netanomaly/netanomaly/classifier/storage"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/workpath"
	"github.com/netanomaly/netanomaly/trainer/models"
	"github.com/netanomaly/netanomaly/trainer/training"
)

type Server struct {
	// Server configuration.
	config *config.Config

	// Prediction service.
	service service.Service

	// REST server.
	restServer *http.Server

	// Metrics server.
	metricsServer *http.Server
}

// New resolves the model and builds the servers. A model that can not be
// resolved is logged, the server then answers predictions with 503.
func New(ctx context.Context, cfg *config.Config, w workpath.Workpath) (*Server, error) {
	s := &Server{config: cfg}

	// Initialize storage.
	store, err := storage.New(w.WorkDir(),
		storage.WithModelFilename(cfg.Model.Filename),
		storage.WithDatasetFilename(cfg.Model.DatasetFilename))
	if err != nil {
		return nil, err
	}

	// Resolve model once before listening.
	res := resolver.New(store, training.New(
		training.WithTrees(cfg.Model.Trees),
		training.WithSeed(cfg.Model.Seed)))

	var (
		model models.Classifier
		info  *service.ModelInfo
	)
	result, err := res.Resolve(ctx)
	if err != nil {
		logger.Warnf("could not load or train model: %s, predictions will fail until fixed", err.Error())
	} else {
		model = result.Model
		info = &service.ModelInfo{
			Source:      string(result.Source),
			Path:        result.ModelPath,
			DatasetPath: result.DatasetPath,
			Model:       result.Model,
		}
	}
	s.service = service.New(model, info)

	// Initialize REST server.
	r, err := router.Init(cfg, s.service)
	if err != nil {
		return nil, err
	}
	s.restServer = &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.ListenIP.String(), strconv.Itoa(cfg.Server.Port)),
		Handler: r,
	}

	// Initialize metrics.
	if cfg.Metrics.Enable {
		s.metricsServer = metrics.New(&cfg.Metrics)
	}

	return s, nil
}

func (s *Server) Serve() error {
	// Started metrics server.
	if s.metricsServer != nil {
		go func() {
			logger.Infof("started metrics server at %s", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil {
				if err == http.ErrServerClosed {
					return
				}

				logger.Fatalf("metrics server closed unexpect: %s", err.Error())
			}
		}()
	}

	// Started REST server.
	logger.Infof("started rest server at %s", s.restServer.Addr)
	if err := s.restServer.ListenAndServe(); err != nil {
		if err == http.ErrServerClosed {
			return nil
		}

		logger.Errorf("rest server closed unexpect: %s", err.Error())
		return err
	}

	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	// Stop REST server.
	if err := s.restServer.Shutdown(ctx); err != nil {
		logger.Errorf("rest server failed to stop: %s", err.Error())
	} else {
		logger.Info("rest server closed under request")
	}

	// Stop metrics server.
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			logger.Errorf("metrics server failed to stop: %s", err.Error())
		} else {
			logger.Info("metrics server closed under request")
		}
	}
}
