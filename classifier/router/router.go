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

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/mcuadros/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/netanomaly/netanomaly/classifier/config"
	"github.com/netanomaly/netanomaly/classifier/handlers"
	"github.com/netanomaly/netanomaly/classifier/middlewares"
	"github.com/netanomaly/netanomaly/classifier/service"
	"github.com/netanomaly/netanomaly/internal/logger"
)

const (
	PrometheusSubsystemName = "netanomaly_classifier"
	OtelServiceName         = "netanomaly-classifier"
)

func Init(cfg *config.Config, service service.Service) (*gin.Engine, error) {
	// Set mode.
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	h := handlers.New(service)

	// Prometheus metrics.
	if cfg.Metrics.Enable {
		p := ginprometheus.NewPrometheus(PrometheusSubsystemName)
		// URL removes query string.
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			return c.Request.URL.Path
		}
		p.Use(r)
	}

	// Opentelemetry
	if cfg.Options.Telemetry.Jaeger != "" {
		r.Use(otelgin.Middleware(OtelServiceName))
	}

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true

	// Middleware
	r.Use(ginzap.Ginzap(logger.GinLogger.Desugar(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger.GinLogger.Desugar(), true))
	r.Use(middlewares.Server())
	r.Use(middlewares.Error())
	r.Use(cors.New(corsConfig))

	// Static files.
	if cfg.Server.StaticDir != "" {
		r.Use(static.Serve("/", static.LocalFile(cfg.Server.StaticDir, false)))
	}

	// Health Check.
	r.GET("/healthy", h.GetHealth)

	// Router
	api := r.Group("/api")

	// Prediction
	api.POST("/predict", h.CreatePrediction)

	// Model
	api.GET("/model", h.GetModel)

	return r, nil
}
