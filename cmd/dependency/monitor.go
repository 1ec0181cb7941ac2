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

package dependency

import (
	"context"
	"fmt"
	"time"

	"github.com/Showmax/go-fqdn"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/phayes/freeport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"

	"github.com/netanomaly/netanomaly/cmd/dependency/base"
	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/types"
)

const tracerShutdownTimeout = 2 * time.Second

// InitMonitor starts pprof with statsview and the jaeger tracer when enabled,
// the returned func stops them.
func InitMonitor(pprofPort int, otelOption base.TelemetryOption) func() {
	var fs []func()

	if pprofPort >= 0 {
		if pprofPort == 0 {
			pprofPort, _ = freeport.GetFreePort()
		}

		debugAddr := fmt.Sprintf("%s:%d", "localhost", pprofPort)
		viewer.SetConfiguration(viewer.WithAddr(debugAddr))
		vm := statsview.New()

		go func() {
			logger.With("pprof", fmt.Sprintf("http://%s/debug/pprof", debugAddr),
				"statsview", fmt.Sprintf("http://%s/debug/statsview", debugAddr)).
				Infof("enable pprof at %s", debugAddr)

			if err := vm.Start(); err != nil {
				logger.Warnf("serve pprof error: %s", err.Error())
			}
		}()

		fs = append(fs, vm.Stop)
	}

	if otelOption.Jaeger != "" {
		shutdown, err := initJaegerTracer(otelOption)
		if err != nil {
			logger.Warnf("init jaeger tracer error: %s", err.Error())
		} else {
			fs = append(fs, shutdown)
		}
	}

	return func() {
		logger.Info("stop monitor")
		for _, f := range fs {
			f()
		}
	}
}

// initJaegerTracer creates a tracer provider exporting spans to the jaeger collector.
func initJaegerTracer(otelOption base.TelemetryOption) (func(), error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(otelOption.Jaeger)))
	if err != nil {
		return nil, err
	}

	hostname, err := fqdn.FqdnHostname()
	if err != nil {
		hostname = "unknown"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(otelOption.ServiceName),
			semconv.ServiceNamespaceKey.String(types.MetricsNamespace),
			semconv.ServiceInstanceIDKey.String(hostname),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Errorf("shutdown tracer provider error: %s", err.Error())
		}
	}, nil
}
