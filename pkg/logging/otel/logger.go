//
//  Copyright 2026 The ghack Authors.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//
package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	otelCfg "ghack/pkg/logging/otel/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	instrument "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

func Initialize(args ...interface{}) (err error) {
	sz := len(args)
	if sz == 0 {
		err = fmt.Errorf("otel config argument not as expected")
		glog.Error(err)
		return
	}
	var c *otelCfg.Config
	var ok bool
	if c, ok = args[0].(*otelCfg.Config); !ok {
		err = fmt.Errorf("wrong argument type")
		glog.Error(err)
		return
	}
	c.Dump()
	if c.Enabled {
		// Initialize only if OTEL is enabled
		InitMetricProvider(c)
	}
	return
}

func InitMetricProvider(config *otelCfg.Config) {
	if meterProvider != nil {
		return
	}
	otelCfg.OtelConfig = config

	ctx := context.Background()
	provider, err := NewMeterProvider(ctx, *config)
	if err != nil {
		glog.Fatal(err)
	}
	provider.Meter(MeterName)
	otel.SetMeterProvider(provider)
}

func NewMeterProvider(ctx context.Context, cfg otelCfg.Config) (*metric.MeterProvider, error) {
	exp, err := NewHTTPExporter(ctx)
	if err != nil {
		return nil, err
	}

	res := getResourceInfo(cfg.Appname)

	reader := metric.NewPeriodicReader(exp, metric.WithInterval(time.Duration(cfg.Resolution)*time.Second))
	meterProvider = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader),
	)

	return meterProvider, nil
}

func NewHTTPExporter(ctx context.Context) (metric.Exporter, error) {
	var deltaTemporalitySelector = func(metric.InstrumentKind) metricdata.Temporality { return metricdata.DeltaTemporality }
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(fmt.Sprintf("%s:%d", otelCfg.OtelConfig.Host, otelCfg.OtelConfig.Port)),
		otlpmetrichttp.WithTimeout(7 * time.Second),
		otlpmetrichttp.WithCompression(otlpmetrichttp.NoCompression),
		otlpmetrichttp.WithTemporalitySelector(deltaTemporalitySelector),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 1 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  240 * time.Second,
		}),
	}
	if !otelCfg.OtelConfig.UseTls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func IsEnabled() bool {
	return meterProvider != nil
}

// Shutdown flushes pending exports; called on server exit.
func Shutdown() {
	if meterProvider != nil {
		meterProvider.Shutdown(context.Background())
		meterProvider = nil
	}
}

func GetCounter(counterName CMetric) (instrument.Int64Counter, error) {
	counterMetric, ok := countMetricMap[counterName]
	if !ok {
		return nil, errors.New("no such counter exists")
	}
	counterMetric.createCounter.Do(func() {
		meter := otel.Meter(MeterName)
		counterMetric.counter, _ = meter.Int64Counter(
			PopulateMetricNamePrefix(counterMetric.metricName),
			instrument.WithDescription(counterMetric.metricDesc),
		)
	})
	if counterMetric.counter == nil {
		return nil, errors.New("counter object not ready")
	}
	return counterMetric.counter, nil
}

func RecordCount(counterName CMetric, tags []Tags) {
	if !IsEnabled() {
		return
	}
	ctx := context.Background()
	if counter, err := GetCounter(counterName); err == nil {
		if len(tags) != 0 {
			counter.Add(ctx, 1, instrument.WithAttributes(convertTagsToOTELAttributes(tags)...))
		} else {
			counter.Add(ctx, 1)
		}
	} else {
		glog.Error(err)
	}
}

func convertTagsToOTELAttributes(tags []Tags) (attr []attribute.KeyValue) {
	attr = make([]attribute.KeyValue, len(tags))
	for i := 0; i < len(tags); i++ {
		attr[i] = attribute.String(tags[i].TagName, tags[i].TagValue)
	}
	return
}

func PopulateMetricNamePrefix(metricName string) string {
	return GHACK_METRIC_PREFIX + metricName
}

func getResourceInfo(appName string) *resource.Resource {
	hostname, _ := os.Hostname()

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.HostNameKey.String(hostname),
		semconv.ServiceNameKey.String(appName),
		attribute.String("application", appName),
	)
	return res
}
