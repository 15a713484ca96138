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
	"sync"

	instrument "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

//*************************** Constants ****************************
const (
	Accept CMetric = CMetric(iota)
	Close
	Disconnect
	MinorError
	FramesIn
	FramesOut
	LoginSuccess
	LoginFailure
)

const (
	Endpoint = string("endpoint")
	User     = string("user")
	Reason   = string("reason")
	MsgType  = string("msg_type")
	Status   = string("status")
)

// OTEL Status
const (
	StatusSuccess string = "SUCCESS"
	StatusError   string = "ERROR"
	StatusWarning string = "WARNING"
	StatusUnknown string = "UNKNOWN"
)

const GHACK_METRIC_PREFIX = "ghack.server."
const MeterName = "ghack-server-meter"

//****************************** variables ***************************

var (
	acceptCounterOnce       sync.Once
	closeCounterOnce        sync.Once
	disconnectCounterOnce   sync.Once
	minorErrorCounterOnce   sync.Once
	framesInCounterOnce     sync.Once
	framesOutCounterOnce    sync.Once
	loginSuccessCounterOnce sync.Once
	loginFailureCounterOnce sync.Once
)

var countMetricMap map[CMetric]*countMetric = map[CMetric]*countMetric{
	Accept:       {"accept", "Accepting incoming connections", nil, &acceptCounterOnce},
	Close:        {"close", "Closing incoming connections", nil, &closeCounterOnce},
	Disconnect:   {"disconnect", "Disconnect messages exchanged", nil, &disconnectCounterOnce},
	MinorError:   {"minor_error", "Tolerated entity bookkeeping errors", nil, &minorErrorCounterOnce},
	FramesIn:     {"frames_in", "Frames decoded off client connections", nil, &framesInCounterOnce},
	FramesOut:    {"frames_out", "Frames written to client connections", nil, &framesOutCounterOnce},
	LoginSuccess: {"login_success", "Logins accepted", nil, &loginSuccessCounterOnce},
	LoginFailure: {"login_failure", "Logins rejected", nil, &loginFailureCounterOnce},
}

var (
	meterProvider *metric.MeterProvider
)

// ************************************ Types ****************************
type CMetric int

type Tags struct {
	TagName  string
	TagValue string
}

type countMetric struct {
	metricName    string
	metricDesc    string
	counter       instrument.Int64Counter
	createCounter *sync.Once
}
