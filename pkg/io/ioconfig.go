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

package io

import (
	"time"

	"ghack/pkg/util"
)

var (
	DefaultInboundConfig = InboundConfig{
		IdleTimeout:   util.Duration{Duration: 120 * time.Second},
		WriteTimeout:  util.Duration{Duration: 500 * time.Millisecond},
		SendQueueSize: 1024,
		IOBufSize:     64 * 1024,
		MaxValueDepth: 32,
	}

	DefaultOutboundConfig = OutboundConfig{
		ConnectTimeout:   util.Duration{Duration: 1 * time.Second},
		HandshakeTimeout: util.Duration{Duration: 2 * time.Second},
		WriteTimeout:     util.Duration{Duration: 500 * time.Millisecond},
		SendQueueSize:    256,
		IOBufSize:        64 * 1024,
		MaxValueDepth:    32,
	}
)

type (
	InboundConfig struct {
		IdleTimeout   util.Duration
		WriteTimeout  util.Duration
		SendQueueSize int
		IOBufSize     int
		MaxValueDepth int
	}

	OutboundConfig struct {
		ConnectTimeout   util.Duration
		HandshakeTimeout util.Duration
		WriteTimeout     util.Duration
		SendQueueSize    int
		IOBufSize        int
		MaxValueDepth    int
	}
)

func (conf *InboundConfig) SetDefaultIfNotDefined() (set bool) {
	if conf.IdleTimeout.Duration == 0 {
		set = true
		conf.IdleTimeout = DefaultInboundConfig.IdleTimeout
	}
	if conf.WriteTimeout.Duration == 0 {
		set = true
		conf.WriteTimeout = DefaultInboundConfig.WriteTimeout
	}
	if conf.SendQueueSize == 0 {
		set = true
		conf.SendQueueSize = DefaultInboundConfig.SendQueueSize
	}
	if conf.IOBufSize == 0 {
		set = true
		conf.IOBufSize = DefaultInboundConfig.IOBufSize
	}
	if conf.MaxValueDepth == 0 {
		set = true
		conf.MaxValueDepth = DefaultInboundConfig.MaxValueDepth
	}
	return
}

func (conf *OutboundConfig) SetDefaultIfNotDefined() (set bool) {
	if conf.ConnectTimeout.Duration == 0 {
		set = true
		conf.ConnectTimeout = DefaultOutboundConfig.ConnectTimeout
	}
	if conf.HandshakeTimeout.Duration == 0 {
		set = true
		conf.HandshakeTimeout = DefaultOutboundConfig.HandshakeTimeout
	}
	if conf.WriteTimeout.Duration == 0 {
		set = true
		conf.WriteTimeout = DefaultOutboundConfig.WriteTimeout
	}
	if conf.SendQueueSize == 0 {
		set = true
		conf.SendQueueSize = DefaultOutboundConfig.SendQueueSize
	}
	if conf.IOBufSize == 0 {
		set = true
		conf.IOBufSize = DefaultOutboundConfig.IOBufSize
	}
	if conf.MaxValueDepth == 0 {
		set = true
		conf.MaxValueDepth = DefaultOutboundConfig.MaxValueDepth
	}
	return
}
