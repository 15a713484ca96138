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
	"bufio"
	"net"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/netutil"

	"ghack/pkg/logging/otel"
	"ghack/pkg/proto"
)

type (
	IListener interface {
		GetName() string
		AcceptAndServe() error
		Close() error
		Shutdown()
		WaitForShutdownToComplete(time.Duration)
		GetConnString() string
		// Addr is the bound address, resolved; differs from the config
		// string when listening on port 0.
		Addr() net.Addr
		GetNumActiveConnections() uint32
	}

	Listener struct {
		config         ListenerConfig
		ioConfig       InboundConfig
		netListener    net.Listener
		handlerCreator ConnHandlerCreator
		connMgr        *InboundConnManager
	}
)

func NewListener(cfg ListenerConfig, iocfg InboundConfig, creator ConnHandlerCreator) (lsnr IListener, err error) {
	ln := &Listener{
		config:         cfg,
		handlerCreator: creator,
		ioConfig:       iocfg,
		connMgr: &InboundConnManager{
			activeConns: make(map[*Connector]struct{}),
		},
	}
	ln.ioConfig.SetDefaultIfNotDefined()
	ln.config.SetDefaultIfNotDefined()
	if ln.netListener, err = net.Listen(ln.config.Network, ln.config.Addr); err == nil {
		if cfg.MaxConnections > 0 {
			ln.netListener = netutil.LimitListener(ln.netListener, cfg.MaxConnections)
		}
		lsnr = ln
	}
	return
}

func (l *Listener) Close() error {
	return l.netListener.Close()
}

func (l *Listener) Shutdown() {
	l.netListener.Close()
	l.connMgr.Shutdown()
}

func (l *Listener) WaitForShutdownToComplete(timeout time.Duration) {
	l.connMgr.WaitForShutdownToComplete(timeout)
}

func (l *Listener) AcceptAndServe() error {
	conn, err := l.netListener.Accept()
	if err == nil {
		otel.RecordCount(otel.Accept, []otel.Tags{{TagName: otel.Status, TagValue: otel.StatusSuccess}})
		l.startNewConnector(conn)
	} else {
		otel.RecordCount(otel.Accept, []otel.Tags{{TagName: otel.Status, TagValue: otel.StatusError}})
	}
	// caller logs the error if needed
	return err
}

func (l *Listener) startNewConnector(conn net.Conn) {
	reader := bufio.NewReaderSize(conn, l.ioConfig.IOBufSize)
	dec := proto.NewDecoder(reader)
	dec.SetMaxValueDepth(l.ioConfig.MaxValueDepth)
	connector := &Connector{
		conn:    conn,
		reader:  reader,
		dec:     dec,
		chSend:  make(chan *proto.Message, l.ioConfig.SendQueueSize),
		chStop:  make(chan struct{}),
		connMgr: l.connMgr,
		config:  l.ioConfig,
	}
	connector.handler = l.handlerCreator(connector)
	if connector.handler == nil {
		glog.Fatal("nil connection handler")
	}
	connector.Start()
}

func (l *Listener) GetName() string {
	if len(l.config.Name) != 0 {
		return l.config.Name
	}
	return l.config.GetConnString()
}

func (l *Listener) GetConnString() string {
	return l.config.GetConnString()
}

func (l *Listener) Addr() net.Addr {
	return l.netListener.Addr()
}

func (l *Listener) GetNumActiveConnections() uint32 {
	if l.connMgr != nil {
		return l.connMgr.GetNumActiveConnections()
	}
	return 0
}
