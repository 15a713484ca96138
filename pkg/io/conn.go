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
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"ghack/pkg/io/ioutil"
	"ghack/pkg/logging/otel"
	"ghack/pkg/proto"
)

var (
	ErrSendQueueFull = errors.New("send queue full")
	ErrConnClosed    = errors.New("connection closed")
)

type (
	// IConnHandler consumes decoded frames off one connection. OnMessage
	// runs on the reader goroutine; a non-nil return tears the connection
	// down. OnClosed fires exactly once, after the socket is closed.
	IConnHandler interface {
		OnMessage(m *proto.Message) error
		OnClosed()
	}

	ConnHandlerCreator func(c *Connector) IConnHandler
)

// Connector owns one accepted connection: a reader goroutine decoding frames
// into the handler and a writer goroutine draining the send queue.
type Connector struct {
	conn      net.Conn
	reader    *bufio.Reader
	dec       *proto.Decoder
	chSend    chan *proto.Message
	chStop    chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	config    InboundConfig
	handler   IConnHandler
	connMgr   *InboundConnManager
}

func (c *Connector) Start() {
	glog.V(2).Info("start connector...")
	if c.connMgr != nil {
		c.connMgr.TrackConn(c, true)
	}
	go c.doRead()
	go c.doWrite()
}

func (c *Connector) Stop() {
	c.stopOnce.Do(func() {
		close(c.chStop)
	})
}

func (c *Connector) Close() {
	c.closeOnce.Do(func() {
		raddr := c.conn.RemoteAddr().String()
		glog.V(1).Infof("close: raddr=%s laddr=%s", raddr, c.conn.LocalAddr().String())

		c.Stop()
		c.conn.Close()
		if c.connMgr != nil {
			c.connMgr.TrackConn(c, false)
		}
		otel.RecordCount(otel.Close, nil)
		c.handler.OnClosed()
	})
}

func (c *Connector) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send queues m for the writer goroutine without blocking. A full queue
// means the peer is not draining; callers treat that as fatal.
func (c *Connector) Send(m *proto.Message) error {
	select {
	case <-c.chStop:
		return ErrConnClosed
	default:
	}
	select {
	case c.chSend <- m:
		return nil
	default:
		return ErrSendQueueFull
	}
}

func (c *Connector) doRead() {
	defer func() {
		glog.V(2).Info("reader exit")
		c.Stop()
	}()

	var msg proto.Message
	for {
		select {
		case <-c.chStop:
			return
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(c.config.IdleTimeout.Duration))
		if err := c.dec.Decode(&msg); err != nil {
			if err == io.EOF {
				glog.V(1).Infof("peer closed: %s", c.RemoteAddr())
				return
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				glog.V(1).Infof("idle timeout: %s", c.RemoteAddr())
				return
			}
			ioutil.LogError(err)
			return
		}
		otel.RecordCount(otel.FramesIn, nil)
		if err := c.handler.OnMessage(&msg); err != nil {
			glog.Warningf("%s: %s", c.RemoteAddr(), err)
			return
		}
	}
}

func (c *Connector) doWrite() {
	w := bufio.NewWriterSize(c.conn, c.config.IOBufSize)
	enc := proto.NewEncoder(w)

	defer func() {
		glog.V(2).Info("writer exit")
		c.Close()
	}()

	writeOne := func(m *proto.Message) error {
		c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout.Duration))
		if err := enc.Encode(m); err != nil {
			return err
		}
		otel.RecordCount(otel.FramesOut, nil)
		return nil
	}

	for {
		select {
		case <-c.chStop:
			// drain what is already queued, then flush and exit
			for {
				select {
				case m := <-c.chSend:
					if err := writeOne(m); err != nil {
						ioutil.LogError(err)
						return
					}
				default:
					if err := w.Flush(); err != nil {
						ioutil.LogError(err)
					}
					return
				}
			}

		case m := <-c.chSend:
			if err := writeOne(m); err != nil {
				ioutil.LogError(err)
				return
			}
		batch:
			for {
				select {
				case m := <-c.chSend:
					if err := writeOne(m); err != nil {
						ioutil.LogError(err)
						return
					}
				default:
					break batch
				}
			}
			if err := w.Flush(); err != nil {
				ioutil.LogError(err)
				return
			}
		}
	}
}
