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

package client

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"ghack/pkg/proto"
	"ghack/pkg/session"
	"ghack/pkg/version"
)

type clientImplT struct {
	config  Config
	handler IGameHandler
	sess    *session.Session

	mtx    sync.Mutex // serializes writes
	conn   net.Conn
	writer *bufio.Writer
	enc    *proto.Encoder
	dec    *proto.Decoder

	closeOnce sync.Once
	chDone    chan struct{}
}

func New(conf Config, handler IGameHandler) (IClient, error) {
	conf.SetDefault()
	if err := conf.validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		handler = GameHandlerBase{}
	}
	glog.V(1).Infof("client cfg=%v", conf)
	return &clientImplT{
		config:  conf,
		handler: handler,
		sess:    session.NewDialer(),
		chDone:  make(chan struct{}),
	}, nil
}

// Connect dials the server and performs the version exchange and login.
// It blocks until the session is established, the server rejects it, or
// the handshake timeout expires.
func (c *clientImplT) Connect() error {
	conn, err := net.DialTimeout(c.config.Server.Network, c.config.Server.Addr,
		c.config.IO.ConnectTimeout.Duration)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConnect, err)
	}
	c.conn = conn
	c.writer = bufio.NewWriterSize(conn, c.config.IO.IOBufSize)
	c.enc = proto.NewEncoder(c.writer)
	c.dec = proto.NewDecoder(bufio.NewReaderSize(conn, c.config.IO.IOBufSize))
	c.dec.SetMaxValueDepth(c.config.IO.MaxValueDepth)

	conn.SetDeadline(time.Now().Add(c.config.IO.HandshakeTimeout.Duration))
	if err := c.handshake(); err != nil {
		c.Close()
		return err
	}
	conn.SetDeadline(time.Time{})

	go c.readLoop()
	return nil
}

func (c *clientImplT) handshake() error {
	if err := c.send(proto.NewConnect(proto.CurrentVersion, version.OnelineVersionString())); err != nil {
		return fmt.Errorf("%w: %s", ErrHandshake, err)
	}
	m, err := c.recv()
	if err != nil {
		return err
	}
	ack := m.Connect
	if ack.Version != proto.CurrentVersion {
		glog.Warningf("server %s speaks version %d (%s), ours is %d",
			c.config.Server.Addr, ack.Version, ack.VersionStr, proto.CurrentVersion)
		return ErrWrongVersion
	}
	c.sess.SetVersion(ack.Version)
	if err := c.sess.Advance(session.PhaseAwaitingLoginResult); err != nil {
		return err
	}

	if err := c.send(proto.NewLogin(c.config.PlayerName, c.config.Authtoken, c.config.Permissions)); err != nil {
		return fmt.Errorf("%w: %s", ErrHandshake, err)
	}
	if m, err = c.recv(); err != nil {
		return err
	}
	result := m.LoginResult
	if !result.Succeeded {
		glog.Warningf("login of %q rejected: %s", c.config.PlayerName, result.Reason)
		return loginError(result.Reason)
	}
	c.sess.SetName(c.config.PlayerName)
	if err := c.sess.Advance(session.PhaseEstablished); err != nil {
		return err
	}
	glog.V(1).Infof("session %s established as %q", c.sess.Id(), c.config.PlayerName)
	return nil
}

// recv reads one handshake message. A Disconnect notice from the server is
// turned into the matching error.
func (c *clientImplT) recv() (*proto.Message, error) {
	var m proto.Message
	if err := c.dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHandshake, err)
	}
	if m.Type == proto.TypeDisconnect {
		p := m.Disconnect
		glog.Warningf("server disconnected during handshake: %s (%s)", p.Reason, p.ReasonStr)
		if p.Reason == proto.ReasonWrongProtocolVersion {
			return nil, ErrWrongVersion
		}
		return nil, ErrHandshake
	}
	if err := c.sess.ValidateInbound(m.Type); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHandshake, err)
	}
	return &m, nil
}

func (c *clientImplT) Move(direction proto.Vector3) error {
	if c.sess.Phase() != session.PhaseEstablished {
		return ErrNotReady
	}
	return c.send(proto.NewMove(direction))
}

func (c *clientImplT) Disconnect() error {
	err := c.send(proto.NewDisconnect(proto.ReasonQuit, "quit"))
	c.Close()
	return err
}

func (c *clientImplT) Close() {
	c.closeOnce.Do(func() {
		c.sess.Close()
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *clientImplT) Session() *session.Session {
	return c.sess
}

func (c *clientImplT) send(m *proto.Message) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.conn == nil {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.IO.WriteTimeout.Duration))
	if err := c.enc.Encode(m); err != nil {
		return err
	}
	return c.writer.Flush()
}

// readLoop mirrors replication events into the session and hands them to
// the game handler until the connection ends.
func (c *clientImplT) readLoop() {
	defer close(c.chDone)
	for {
		var m proto.Message
		if err := c.dec.Decode(&m); err != nil {
			if c.sess.Phase() != session.PhaseClosed {
				glog.V(1).Infof("connection to %s lost: %s", c.config.Server.Addr, err)
				c.Close()
				c.handler.OnDisconnect(0, "connection lost")
			}
			return
		}
		if m.Type == proto.TypeDisconnect {
			p := m.Disconnect
			c.Close()
			c.handler.OnDisconnect(p.Reason, p.ReasonStr)
			return
		}
		if err := c.sess.ValidateInbound(m.Type); err != nil {
			glog.Warningf("dropping server %s: %s", c.config.Server.Addr, err)
			c.send(proto.NewDisconnect(proto.ReasonProtocolError, err.Error()))
			c.Close()
			c.handler.OnDisconnect(proto.ReasonProtocolError, err.Error())
			return
		}
		c.dispatch(&m)
	}
}

func (c *clientImplT) dispatch(m *proto.Message) {
	switch m.Type {
	case proto.TypeAddEntity:
		if err := c.sess.ApplyAddEntity(m.AddEntity); err != nil {
			glog.V(1).Info(err)
			return
		}
		if e, ok := c.sess.Entity(m.AddEntity.Id); ok {
			c.handler.OnEntityAdded(e)
		}
	case proto.TypeRemoveEntity:
		if err := c.sess.ApplyRemoveEntity(m.RemoveEntity); err != nil {
			glog.V(1).Info(err)
			return
		}
		c.handler.OnEntityRemoved(m.RemoveEntity.Id, m.RemoveEntity.Name)
	case proto.TypeUpdateState:
		if err := c.sess.ApplyUpdateState(m.UpdateState); err != nil {
			glog.V(1).Info(err)
			return
		}
		c.handler.OnStateChanged(m.UpdateState.Id, m.UpdateState.StateId, m.UpdateState.Value)
	case proto.TypeAssignControl:
		c.sess.ApplyAssignControl(m.AssignControl)
		c.handler.OnControlAssigned(m.AssignControl.Uid, m.AssignControl.Revoked)
	case proto.TypeEntityDeath:
		c.handler.OnEntityDeath(m.EntityDeath)
	case proto.TypeCombatHit:
		c.handler.OnCombatHit(m.CombatHit)
	}
}
