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

package server

import (
	"fmt"

	"github.com/golang/glog"

	"ghack/pkg/io"
	"ghack/pkg/logging"
	"ghack/pkg/logging/otel"
	"ghack/pkg/proto"
	"ghack/pkg/session"
	"ghack/pkg/version"
)

// connHandler walks one client through the handshake and, once established,
// feeds its messages into the world.
type connHandler struct {
	conn *io.Connector
	srv  *Server
	sess *session.Session
}

func (h *connHandler) OnMessage(m *proto.Message) error {
	if err := h.sess.ValidateInbound(m.Type); err != nil {
		kv := logging.NewKVBufferForLog().
			AddMsgType(m.Type).
			AddPhase(h.sess.Phase().String()).
			AddRemoteAddr(h.conn.RemoteAddr())
		glog.Warningf("protocol violation, %s", kv.String())
		h.disconnect(proto.ReasonProtocolError, err.Error())
		return nil
	}

	switch m.Type {
	case proto.TypeConnect:
		return h.onConnect(m.Connect)
	case proto.TypeLogin:
		return h.onLogin(m.Login)
	case proto.TypeDisconnect:
		h.onDisconnect(m.Disconnect)
	case proto.TypeMove:
		h.srv.world.Move(h, m.Move.Direction)
	case proto.TypeAddEntity:
		h.tolerate(h.srv.world.ApplyAddEntity(h, m.AddEntity))
	case proto.TypeRemoveEntity:
		h.tolerate(h.srv.world.ApplyRemoveEntity(h, m.RemoveEntity))
	case proto.TypeUpdateState:
		h.tolerate(h.srv.world.ApplyUpdateState(h, m.UpdateState))
	case proto.TypeEntityDeath:
		h.tolerate(h.srv.world.RelayEntityDeath(h, m.EntityDeath))
	case proto.TypeCombatHit:
		h.tolerate(h.srv.world.CombatHit(h, m.CombatHit))
	}
	return nil
}

func (h *connHandler) onConnect(p *proto.Connect) error {
	if p.Version != proto.CurrentVersion {
		glog.Warningf("version mismatch from %s: peer=%d (%s), ours=%d",
			h.conn.RemoteAddr(), p.Version, p.VersionStr, proto.CurrentVersion)
		h.disconnect(proto.ReasonWrongProtocolVersion,
			fmt.Sprintf("server speaks version %d", proto.CurrentVersion))
		return nil
	}
	h.sess.SetVersion(p.Version)
	h.send(proto.NewConnect(proto.CurrentVersion, version.OnelineVersionString()))
	return h.sess.Advance(session.PhaseAwaitingLogin)
}

func (h *connHandler) onLogin(p *proto.Login) error {
	if h.srv.config.MaxPlayers > 0 && h.srv.world.NumPlayers() >= h.srv.config.MaxPlayers {
		h.rejectLogin(p.Name, proto.LoginServerFull)
		return nil
	}
	ok, reason := h.srv.authority.Authenticate(p.Name, p.Authtoken, p.Permissions)
	if !ok {
		h.rejectLogin(p.Name, reason)
		return nil
	}

	h.sess.SetName(p.Name)
	h.send(proto.NewLoginResult(true, 0))
	if err := h.sess.Advance(session.PhaseEstablished); err != nil {
		return err
	}
	otel.RecordCount(otel.LoginSuccess, nil)

	kv := logging.NewKVBufferForLog().
		AddUser(p.Name).
		AddSessionId(h.sess.Id().String()).
		AddRemoteAddr(h.conn.RemoteAddr())
	glog.Infof("login ok, %s", kv.String())

	h.srv.world.Join(h, p.Name)
	return nil
}

func (h *connHandler) rejectLogin(name string, reason proto.LoginReason) {
	kv := logging.NewKVBufferForLog().
		AddUser(name).
		AddReason(reason.String()).
		AddRemoteAddr(h.conn.RemoteAddr())
	glog.Warningf("login rejected, %s", kv.String())
	otel.RecordCount(otel.LoginFailure, []otel.Tags{{TagName: otel.Reason, TagValue: reason.String()}})

	h.send(proto.NewLoginResult(false, reason))
	h.send(proto.NewDisconnect(proto.ReasonQuit, "login rejected: "+reason.String()))
	h.sess.Close()
	h.conn.Stop()
}

func (h *connHandler) onDisconnect(p *proto.Disconnect) {
	kv := logging.NewKVBufferForLog().
		AddUser(h.sess.Name()).
		AddReason(p.Reason.String()).
		AddRemoteAddr(h.conn.RemoteAddr())
	glog.Infof("peer disconnect, %s", kv.String())
	otel.RecordCount(otel.Disconnect, []otel.Tags{{TagName: otel.Reason, TagValue: p.Reason.String()}})
	h.sess.Close()
	h.conn.Stop()
}

// tolerate logs a minor entity bookkeeping error and keeps the connection;
// anything else tears it down.
func (h *connHandler) tolerate(err error) {
	if err == nil {
		return
	}
	if session.IsMinor(err) {
		glog.V(1).Infof("%s: %s", h.conn.RemoteAddr(), err)
		otel.RecordCount(otel.MinorError, nil)
		return
	}
	glog.Warningf("%s: %s", h.conn.RemoteAddr(), err)
	h.disconnect(proto.ReasonProtocolError, err.Error())
}

// disconnect notifies the peer and stops the connection; the writer drains
// the notification before the socket closes.
func (h *connHandler) disconnect(reason proto.DisconnectReason, msg string) {
	h.send(proto.NewDisconnect(reason, msg))
	otel.RecordCount(otel.Disconnect, []otel.Tags{{TagName: otel.Reason, TagValue: reason.String()}})
	h.sess.Close()
	h.conn.Stop()
}

func (h *connHandler) send(m *proto.Message) {
	if err := h.conn.Send(m); err != nil {
		glog.Warningf("drop %s to %s: %s", m.Type, h.conn.RemoteAddr(), err)
		h.conn.Stop()
	}
}

func (h *connHandler) OnClosed() {
	h.srv.world.Leave(h)
	h.sess.Close()
}
