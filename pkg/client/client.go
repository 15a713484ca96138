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

/*
Package client implements the game client API.

Connect performs the full handshake (version exchange followed by login)
and blocks until the session is established or fails.

possible returned error from Connect

  - nil
  - ErrConnect
  - ErrHandshake
  - ErrWrongVersion
  - ErrAccessDenied
  - ErrServerFull
  - ErrBanned

After a successful Connect the client mirrors the server's entity table and
delivers every replication event to the registered IGameHandler from a
single reader goroutine.
*/
package client

import (
	"ghack/pkg/proto"
	"ghack/pkg/session"
)

type IClient interface {
	// Connect dials the server and runs the handshake to completion.
	Connect() error
	// Move asks the server to displace the controlled avatar.
	Move(direction proto.Vector3) error
	// Disconnect notifies the server and closes the connection.
	Disconnect() error
	// Close tears the connection down without notifying the peer.
	Close()

	// Session exposes the mirrored entity table and handshake state.
	Session() *session.Session
}

// IGameHandler receives replication events. Callbacks run on the client's
// reader goroutine; blocking in one stalls the connection.
type IGameHandler interface {
	OnEntityAdded(e *session.Entity)
	OnEntityRemoved(id uint32, name string)
	OnStateChanged(id uint32, stateId string, value *proto.StateValue)
	OnControlAssigned(uid uint32, revoked bool)
	OnEntityDeath(p *proto.EntityDeath)
	OnCombatHit(p *proto.CombatHit)
	OnDisconnect(reason proto.DisconnectReason, msg string)
}

// GameHandlerBase is a no-op IGameHandler for embedding.
type GameHandlerBase struct{}

func (GameHandlerBase) OnEntityAdded(*session.Entity)                    {}
func (GameHandlerBase) OnEntityRemoved(uint32, string)                   {}
func (GameHandlerBase) OnStateChanged(uint32, string, *proto.StateValue) {}
func (GameHandlerBase) OnControlAssigned(uint32, bool)                   {}
func (GameHandlerBase) OnEntityDeath(*proto.EntityDeath)                 {}
func (GameHandlerBase) OnCombatHit(*proto.CombatHit)                     {}
func (GameHandlerBase) OnDisconnect(proto.DisconnectReason, string)      {}
