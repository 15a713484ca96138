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
Package session tracks the per-connection protocol state machine and the
entity view replicated over it.

A session walks the handshake

	AwaitingConnect -> AwaitingLogin -> Established -> Closed

on the accepting side, with AwaitingConnectAck and AwaitingLoginResult as the
dialing side's counterparts. ValidateInbound gates which message types the
peer may send in the current phase; anything else is a protocol violation and
the connection is torn down.

Entity bookkeeping errors that the protocol tolerates (an update for an id
never added, a remove for an unknown id, an add for an id already present)
come back as *MinorError. Callers log them and keep the session alive;
IsMinor tells them apart from fatal errors.
*/
package session

import (
	"fmt"
	"sync"

	uuid "github.com/satori/go.uuid"

	"ghack/pkg/proto"
	"ghack/pkg/util"
)

type Phase uint8

const (
	PhaseAwaitingConnect = Phase(iota)
	PhaseAwaitingConnectAck
	PhaseAwaitingLogin
	PhaseAwaitingLoginResult
	PhaseEstablished
	PhaseClosed
)

var phaseNameMap map[Phase]string = map[Phase]string{
	PhaseAwaitingConnect:     "AwaitingConnect",
	PhaseAwaitingConnectAck:  "AwaitingConnectAck",
	PhaseAwaitingLogin:       "AwaitingLogin",
	PhaseAwaitingLoginResult: "AwaitingLoginResult",
	PhaseEstablished:         "Established",
	PhaseClosed:              "Closed",
}

func (p Phase) String() string {
	if name, ok := phaseNameMap[p]; ok {
		return name
	}
	return "Unknown"
}

// Role selects which end of the handshake this session plays.
type Role uint8

const (
	RoleAcceptor = Role(iota) // server side of a connection
	RoleDialer                // client side of a connection
)

// legal phase transitions, keyed by role
var phaseEdges = map[Role]map[Phase][]Phase{
	RoleAcceptor: {
		PhaseAwaitingConnect: {PhaseAwaitingLogin, PhaseClosed},
		PhaseAwaitingLogin:   {PhaseEstablished, PhaseClosed},
		PhaseEstablished:     {PhaseClosed},
	},
	RoleDialer: {
		PhaseAwaitingConnectAck:  {PhaseAwaitingLoginResult, PhaseClosed},
		PhaseAwaitingLoginResult: {PhaseEstablished, PhaseClosed},
		PhaseEstablished:         {PhaseClosed},
	},
}

// inbound message types accepted per role and phase. Disconnect is legal in
// every phase. The acceptor never receives AssignControl or LoginResult; the
// dialer never receives Move or Login.
var inboundAllowed = map[Role]map[Phase][]proto.Type{
	RoleAcceptor: {
		PhaseAwaitingConnect: {proto.TypeConnect},
		PhaseAwaitingLogin:   {proto.TypeLogin},
		PhaseEstablished: {
			proto.TypeAddEntity,
			proto.TypeRemoveEntity,
			proto.TypeUpdateState,
			proto.TypeMove,
			proto.TypeEntityDeath,
			proto.TypeCombatHit,
		},
	},
	RoleDialer: {
		PhaseAwaitingConnectAck:  {proto.TypeConnect},
		PhaseAwaitingLoginResult: {proto.TypeLoginResult},
		PhaseEstablished: {
			proto.TypeAddEntity,
			proto.TypeRemoveEntity,
			proto.TypeUpdateState,
			proto.TypeAssignControl,
			proto.TypeEntityDeath,
			proto.TypeCombatHit,
		},
	},
}

// MinorError marks an entity bookkeeping inconsistency the protocol
// tolerates. The session stays usable after one.
type MinorError struct {
	msg string
}

func (e *MinorError) Error() string {
	return e.msg
}

func IsMinor(err error) bool {
	_, ok := err.(*MinorError)
	return ok
}

func minorErrorf(format string, args ...interface{}) *MinorError {
	return &MinorError{msg: fmt.Sprintf(format, args...)}
}

// NewMinorError builds a tolerated error for callers outside the package
// that keep their own entity tables.
func NewMinorError(format string, args ...interface{}) *MinorError {
	return minorErrorf(format, args...)
}

type Session struct {
	mtx     sync.Mutex
	id      uuid.UUID
	role    Role
	phase   Phase
	version uint32
	name    string

	entities      map[uint32]*Entity
	controlledUid uint32
	hasControl    bool

	minorErrors util.AtomicCounter
}

// NewAcceptor creates the server-side session for an accepted connection,
// waiting for the peer's Connect.
func NewAcceptor() *Session {
	return newSession(RoleAcceptor, PhaseAwaitingConnect)
}

// NewDialer creates the client-side session; the caller sends Connect and
// waits for the ack.
func NewDialer() *Session {
	return newSession(RoleDialer, PhaseAwaitingConnectAck)
}

func newSession(role Role, phase Phase) *Session {
	return &Session{
		id:       uuid.NewV4(),
		role:     role,
		phase:    phase,
		entities: make(map[uint32]*Entity),
	}
}

func (s *Session) Id() uuid.UUID {
	return s.id
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) Phase() Phase {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.phase
}

func (s *Session) SetName(name string) {
	s.mtx.Lock()
	s.name = name
	s.mtx.Unlock()
}

func (s *Session) Name() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.name
}

func (s *Session) SetVersion(v uint32) {
	s.mtx.Lock()
	s.version = v
	s.mtx.Unlock()
}

func (s *Session) Version() uint32 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.version
}

// ValidateInbound checks whether the peer may send t in the current phase.
func (s *Session) ValidateInbound(t proto.Type) error {
	if t == proto.TypeDisconnect {
		return nil
	}
	s.mtx.Lock()
	phase := s.phase
	s.mtx.Unlock()
	for _, allowed := range inboundAllowed[s.role][phase] {
		if t == allowed {
			return nil
		}
	}
	return fmt.Errorf("message %s not allowed in phase %s", t, phase)
}

// Advance moves the handshake to next; illegal edges fail.
func (s *Session) Advance(next Phase) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for _, p := range phaseEdges[s.role][s.phase] {
		if p == next {
			s.phase = next
			return nil
		}
	}
	return fmt.Errorf("illegal phase transition %s -> %s", s.phase, next)
}

func (s *Session) Close() {
	s.mtx.Lock()
	s.phase = PhaseClosed
	s.mtx.Unlock()
}

// MinorErrors reports how many tolerated inconsistencies this session has
// absorbed.
func (s *Session) MinorErrors() int32 {
	return s.minorErrors.Get()
}

// ApplyAddEntity registers the entity. Adding an id already present is a
// minor error; the existing entity keeps its states, only the name is
// refreshed.
func (s *Session) ApplyAddEntity(p *proto.AddEntity) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if e, ok := s.entities[p.Id]; ok {
		if len(p.Name) != 0 {
			e.Name = p.Name
		}
		s.minorErrors.Add(1)
		return minorErrorf("Entity id %d added twice", p.Id)
	}
	s.entities[p.Id] = NewEntity(p.Id, p.Name)
	return nil
}

// ApplyRemoveEntity drops the entity; removing an unknown id is a minor
// error.
func (s *Session) ApplyRemoveEntity(p *proto.RemoveEntity) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, ok := s.entities[p.Id]; !ok {
		s.minorErrors.Add(1)
		return minorErrorf("Entity id %d removed without being added", p.Id)
	}
	delete(s.entities, p.Id)
	return nil
}

// ApplyUpdateState stores the state on the entity; updating an unknown id is
// a minor error and the update is dropped.
func (s *Session) ApplyUpdateState(p *proto.UpdateState) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	e, ok := s.entities[p.Id]
	if !ok {
		s.minorErrors.Add(1)
		return minorErrorf("Entity id %d updated without being added", p.Id)
	}
	e.SetState(p.StateId, p.Value)
	return nil
}

// ApplyAssignControl records which entity the peer put under our control, or
// clears it when revoked.
func (s *Session) ApplyAssignControl(p *proto.AssignControl) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if p.Revoked {
		s.hasControl = false
		s.controlledUid = 0
		return
	}
	s.controlledUid = p.Uid
	s.hasControl = true
}

// Controlled reports the entity id under our control, if any.
func (s *Session) Controlled() (uid uint32, ok bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.controlledUid, s.hasControl
}

func (s *Session) Entity(id uint32) (e *Entity, ok bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	e, ok = s.entities[id]
	return
}

func (s *Session) NumEntities() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.entities)
}

// Entities returns a snapshot of the tracked entities.
func (s *Session) Entities() []*Entity {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	list := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		list = append(list, e)
	}
	return list
}
