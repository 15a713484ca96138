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

package session

import (
	"testing"

	"ghack/pkg/proto"
)

func TestAcceptorHandshakePhases(t *testing.T) {
	s := NewAcceptor()
	if s.Phase() != PhaseAwaitingConnect {
		t.Fatalf("new acceptor in phase %s", s.Phase())
	}
	if err := s.ValidateInbound(proto.TypeLogin); err == nil {
		t.Error("Login accepted before Connect")
	}
	if err := s.ValidateInbound(proto.TypeMove); err == nil {
		t.Error("Move accepted before Connect")
	}
	if err := s.ValidateInbound(proto.TypeConnect); err != nil {
		t.Errorf("Connect rejected: %s", err)
	}
	if err := s.ValidateInbound(proto.TypeDisconnect); err != nil {
		t.Errorf("Disconnect rejected: %s", err)
	}

	if err := s.Advance(PhaseEstablished); err == nil {
		t.Error("skipped AwaitingLogin")
	}
	if err := s.Advance(PhaseAwaitingLogin); err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateInbound(proto.TypeConnect); err == nil {
		t.Error("second Connect accepted")
	}
	if err := s.ValidateInbound(proto.TypeLogin); err != nil {
		t.Errorf("Login rejected: %s", err)
	}

	if err := s.Advance(PhaseEstablished); err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateInbound(proto.TypeMove); err != nil {
		t.Errorf("Move rejected when established: %s", err)
	}
	if err := s.ValidateInbound(proto.TypeAssignControl); err == nil {
		t.Error("acceptor accepted AssignControl")
	}
	if err := s.ValidateInbound(proto.TypeLogin); err == nil {
		t.Error("Login accepted when established")
	}

	s.Close()
	if s.Phase() != PhaseClosed {
		t.Errorf("phase %s after Close", s.Phase())
	}
	if err := s.ValidateInbound(proto.TypeMove); err == nil {
		t.Error("Move accepted after close")
	}
}

func TestDialerHandshakePhases(t *testing.T) {
	s := NewDialer()
	if s.Phase() != PhaseAwaitingConnectAck {
		t.Fatalf("new dialer in phase %s", s.Phase())
	}
	if err := s.ValidateInbound(proto.TypeConnect); err != nil {
		t.Errorf("Connect ack rejected: %s", err)
	}
	if err := s.ValidateInbound(proto.TypeLoginResult); err == nil {
		t.Error("LoginResult accepted before Connect ack")
	}
	if err := s.Advance(PhaseAwaitingLoginResult); err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateInbound(proto.TypeLoginResult); err != nil {
		t.Errorf("LoginResult rejected: %s", err)
	}
	if err := s.Advance(PhaseEstablished); err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateInbound(proto.TypeAssignControl); err != nil {
		t.Errorf("AssignControl rejected: %s", err)
	}
	if err := s.ValidateInbound(proto.TypeMove); err == nil {
		t.Error("dialer accepted Move")
	}
}

func TestEntityBookkeeping(t *testing.T) {
	s := NewDialer()

	if err := s.ApplyAddEntity(&proto.AddEntity{Id: 7, Name: "Player"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyUpdateState(&proto.UpdateState{Id: 7, StateId: "Health", Value: proto.Int(30)}); err != nil {
		t.Fatal(err)
	}
	e, ok := s.Entity(7)
	if !ok {
		t.Fatal("entity 7 missing")
	}
	if v, ok := e.State("Health"); !ok || v.GetInt() != 30 {
		t.Errorf("Health = %s", v)
	}

	// Duplicate add: minor, first registration wins, name refreshed.
	err := s.ApplyAddEntity(&proto.AddEntity{Id: 7, Name: "Renamed"})
	if !IsMinor(err) {
		t.Fatalf("duplicate add: got %v", err)
	}
	if err.Error() != "Entity id 7 added twice" {
		t.Errorf("message %q", err.Error())
	}
	e, _ = s.Entity(7)
	if e.Name != "Renamed" {
		t.Errorf("name not refreshed: %q", e.Name)
	}
	if v, ok := e.State("Health"); !ok || v.GetInt() != 30 {
		t.Error("states lost on duplicate add")
	}

	// Unknown-id update and remove: minor, dropped.
	err = s.ApplyUpdateState(&proto.UpdateState{Id: 99, StateId: "Health", Value: proto.Int(1)})
	if !IsMinor(err) || err.Error() != "Entity id 99 updated without being added" {
		t.Errorf("unknown update: %v", err)
	}
	err = s.ApplyRemoveEntity(&proto.RemoveEntity{Id: 99})
	if !IsMinor(err) || err.Error() != "Entity id 99 removed without being added" {
		t.Errorf("unknown remove: %v", err)
	}
	if s.MinorErrors() != 3 {
		t.Errorf("minor error count %d, want 3", s.MinorErrors())
	}

	if err = s.ApplyRemoveEntity(&proto.RemoveEntity{Id: 7}); err != nil {
		t.Fatal(err)
	}
	if s.NumEntities() != 0 {
		t.Errorf("%d entities left", s.NumEntities())
	}
}

func TestAssignControl(t *testing.T) {
	s := NewDialer()
	if _, ok := s.Controlled(); ok {
		t.Fatal("control assigned on fresh session")
	}
	s.ApplyAssignControl(&proto.AssignControl{Uid: 7})
	if uid, ok := s.Controlled(); !ok || uid != 7 {
		t.Fatalf("Controlled() = %d, %t", uid, ok)
	}
	s.ApplyAssignControl(&proto.AssignControl{Uid: 7, Revoked: true})
	if _, ok := s.Controlled(); ok {
		t.Fatal("control not revoked")
	}
}

func TestMinorErrorIdentity(t *testing.T) {
	if IsMinor(proto.ErrMalformedPayload) {
		t.Error("protocol error classified as minor")
	}
	if !IsMinor(minorErrorf("x")) {
		t.Error("minor error not classified")
	}
}
