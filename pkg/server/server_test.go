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
	"errors"
	"net"
	"testing"
	"time"

	"ghack/pkg/client"
	"ghack/pkg/io"
	"ghack/pkg/proto"
	"ghack/pkg/service"
	"ghack/pkg/session"
)

const testWait = 3 * time.Second

func newTestServer(t *testing.T, mutate func(*Config)) (srv *Server, addr string) {
	t.Helper()
	cfg := &Config{
		Service: service.Config{
			Listener: []io.ListenerConfig{
				{ServiceEndpoint: io.ServiceEndpoint{Addr: "127.0.0.1:0"}},
			},
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	srv = NewServer(cfg)
	go srv.Run()
	t.Cleanup(srv.Shutdown)
	addrs := srv.Addrs()
	if len(addrs) == 0 {
		t.Fatal("no listener address")
	}
	return srv, addrs[0].String()
}

type event struct {
	kind    string
	id      uint32
	name    string
	stateId string
	value   *proto.StateValue
	revoked bool
	death   *proto.EntityDeath
	hit     *proto.CombatHit
	reason  proto.DisconnectReason
}

type recordingHandler struct {
	events chan event
	// drained but unmatched events, replayed by later awaits
	seen []event
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan event, 256)}
}

func (h *recordingHandler) OnEntityAdded(e *session.Entity) {
	h.events <- event{kind: "add", id: e.Id, name: e.Name}
}

func (h *recordingHandler) OnEntityRemoved(id uint32, name string) {
	h.events <- event{kind: "remove", id: id, name: name}
}

func (h *recordingHandler) OnStateChanged(id uint32, stateId string, value *proto.StateValue) {
	h.events <- event{kind: "state", id: id, stateId: stateId, value: value}
}

func (h *recordingHandler) OnControlAssigned(uid uint32, revoked bool) {
	h.events <- event{kind: "control", id: uid, revoked: revoked}
}

func (h *recordingHandler) OnEntityDeath(p *proto.EntityDeath) {
	h.events <- event{kind: "death", id: p.Uid, name: p.Name, death: p}
}

func (h *recordingHandler) OnCombatHit(p *proto.CombatHit) {
	h.events <- event{kind: "hit", hit: p}
}

func (h *recordingHandler) OnDisconnect(reason proto.DisconnectReason, msg string) {
	h.events <- event{kind: "disconnect", reason: reason}
}

// await returns the first event matching pred, or fails after the timeout.
// Events drained while looking for an earlier match are kept and replayed,
// so awaits may be issued in any order relative to the arrival order.
func (h *recordingHandler) await(t *testing.T, what string, pred func(event) bool) event {
	t.Helper()
	for i, ev := range h.seen {
		if pred(ev) {
			h.seen = append(h.seen[:i], h.seen[i+1:]...)
			return ev
		}
	}
	deadline := time.After(testWait)
	for {
		select {
		case ev := <-h.events:
			if pred(ev) {
				return ev
			}
			h.seen = append(h.seen, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func dialPlayer(t *testing.T, addr string, name string) (client.IClient, *recordingHandler) {
	t.Helper()
	h := newRecordingHandler()
	c, err := client.New(client.Config{
		Server:     io.ServiceEndpoint{Addr: addr},
		PlayerName: name,
	}, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c, h
}

// joinPlayer connects and waits for the avatar handoff.
func joinPlayer(t *testing.T, addr string, name string) (client.IClient, *recordingHandler, uint32) {
	t.Helper()
	c, h := dialPlayer(t, addr, name)
	ev := h.await(t, "control assignment", func(ev event) bool { return ev.kind == "control" })
	return c, h, ev.id
}

func TestHandshakeAndJoin(t *testing.T) {
	_, addr := newTestServer(t, nil)

	c, h, uid := joinPlayer(t, addr, "alice")
	if uid == 0 {
		t.Fatal("controlled uid is zero")
	}
	if got, ok := c.Session().Controlled(); !ok || got != uid {
		t.Fatalf("Controlled() = %d, %v; want %d, true", got, ok, uid)
	}

	e, ok := c.Session().Entity(uid)
	if !ok {
		t.Fatal("avatar entity not mirrored")
	}
	if e.Name != "alice" {
		t.Fatalf("avatar name = %q", e.Name)
	}
	h.await(t, "avatar health", func(ev event) bool {
		return ev.kind == "state" && ev.id == uid && ev.stateId == kStateHealth
	})
	if v, ok := e.State(kStateHealth); !ok || v.GetInt() != kDefaultHealth {
		t.Fatalf("avatar health = %v", v)
	}
	if v, ok := e.State(kStateAsset); !ok || v.GetString() == "" {
		t.Fatalf("avatar asset = %v", v)
	}
}

func TestSecondPlayerSeesFirst(t *testing.T) {
	_, addr := newTestServer(t, nil)

	_, _, aliceUid := joinPlayer(t, addr, "alice")
	bob, _, bobUid := joinPlayer(t, addr, "bob")

	if aliceUid == bobUid {
		t.Fatalf("uids collide: %d", aliceUid)
	}
	if e, ok := bob.Session().Entity(aliceUid); !ok || e.Name != "alice" {
		t.Fatalf("bob does not see alice: %v, %v", e, ok)
	}
}

func TestMoveReplication(t *testing.T) {
	_, addr := newTestServer(t, nil)

	alice, _, aliceUid := joinPlayer(t, addr, "alice")
	_, bobH, _ := joinPlayer(t, addr, "bob")

	if err := alice.Move(proto.Vector3{X: 1, Y: 0, Z: 0}); err != nil {
		t.Fatal(err)
	}
	ev := bobH.await(t, "position update", func(ev event) bool {
		return ev.kind == "state" && ev.id == aliceUid && ev.stateId == kStatePosition &&
			ev.value.GetVector3() != (proto.Vector3{})
	})
	pos := ev.value.GetVector3()
	if pos.X != kDefaultMoveSpeed || pos.Y != 0 || pos.Z != 0 {
		t.Fatalf("position after move = %s", pos)
	}
}

func TestCombatHitAndKill(t *testing.T) {
	_, addr := newTestServer(t, func(cfg *Config) {
		cfg.World.DefaultHealth = 15
	})

	_, aliceH, aliceUid := joinPlayer(t, addr, "alice")
	_, _, bobUid := joinPlayer(t, addr, "bob")

	conn, enc, _ := rawEstablished(t, addr, "observer")
	defer conn.Close()

	// default damage leaves the victim alive
	mustEncode(t, enc, proto.NewCombatHit(aliceUid, "alice", bobUid, "bob", 0))
	hit := aliceH.await(t, "combat hit", func(ev event) bool { return ev.kind == "hit" })
	if hit.hit.Damage != kDefaultCombatDamage {
		t.Fatalf("damage = %g, want default %g", hit.hit.Damage, kDefaultCombatDamage)
	}
	aliceH.await(t, "victim health", func(ev event) bool {
		return ev.kind == "state" && ev.id == bobUid && ev.stateId == kStateHealth &&
			ev.value.GetInt() == 5
	})

	// second hit kills; the killer is credited
	mustEncode(t, enc, proto.NewCombatHit(aliceUid, "alice", bobUid, "bob", 0))
	death := aliceH.await(t, "entity death", func(ev event) bool { return ev.kind == "death" })
	if death.death.Uid != bobUid || death.death.KillerUid != aliceUid {
		t.Fatalf("death = %+v", death.death)
	}
	aliceH.await(t, "kill count", func(ev event) bool {
		return ev.kind == "state" && ev.id == aliceUid && ev.stateId == kStateKillCount &&
			ev.value.GetInt() == 1
	})
	aliceH.await(t, "victim removal", func(ev event) bool {
		return ev.kind == "remove" && ev.id == bobUid
	})
}

func TestServerFull(t *testing.T) {
	_, addr := newTestServer(t, func(cfg *Config) {
		cfg.MaxPlayers = 1
	})

	joinPlayer(t, addr, "alice")

	h := newRecordingHandler()
	c, err := client.New(client.Config{
		Server:     io.ServiceEndpoint{Addr: addr},
		PlayerName: "bob",
	}, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Connect(); !errors.Is(err, client.ErrServerFull) {
		t.Fatalf("Connect() = %v, want ErrServerFull", err)
	}
}

func TestBannedPlayerRejected(t *testing.T) {
	_, addr := newTestServer(t, func(cfg *Config) {
		cfg.Auth.Banned = []string{"mallory"}
	})

	h := newRecordingHandler()
	c, err := client.New(client.Config{
		Server:     io.ServiceEndpoint{Addr: addr},
		PlayerName: "mallory",
	}, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Connect(); !errors.Is(err, client.ErrBanned) {
		t.Fatalf("Connect() = %v, want ErrBanned", err)
	}
}

// --- raw frame helpers for wire-level behavior ---

func rawDial(t *testing.T, addr string) (net.Conn, *proto.Encoder, *proto.Decoder) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	conn.SetDeadline(time.Now().Add(testWait))
	return conn, proto.NewEncoder(conn), proto.NewDecoder(conn)
}

func mustEncode(t *testing.T, enc *proto.Encoder, m *proto.Message) {
	t.Helper()
	if err := enc.Encode(m); err != nil {
		t.Fatal(err)
	}
}

func mustDecode(t *testing.T, dec *proto.Decoder) *proto.Message {
	t.Helper()
	var m proto.Message
	if err := dec.Decode(&m); err != nil {
		t.Fatal(err)
	}
	return &m
}

// rawEstablished performs the handshake over a bare connection.
func rawEstablished(t *testing.T, addr string, name string) (net.Conn, *proto.Encoder, *proto.Decoder) {
	t.Helper()
	conn, enc, dec := rawDial(t, addr)
	mustEncode(t, enc, proto.NewConnect(proto.CurrentVersion, ""))
	if m := mustDecode(t, dec); m.Type != proto.TypeConnect {
		t.Fatalf("handshake ack type = %s", m.Type)
	}
	mustEncode(t, enc, proto.NewLogin(name, "", 0))
	m := mustDecode(t, dec)
	if m.Type != proto.TypeLoginResult || !m.LoginResult.Succeeded {
		t.Fatalf("login result = %+v", m)
	}
	return conn, enc, dec
}

func TestVersionMismatchDisconnects(t *testing.T) {
	_, addr := newTestServer(t, nil)

	conn, enc, dec := rawDial(t, addr)
	defer conn.Close()
	mustEncode(t, enc, proto.NewConnect(proto.CurrentVersion+1, "future"))

	m := mustDecode(t, dec)
	if m.Type != proto.TypeDisconnect {
		t.Fatalf("reply type = %s, want Disconnect", m.Type)
	}
	if m.Disconnect.Reason != proto.ReasonWrongProtocolVersion {
		t.Fatalf("reason = %s", m.Disconnect.Reason)
	}
}

func TestMoveBeforeLoginDisconnects(t *testing.T) {
	_, addr := newTestServer(t, nil)

	conn, enc, dec := rawDial(t, addr)
	defer conn.Close()
	mustEncode(t, enc, proto.NewConnect(proto.CurrentVersion, ""))
	if m := mustDecode(t, dec); m.Type != proto.TypeConnect {
		t.Fatalf("handshake ack type = %s", m.Type)
	}
	mustEncode(t, enc, proto.NewMove(proto.Vector3{X: 1}))

	m := mustDecode(t, dec)
	if m.Type != proto.TypeDisconnect {
		t.Fatalf("reply type = %s, want Disconnect", m.Type)
	}
	if m.Disconnect.Reason != proto.ReasonProtocolError {
		t.Fatalf("reason = %s", m.Disconnect.Reason)
	}
}

// A rejected login gets its LoginResult and then a Disconnect notice before
// the server closes the connection.
func TestLoginRejectSendsDisconnect(t *testing.T) {
	_, addr := newTestServer(t, func(cfg *Config) {
		cfg.Auth.Banned = []string{"mallory"}
	})

	conn, enc, dec := rawDial(t, addr)
	defer conn.Close()
	mustEncode(t, enc, proto.NewConnect(proto.CurrentVersion, ""))
	if m := mustDecode(t, dec); m.Type != proto.TypeConnect {
		t.Fatalf("handshake ack type = %s", m.Type)
	}
	mustEncode(t, enc, proto.NewLogin("mallory", "", 0))

	m := mustDecode(t, dec)
	if m.Type != proto.TypeLoginResult || m.LoginResult.Succeeded {
		t.Fatalf("login result = %+v", m)
	}
	if m.LoginResult.Reason != proto.LoginBanned {
		t.Fatalf("reason = %s", m.LoginResult.Reason)
	}
	if m = mustDecode(t, dec); m.Type != proto.TypeDisconnect {
		t.Fatalf("reply type = %s, want Disconnect", m.Type)
	}
}

// Updates naming an unknown entity are tolerated: the connection stays up.
func TestUnknownEntityUpdateTolerated(t *testing.T) {
	_, addr := newTestServer(t, nil)

	conn, enc, dec := rawEstablished(t, addr, "carol")
	defer conn.Close()

	mustEncode(t, enc, proto.NewUpdateState(9999, kStateHealth, proto.Int(1)))
	mustEncode(t, enc, proto.NewMove(proto.Vector3{X: 1}))

	// the move still round-trips as a position broadcast
	for {
		m := mustDecode(t, dec)
		if m.Type == proto.TypeDisconnect {
			t.Fatalf("disconnected: %s", m.Disconnect.Reason)
		}
		if m.Type == proto.TypeUpdateState && m.UpdateState.StateId == kStatePosition {
			return
		}
	}
}

func TestPrivilegedEntityPush(t *testing.T) {
	_, addr := newTestServer(t, nil)

	alice, h, _ := joinPlayer(t, addr, "alice")

	conn, enc, _ := rawEstablished(t, addr, "worldbuilder")
	defer conn.Close()

	mustEncode(t, enc, proto.NewAddEntity(7, "goblin"))
	mustEncode(t, enc, proto.NewUpdateState(7, "hp", proto.Int(30)))

	h.await(t, "pushed entity", func(ev event) bool {
		return ev.kind == "add" && ev.id == 7 && ev.name == "goblin"
	})
	h.await(t, "pushed state", func(ev event) bool {
		return ev.kind == "state" && ev.id == 7 && ev.stateId == "hp"
	})
	e, ok := alice.Session().Entity(7)
	if !ok {
		t.Fatal("goblin not mirrored")
	}
	if v, ok := e.State("hp"); !ok || v.GetInt() != 30 {
		t.Fatalf("goblin hp = %v", v)
	}

	mustEncode(t, enc, proto.NewRemoveEntity(7, "goblin"))
	h.await(t, "pushed removal", func(ev event) bool {
		return ev.kind == "remove" && ev.id == 7
	})
}

func TestLeaveDespawnsAvatar(t *testing.T) {
	_, addr := newTestServer(t, nil)

	alice, _, aliceUid := joinPlayer(t, addr, "alice")
	_, bobH, _ := joinPlayer(t, addr, "bob")

	if err := alice.Disconnect(); err != nil {
		t.Fatal(err)
	}
	bobH.await(t, "alice removal", func(ev event) bool {
		return ev.kind == "remove" && ev.id == aliceUid
	})
}
