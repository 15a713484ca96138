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
	"sync"

	"github.com/golang/glog"

	"ghack/pkg/proto"
	"ghack/pkg/session"
	"ghack/pkg/util"
)

// Entity state ids replicated to clients.
const (
	kStatePosition  = "Position"
	kStateHealth    = "Health"
	kStateMaxHealth = "MaxHealth"
	kStateKillCount = "KillCount"
	kStateAsset     = "Asset"
)

// World is the authoritative entity table shared by all player connections.
// Every mutation is broadcast to the connected players.
type World struct {
	mtx      sync.Mutex
	cfg      WorldConfig
	entities map[uint32]*session.Entity
	players  map[*connHandler]uint32
	nextUid  uint32
}

func NewWorld(cfg WorldConfig) *World {
	return &World{
		cfg:      cfg,
		entities: make(map[uint32]*session.Entity),
		players:  make(map[*connHandler]uint32),
	}
}

func (w *World) NumPlayers() int {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return len(w.players)
}

// Join spawns an avatar for the player, replicates the world to it and hands
// it control of the new entity.
func (w *World) Join(h *connHandler, name string) uint32 {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	w.nextUid++
	uid := w.nextUid

	e := session.NewEntity(uid, name)
	e.SetState(kStatePosition, proto.Vec3(0, 0, 0))
	e.SetState(kStateHealth, proto.Int(w.cfg.DefaultHealth))
	e.SetState(kStateMaxHealth, proto.Int(w.cfg.DefaultHealth))
	e.SetState(kStateKillCount, proto.Int(0))
	e.SetState(kStateAsset, proto.Str(w.pickAsset(name)))

	// replicate the existing world to the new player first
	for _, other := range w.entities {
		w.sendEntity(h, other)
	}

	w.entities[uid] = e
	w.players[h] = uid

	// then the new avatar to everybody, the new player included
	for p := range w.players {
		w.sendEntity(p, e)
	}
	h.send(proto.NewAssignControl(uid, false))

	glog.Infof("player %q joined, uid=%d, players=%d", name, uid, len(w.players))
	return uid
}

// Leave despawns the player's avatar.
func (w *World) Leave(h *connHandler) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	uid, ok := w.players[h]
	if !ok {
		return
	}
	delete(w.players, h)
	e := w.entities[uid]
	delete(w.entities, uid)
	if e != nil {
		w.broadcast(proto.NewRemoveEntity(uid, e.Name))
		glog.Infof("player %q left, uid=%d, players=%d", e.Name, uid, len(w.players))
	}
}

// Move displaces the player's avatar by direction scaled with the world move
// speed and replicates the new position.
func (w *World) Move(h *connHandler, direction proto.Vector3) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	uid, ok := w.players[h]
	if !ok {
		return
	}
	e := w.entities[uid]
	if e == nil {
		return
	}
	var pos proto.Vector3
	if cur, ok := e.State(kStatePosition); ok {
		pos = cur.GetVector3()
	}
	pos.X += direction.X * w.cfg.MoveSpeed
	pos.Y += direction.Y * w.cfg.MoveSpeed
	pos.Z += direction.Z * w.cfg.MoveSpeed
	val := proto.Vec3(pos.X, pos.Y, pos.Z)
	e.SetState(kStatePosition, val)
	w.broadcast(proto.NewUpdateState(uid, kStatePosition, val))
}

// ApplyAddEntity registers a non-player entity pushed by a privileged peer
// and replicates it. An id collision is a minor error.
func (w *World) ApplyAddEntity(h *connHandler, p *proto.AddEntity) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if _, ok := w.entities[p.Id]; ok {
		return session.NewMinorError("Entity id %d added twice", p.Id)
	}
	w.entities[p.Id] = session.NewEntity(p.Id, p.Name)
	if p.Id > w.nextUid {
		w.nextUid = p.Id
	}
	w.broadcastExcept(h, proto.NewAddEntity(p.Id, p.Name))
	return nil
}

func (w *World) ApplyRemoveEntity(h *connHandler, p *proto.RemoveEntity) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	e, ok := w.entities[p.Id]
	if !ok {
		return session.NewMinorError("Entity id %d removed without being added", p.Id)
	}
	delete(w.entities, p.Id)
	w.broadcastExcept(h, proto.NewRemoveEntity(p.Id, e.Name))
	return nil
}

func (w *World) ApplyUpdateState(h *connHandler, p *proto.UpdateState) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	e, ok := w.entities[p.Id]
	if !ok {
		return session.NewMinorError("Entity id %d updated without being added", p.Id)
	}
	e.SetState(p.StateId, p.Value)
	w.broadcastExcept(h, proto.NewUpdateState(p.Id, p.StateId, p.Value))
	return nil
}

// CombatHit applies the configured damage to the victim and replicates the
// hit; a victim at zero health dies and is despawned. Hits referencing
// unknown entities are minor errors.
func (w *World) CombatHit(h *connHandler, p *proto.CombatHit) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	attacker, ok := w.entities[p.AttackerUid]
	if !ok {
		return session.NewMinorError("Entity id %d updated without being added", p.AttackerUid)
	}
	victim, ok := w.entities[p.VictimUid]
	if !ok {
		return session.NewMinorError("Entity id %d updated without being added", p.VictimUid)
	}

	damage := p.Damage
	if damage == 0 {
		damage = w.cfg.CombatDamage
	}

	var hp int64
	if cur, ok := victim.State(kStateHealth); ok {
		hp = cur.GetInt()
	}
	hp -= int64(damage)
	if hp < 0 {
		hp = 0
	}
	victim.SetState(kStateHealth, proto.Int(hp))

	w.broadcast(proto.NewCombatHit(attacker.Id, attacker.Name, victim.Id, victim.Name, damage))
	w.broadcast(proto.NewUpdateState(victim.Id, kStateHealth, proto.Int(hp)))

	if hp == 0 {
		w.killLocked(victim, attacker)
	}
	return nil
}

// RelayEntityDeath handles a death reported by a privileged peer: the victim
// is despawned and the killer credited, as for a combat kill.
func (w *World) RelayEntityDeath(h *connHandler, p *proto.EntityDeath) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	victim, ok := w.entities[p.Uid]
	if !ok {
		return session.NewMinorError("Entity id %d removed without being added", p.Uid)
	}
	killer := w.entities[p.KillerUid]
	if killer != nil {
		w.killLocked(victim, killer)
		return nil
	}
	w.broadcast(proto.NewEntityDeath(victim.Id, victim.Name, p.KillerUid, p.KillerName))
	delete(w.entities, victim.Id)
	w.broadcast(proto.NewRemoveEntity(victim.Id, victim.Name))
	return nil
}

// killLocked despawns the victim and credits the killer. Caller holds w.mtx.
func (w *World) killLocked(victim, killer *session.Entity) {
	var kills int64
	if cur, ok := killer.State(kStateKillCount); ok {
		kills = cur.GetInt()
	}
	kills++
	killer.SetState(kStateKillCount, proto.Int(kills))

	w.broadcast(proto.NewEntityDeath(victim.Id, victim.Name, killer.Id, killer.Name))
	w.broadcast(proto.NewUpdateState(killer.Id, kStateKillCount, proto.Int(kills)))

	delete(w.entities, victim.Id)
	w.broadcast(proto.NewRemoveEntity(victim.Id, victim.Name))
	glog.Infof("%q killed by %q", victim.Name, killer.Name)
}

// pickAsset maps a player name onto the configured asset list.
func (w *World) pickAsset(name string) string {
	idx := util.Murmur3Hash([]byte(name)) % uint32(len(w.cfg.Assets))
	return w.cfg.Assets[idx]
}

// sendEntity replicates one entity and all its states to one player.
func (w *World) sendEntity(h *connHandler, e *session.Entity) {
	h.send(proto.NewAddEntity(e.Id, e.Name))
	for _, stateId := range e.StateIds() {
		if v, ok := e.State(stateId); ok {
			h.send(proto.NewUpdateState(e.Id, stateId, v))
		}
	}
}

func (w *World) broadcast(m *proto.Message) {
	for h := range w.players {
		h.send(m)
	}
}

func (w *World) broadcastExcept(skip *connHandler, m *proto.Message) {
	for h := range w.players {
		if h != skip {
			h.send(m)
		}
	}
}
