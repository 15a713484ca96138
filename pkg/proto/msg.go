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

package proto

import (
	"fmt"
)

// Message is the decoded envelope. Exactly the payload pointer matching Type
// is non-nil; the constructors below maintain this and validate() enforces it
// before encoding.
type Message struct {
	Type Type

	Connect       *Connect
	Disconnect    *Disconnect
	Login         *Login
	LoginResult   *LoginResult
	AddEntity     *AddEntity
	RemoveEntity  *RemoveEntity
	UpdateState   *UpdateState
	Move          *Move
	AssignControl *AssignControl
	EntityDeath   *EntityDeath
	CombatHit     *CombatHit
}

type Connect struct {
	Version    uint32
	VersionStr string
}

type Disconnect struct {
	Reason    DisconnectReason
	ReasonStr string
}

type Login struct {
	Name        string
	Authtoken   string
	Permissions uint32
}

type LoginResult struct {
	Succeeded bool
	Reason    LoginReason
}

type AddEntity struct {
	Id   uint32
	Name string
}

type RemoveEntity struct {
	Id   uint32
	Name string
}

type UpdateState struct {
	Id      uint32
	StateId string
	Value   *StateValue
}

type Move struct {
	Direction Vector3
}

type AssignControl struct {
	Uid     uint32
	Revoked bool
}

type EntityDeath struct {
	Uid        uint32
	Name       string
	KillerUid  uint32
	KillerName string
}

type CombatHit struct {
	AttackerUid  uint32
	AttackerName string
	VictimUid    uint32
	VictimName   string
	Damage       float64
}

func NewConnect(version uint32, versionStr string) *Message {
	return &Message{
		Type:    TypeConnect,
		Connect: &Connect{Version: version, VersionStr: versionStr},
	}
}

func NewDisconnect(reason DisconnectReason, reasonStr string) *Message {
	return &Message{
		Type:       TypeDisconnect,
		Disconnect: &Disconnect{Reason: reason, ReasonStr: reasonStr},
	}
}

func NewLogin(name string, authtoken string, permissions uint32) *Message {
	return &Message{
		Type:  TypeLogin,
		Login: &Login{Name: name, Authtoken: authtoken, Permissions: permissions},
	}
}

func NewLoginResult(succeeded bool, reason LoginReason) *Message {
	return &Message{
		Type:        TypeLoginResult,
		LoginResult: &LoginResult{Succeeded: succeeded, Reason: reason},
	}
}

func NewAddEntity(id uint32, name string) *Message {
	return &Message{
		Type:      TypeAddEntity,
		AddEntity: &AddEntity{Id: id, Name: name},
	}
}

func NewRemoveEntity(id uint32, name string) *Message {
	return &Message{
		Type:         TypeRemoveEntity,
		RemoveEntity: &RemoveEntity{Id: id, Name: name},
	}
}

func NewUpdateState(id uint32, stateId string, value *StateValue) *Message {
	return &Message{
		Type:        TypeUpdateState,
		UpdateState: &UpdateState{Id: id, StateId: stateId, Value: value},
	}
}

func NewMove(direction Vector3) *Message {
	return &Message{
		Type: TypeMove,
		Move: &Move{Direction: direction},
	}
}

func NewAssignControl(uid uint32, revoked bool) *Message {
	return &Message{
		Type:          TypeAssignControl,
		AssignControl: &AssignControl{Uid: uid, Revoked: revoked},
	}
}

func NewEntityDeath(uid uint32, name string, killerUid uint32, killerName string) *Message {
	return &Message{
		Type: TypeEntityDeath,
		EntityDeath: &EntityDeath{
			Uid:        uid,
			Name:       name,
			KillerUid:  killerUid,
			KillerName: killerName,
		},
	}
}

func NewCombatHit(attackerUid uint32, attackerName string,
	victimUid uint32, victimName string, damage float64) *Message {
	return &Message{
		Type: TypeCombatHit,
		CombatHit: &CombatHit{
			AttackerUid:  attackerUid,
			AttackerName: attackerName,
			VictimUid:    victimUid,
			VictimName:   victimName,
			Damage:       damage,
		},
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("Message{%s}", m.Type.String())
}

// validate checks that the payload pointer matching Type is set. It does not
// reject extra payloads; the encoder only emits the matching one.
func (m *Message) validate() error {
	var ok bool
	switch m.Type {
	case TypeConnect:
		ok = m.Connect != nil
	case TypeDisconnect:
		ok = m.Disconnect != nil
	case TypeLogin:
		ok = m.Login != nil
	case TypeLoginResult:
		ok = m.LoginResult != nil
	case TypeAddEntity:
		ok = m.AddEntity != nil
	case TypeRemoveEntity:
		ok = m.RemoveEntity != nil
	case TypeUpdateState:
		ok = m.UpdateState != nil && m.UpdateState.Value != nil
	case TypeMove:
		ok = m.Move != nil
	case TypeAssignControl:
		ok = m.AssignControl != nil
	case TypeEntityDeath:
		ok = m.EntityDeath != nil
	case TypeCombatHit:
		ok = m.CombatHit != nil
	}
	if !ok {
		return ErrInvalidMessage
	}
	return nil
}

// reset clears the envelope for reuse by Decoder.Decode.
func (m *Message) reset() {
	*m = Message{}
}
