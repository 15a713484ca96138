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
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Encoder frames messages onto w. Not safe for concurrent use; callers
// serialize writes themselves.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(m *Message) error {
	frame, err := EncodeFrame(m)
	if err != nil {
		return err
	}
	if _, err = e.w.Write(frame); err != nil {
		return NewProtocolError(err)
	}
	return nil
}

// EncodeFrame serializes m into a complete frame, header included. It fails
// with ErrPayloadTooLarge before producing anything if the body cannot fit a
// uint16 length, and with ErrInvalidMessage if the payload matching m.Type
// is not set.
func EncodeFrame(m *Message) (frame []byte, err error) {
	if err = m.validate(); err != nil {
		return
	}
	body := appendMessage(make([]byte, 0, 64), m)
	if len(body) > kMaxPayloadSize {
		err = ErrPayloadTooLarge
		return
	}
	frame = make([]byte, kFrameHeaderSize, kFrameHeaderSize+len(body))
	EncByteOrder.PutUint16(frame, uint16(len(body)))
	frame = append(frame, body...)
	return
}

func appendMessage(b []byte, m *Message) []byte {
	b = protowire.AppendTag(b, kFieldMsgType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))

	var sub []byte
	switch m.Type {
	case TypeConnect:
		sub = appendConnect(nil, m.Connect)
	case TypeDisconnect:
		sub = appendDisconnect(nil, m.Disconnect)
	case TypeLogin:
		sub = appendLogin(nil, m.Login)
	case TypeLoginResult:
		sub = appendLoginResult(nil, m.LoginResult)
	case TypeAddEntity:
		sub = appendEntityRef(nil, m.AddEntity.Id, m.AddEntity.Name)
	case TypeRemoveEntity:
		sub = appendEntityRef(nil, m.RemoveEntity.Id, m.RemoveEntity.Name)
	case TypeUpdateState:
		sub = appendUpdateState(nil, m.UpdateState)
	case TypeMove:
		sub = appendMove(nil, m.Move)
	case TypeAssignControl:
		sub = appendAssignControl(nil, m.AssignControl)
	case TypeEntityDeath:
		sub = appendEntityDeath(nil, m.EntityDeath)
	case TypeCombatHit:
		sub = appendCombatHit(nil, m.CombatHit)
	}
	b = protowire.AppendTag(b, protowire.Number(fieldForType(m.Type)), protowire.BytesType)
	b = protowire.AppendBytes(b, sub)
	return b
}

func appendConnect(b []byte, p *Connect) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Version))
	if len(p.VersionStr) != 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, p.VersionStr)
	}
	return b
}

func appendDisconnect(b []byte, p *Disconnect) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Reason))
	if len(p.ReasonStr) != 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, p.ReasonStr)
	}
	return b
}

func appendLogin(b []byte, p *Login) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	if len(p.Authtoken) != 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, p.Authtoken)
	}
	if p.Permissions != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Permissions))
	}
	return b
}

func appendLoginResult(b []byte, p *LoginResult) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(p.Succeeded))
	if p.Reason != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Reason))
	}
	return b
}

// appendEntityRef covers AddEntity and RemoveEntity, which share a layout.
func appendEntityRef(b []byte, id uint32, name string) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(id))
	if len(name) != 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	return b
}

func appendUpdateState(b []byte, p *UpdateState) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Id))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, p.StateId)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, appendStateValue(nil, p.Value))
	return b
}

func appendMove(b []byte, p *Move) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, appendVector3(nil, p.Direction))
	return b
}

func appendAssignControl(b []byte, p *AssignControl) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Uid))
	if p.Revoked {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(p.Revoked))
	}
	return b
}

func appendEntityDeath(b []byte, p *EntityDeath) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Uid))
	if len(p.Name) != 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, p.Name)
	}
	if p.KillerUid != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.KillerUid))
	}
	if len(p.KillerName) != 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, p.KillerName)
	}
	return b
}

func appendCombatHit(b []byte, p *CombatHit) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.AttackerUid))
	if len(p.AttackerName) != 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, p.AttackerName)
	}
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.VictimUid))
	if len(p.VictimName) != 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, p.VictimName)
	}
	b = protowire.AppendTag(b, 5, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(p.Damage))
	return b
}

// appendStateValue always emits the value field named by the discriminant,
// zero or not; the decoder treats its absence as malformed.
func appendStateValue(b []byte, v *StateValue) []byte {
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.typ))
	switch v.typ {
	case ValueBool:
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(v.boolVal))
	case ValueInt:
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(v.intVal))
	case ValueFloat:
		b = protowire.AppendTag(b, 4, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.floatVal))
	case ValueString:
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, v.stringVal)
	case ValueArray:
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, appendArray(nil, v.arrayVal))
	case ValueVector3:
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, appendVector3(nil, v.vecVal))
	}
	return b
}

func appendArray(b []byte, values []*StateValue) []byte {
	for _, e := range values {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, appendStateValue(nil, e))
	}
	return b
}

func appendVector3(b []byte, v Vector3) []byte {
	b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(v.X))
	b = protowire.AppendTag(b, 2, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(v.Y))
	b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(v.Z))
	return b
}
