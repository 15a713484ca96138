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

// Decoder reads framed messages off r. A zero-length read error (clean close
// between frames) is returned as is; any failure inside a frame comes back as
// a *ProtocolError and the stream must be abandoned, since framing cannot
// resynchronize past a bad frame.
type Decoder struct {
	r             io.Reader
	maxValueDepth int
	header        [kFrameHeaderSize]byte
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:             r,
		maxValueDepth: kDefaultMaxValueDepth,
	}
}

// SetMaxValueDepth bounds StateValue array nesting. Values nested deeper
// decode as malformed.
func (d *Decoder) SetMaxValueDepth(depth int) {
	d.maxValueDepth = depth
}

func (d *Decoder) Decode(m *Message) error {
	if _, err := io.ReadFull(d.r, d.header[:]); err != nil {
		if err == io.EOF {
			return err
		}
		return NewProtocolError(err)
	}
	szBody := EncByteOrder.Uint16(d.header[:])
	body := make([]byte, szBody)
	if _, err := io.ReadFull(d.r, body); err != nil {
		return NewProtocolError(err)
	}
	return decodeMessage(m, body, d.maxValueDepth)
}

// DecodeFrame decodes one frame from the front of buf, for callers that own
// their buffering. It returns the number of bytes consumed; ErrIncomplete
// means buf does not yet hold a full frame and nothing was consumed.
func DecodeFrame(buf []byte) (m *Message, n int, err error) {
	if len(buf) < kFrameHeaderSize {
		err = ErrIncomplete
		return
	}
	szBody := int(EncByteOrder.Uint16(buf))
	if len(buf) < kFrameHeaderSize+szBody {
		err = ErrIncomplete
		return
	}
	m = &Message{}
	if err = decodeMessage(m, buf[kFrameHeaderSize:kFrameHeaderSize+szBody], kDefaultMaxValueDepth); err != nil {
		m = nil
		return
	}
	n = kFrameHeaderSize + szBody
	return
}

func decodeMessage(m *Message, b []byte, maxDepth int) error {
	m.reset()

	var (
		payloads [kFieldLoginResult + 1][]byte
		have     [kFieldLoginResult + 1]bool
		haveType bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == kFieldMsgType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return ErrMalformedPayload
			}
			b = b[n:]
			m.Type = Type(v)
			if uint64(m.Type) != v || !m.Type.isValid() {
				return ErrMalformedPayload
			}
			haveType = true
		case num >= kFieldAddEntity && int(num) < len(payloads) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return ErrMalformedPayload
			}
			b = b[n:]
			payloads[num] = v
			have[num] = true
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ErrMalformedPayload
			}
			b = b[n:]
		}
	}
	if !haveType {
		return ErrMalformedPayload
	}

	// Only the payload matching the discriminant is parsed; any others on
	// the wire are ignored.
	field := fieldForType(m.Type)
	if !have[field] {
		return ErrMalformedPayload
	}
	raw := payloads[field]

	var err error
	switch m.Type {
	case TypeConnect:
		m.Connect, err = parseConnect(raw)
	case TypeDisconnect:
		m.Disconnect, err = parseDisconnect(raw)
	case TypeLogin:
		m.Login, err = parseLogin(raw)
	case TypeLoginResult:
		m.LoginResult, err = parseLoginResult(raw)
	case TypeAddEntity:
		var id uint32
		var name string
		if id, name, err = parseEntityRef(raw); err == nil {
			m.AddEntity = &AddEntity{Id: id, Name: name}
		}
	case TypeRemoveEntity:
		var id uint32
		var name string
		if id, name, err = parseEntityRef(raw); err == nil {
			m.RemoveEntity = &RemoveEntity{Id: id, Name: name}
		}
	case TypeUpdateState:
		m.UpdateState, err = parseUpdateState(raw, maxDepth)
	case TypeMove:
		m.Move, err = parseMove(raw)
	case TypeAssignControl:
		m.AssignControl, err = parseAssignControl(raw)
	case TypeEntityDeath:
		m.EntityDeath, err = parseEntityDeath(raw)
	case TypeCombatHit:
		m.CombatHit, err = parseCombatHit(raw)
	}
	return err
}

func consumeUint32(b []byte) (v uint32, n int) {
	u, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return
	}
	if u > math.MaxUint32 {
		n = -1
		return
	}
	v = uint32(u)
	return
}

func parseConnect(b []byte) (p *Connect, err error) {
	p = &Connect{}
	var haveVersion bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if p.Version, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			haveVersion = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.VersionStr = string(v)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveVersion {
		return nil, ErrMalformedPayload
	}
	return
}

func parseDisconnect(b []byte) (p *Disconnect, err error) {
	p = &Disconnect{}
	var haveReason bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v uint64
			if v, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Reason = DisconnectReason(v)
			haveReason = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.ReasonStr = string(v)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveReason {
		return nil, ErrMalformedPayload
	}
	return
}

func parseLogin(b []byte) (p *Login, err error) {
	p = &Login{}
	var haveName bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Name = string(v)
			haveName = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Authtoken = string(v)
		case num == 3 && typ == protowire.VarintType:
			if p.Permissions, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveName {
		return nil, ErrMalformedPayload
	}
	return
}

func parseLoginResult(b []byte) (p *LoginResult, err error) {
	p = &LoginResult{}
	var haveSucceeded bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			var v uint64
			if v, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Succeeded = protowire.DecodeBool(v)
			haveSucceeded = true
		case num == 2 && typ == protowire.VarintType:
			var v uint64
			if v, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Reason = LoginReason(v)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveSucceeded {
		return nil, ErrMalformedPayload
	}
	return
}

// parseEntityRef covers AddEntity and RemoveEntity, which share a layout.
func parseEntityRef(b []byte) (id uint32, name string, err error) {
	var haveId bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			err = ErrMalformedPayload
			return
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if id, n = consumeUint32(b); n < 0 {
				err = ErrMalformedPayload
				return
			}
			haveId = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				err = ErrMalformedPayload
				return
			}
			name = string(v)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				err = ErrMalformedPayload
				return
			}
		}
		b = b[n:]
	}
	if !haveId {
		err = ErrMalformedPayload
	}
	return
}

func parseUpdateState(b []byte, maxDepth int) (p *UpdateState, err error) {
	p = &UpdateState{}
	var haveId, haveStateId bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if p.Id, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			haveId = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.StateId = string(v)
			haveStateId = true
		case num == 3 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			if p.Value, err = parseStateValue(v, 0, maxDepth); err != nil {
				return nil, err
			}
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveId || !haveStateId || p.Value == nil {
		return nil, ErrMalformedPayload
	}
	return
}

func parseMove(b []byte) (p *Move, err error) {
	p = &Move{}
	var haveDirection bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			if p.Direction, err = parseVector3(v); err != nil {
				return nil, err
			}
			haveDirection = true
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveDirection {
		return nil, ErrMalformedPayload
	}
	return
}

func parseAssignControl(b []byte) (p *AssignControl, err error) {
	p = &AssignControl{}
	var haveUid bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if p.Uid, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			haveUid = true
		case num == 2 && typ == protowire.VarintType:
			var v uint64
			if v, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Revoked = protowire.DecodeBool(v)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveUid {
		return nil, ErrMalformedPayload
	}
	return
}

func parseEntityDeath(b []byte) (p *EntityDeath, err error) {
	p = &EntityDeath{}
	var haveUid bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if p.Uid, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			haveUid = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Name = string(v)
		case num == 3 && typ == protowire.VarintType:
			if p.KillerUid, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
		case num == 4 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.KillerName = string(v)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveUid {
		return nil, ErrMalformedPayload
	}
	return
}

func parseCombatHit(b []byte) (p *CombatHit, err error) {
	p = &CombatHit{}
	var haveAttacker, haveVictim, haveDamage bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			if p.AttackerUid, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			haveAttacker = true
		case num == 2 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.AttackerName = string(v)
		case num == 3 && typ == protowire.VarintType:
			if p.VictimUid, n = consumeUint32(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			haveVictim = true
		case num == 4 && typ == protowire.BytesType:
			var v []byte
			if v, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.VictimName = string(v)
		case num == 5 && typ == protowire.Fixed64Type:
			var v uint64
			if v, n = protowire.ConsumeFixed64(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			p.Damage = math.Float64frombits(v)
			haveDamage = true
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveAttacker || !haveVictim || !haveDamage {
		return nil, ErrMalformedPayload
	}
	return
}

// parseStateValue parses one tagged value. The field named by the
// discriminant must be present; value fields for other discriminants are
// ignored. depth counts array nesting from zero.
func parseStateValue(b []byte, depth, maxDepth int) (v *StateValue, err error) {
	if depth > maxDepth {
		return nil, ErrMalformedPayload
	}
	v = &StateValue{}
	var (
		haveType bool
		haveVal  [8]bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			var u uint64
			if u, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			v.typ = ValueType(u)
			if uint64(v.typ) != u || !v.typ.isValid() {
				return nil, ErrMalformedPayload
			}
			haveType = true
		case num == 2 && typ == protowire.VarintType:
			var u uint64
			if u, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			v.boolVal = protowire.DecodeBool(u)
			haveVal[2] = true
		case num == 3 && typ == protowire.VarintType:
			var u uint64
			if u, n = protowire.ConsumeVarint(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			v.intVal = protowire.DecodeZigZag(u)
			haveVal[3] = true
		case num == 4 && typ == protowire.Fixed64Type:
			var u uint64
			if u, n = protowire.ConsumeFixed64(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			v.floatVal = math.Float64frombits(u)
			haveVal[4] = true
		case num == 5 && typ == protowire.BytesType:
			var raw []byte
			if raw, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			v.stringVal = string(raw)
			haveVal[5] = true
		case num == 6 && typ == protowire.BytesType:
			var raw []byte
			if raw, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			if v.arrayVal, err = parseArray(raw, depth+1, maxDepth); err != nil {
				return nil, err
			}
			haveVal[6] = true
		case num == 7 && typ == protowire.BytesType:
			var raw []byte
			if raw, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			if v.vecVal, err = parseVector3(raw); err != nil {
				return nil, err
			}
			haveVal[7] = true
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	if !haveType || !haveVal[int(v.typ)+1] {
		return nil, ErrMalformedPayload
	}
	return
}

func parseArray(b []byte, depth, maxDepth int) (values []*StateValue, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, ErrMalformedPayload
		}
		b = b[n:]
		if num == 1 && typ == protowire.BytesType {
			var raw []byte
			if raw, n = protowire.ConsumeBytes(b); n < 0 {
				return nil, ErrMalformedPayload
			}
			var e *StateValue
			if e, err = parseStateValue(raw, depth, maxDepth); err != nil {
				return nil, err
			}
			values = append(values, e)
		} else {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return nil, ErrMalformedPayload
			}
		}
		b = b[n:]
	}
	return
}

func parseVector3(b []byte) (v Vector3, err error) {
	var haveX, haveY, haveZ bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			err = ErrMalformedPayload
			return
		}
		b = b[n:]
		if typ == protowire.Fixed64Type && num >= 1 && num <= 3 {
			var u uint64
			if u, n = protowire.ConsumeFixed64(b); n < 0 {
				err = ErrMalformedPayload
				return
			}
			switch num {
			case 1:
				v.X = math.Float64frombits(u)
				haveX = true
			case 2:
				v.Y = math.Float64frombits(u)
				haveY = true
			case 3:
				v.Z = math.Float64frombits(u)
				haveZ = true
			}
		} else {
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				err = ErrMalformedPayload
				return
			}
		}
		b = b[n:]
	}
	if !haveX || !haveY || !haveZ {
		err = ErrMalformedPayload
	}
	return
}
