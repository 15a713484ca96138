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
	"encoding/binary"
	"errors"
)

type (
	Type             uint8
	DisconnectReason uint8
	LoginReason      uint8
)

// CurrentVersion is the protocol version negotiated during Connect.
const CurrentVersion uint32 = 1

const (
	kFrameHeaderSize      = 2
	kMaxPayloadSize       = 65535
	kDefaultMaxValueDepth = 32
)

// Envelope discriminant values. Fixed by protocol.proto; never renumber.
const (
	TypeConnect       = Type(1)
	TypeDisconnect    = Type(2)
	TypeLogin         = Type(3)
	TypeLoginResult   = Type(4)
	TypeAddEntity     = Type(5)
	TypeRemoveEntity  = Type(6)
	TypeUpdateState   = Type(7)
	TypeMove          = Type(8)
	TypeAssignControl = Type(9)
	TypeEntityDeath   = Type(10)
	TypeCombatHit     = Type(11)
)

const (
	ReasonQuit                 = DisconnectReason(1)
	ReasonWrongProtocolVersion = DisconnectReason(2)
	ReasonProtocolError        = DisconnectReason(3)
)

const (
	LoginAccessDenied = LoginReason(1)
	LoginServerFull   = LoginReason(2)
	LoginBanned       = LoginReason(3)
)

// Envelope payload field numbers, per protocol.proto. Numbers below 16 are
// one-byte tags and reserved for the high-frequency messages.
const (
	kFieldMsgType       = 1
	kFieldAddEntity     = 2
	kFieldRemoveEntity  = 3
	kFieldUpdateState   = 4
	kFieldMove          = 5
	kFieldAssignControl = 6
	kFieldEntityDeath   = 7
	kFieldCombatHit     = 8
	kFieldConnect       = 16
	kFieldDisconnect    = 17
	kFieldLogin         = 18
	kFieldLoginResult   = 19
)

var (
	EncByteOrder = binary.BigEndian
)

type ProtocolError struct {
	what  string
	cause error
}

func NewProtocolError(err error) *ProtocolError {
	return &ProtocolError{
		what:  err.Error(),
		cause: err,
	}
}

func (e *ProtocolError) Error() string {
	return "ProtocolError: " + e.what
}

func (e *ProtocolError) Unwrap() error {
	return e.cause
}

var (
	ErrPayloadTooLarge  = &ProtocolError{what: "encoded payload exceeds 65535 bytes"}
	ErrMalformedPayload = &ProtocolError{what: "malformed payload"}
	ErrInvalidMessage   = &ProtocolError{what: "message payload does not match type"}
)

// ErrIncomplete reports that a full frame is not yet buffered. It is not a
// protocol violation; the caller retries once more bytes arrive.
var ErrIncomplete = errors.New("frame incomplete")

var (
	typeNameMap map[Type]string = map[Type]string{
		TypeConnect:       "Connect",
		TypeDisconnect:    "Disconnect",
		TypeLogin:         "Login",
		TypeLoginResult:   "LoginResult",
		TypeAddEntity:     "AddEntity",
		TypeRemoveEntity:  "RemoveEntity",
		TypeUpdateState:   "UpdateState",
		TypeMove:          "Move",
		TypeAssignControl: "AssignControl",
		TypeEntityDeath:   "EntityDeath",
		TypeCombatHit:     "CombatHit",
	}

	disconnectReasonNameMap map[DisconnectReason]string = map[DisconnectReason]string{
		ReasonQuit:                 "QUIT",
		ReasonWrongProtocolVersion: "WRONG_PROTOCOL_VERSION",
		ReasonProtocolError:        "PROTOCOL_ERROR",
	}

	loginReasonNameMap map[LoginReason]string = map[LoginReason]string{
		LoginAccessDenied: "ACCESS_DENIED",
		LoginServerFull:   "SERVER_FULL",
		LoginBanned:       "BANNED",
	}
)

func (t Type) String() string {
	if name, ok := typeNameMap[t]; ok {
		return name
	}
	return "Unknown"
}

func (t Type) isValid() bool {
	_, ok := typeNameMap[t]
	return ok
}

func (r DisconnectReason) String() string {
	if name, ok := disconnectReasonNameMap[r]; ok {
		return name
	}
	return "UnSpecified Reason"
}

func (r LoginReason) String() string {
	if name, ok := loginReasonNameMap[r]; ok {
		return name
	}
	return "UnSpecified Reason"
}

// fieldForType maps a discriminant to its envelope payload field number.
func fieldForType(t Type) int {
	switch t {
	case TypeConnect:
		return kFieldConnect
	case TypeDisconnect:
		return kFieldDisconnect
	case TypeLogin:
		return kFieldLogin
	case TypeLoginResult:
		return kFieldLoginResult
	case TypeAddEntity:
		return kFieldAddEntity
	case TypeRemoveEntity:
		return kFieldRemoveEntity
	case TypeUpdateState:
		return kFieldUpdateState
	case TypeMove:
		return kFieldMove
	case TypeAssignControl:
		return kFieldAssignControl
	case TypeEntityDeath:
		return kFieldEntityDeath
	case TypeCombatHit:
		return kFieldCombatHit
	}
	return 0
}
