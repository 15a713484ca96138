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

package logging

import (
	"bytes"
	"strconv"

	"ghack/pkg/proto"
)

type KeyValueBuffer struct {
	bytes.Buffer
	delimiter     byte
	pairDelimiter byte
}

func NewKVBufferForLog() *KeyValueBuffer {
	b := &KeyValueBuffer{
		delimiter:     '=',
		pairDelimiter: ',',
	}
	return b
}

var (
	logDataKeyUser      []byte = []byte("user")
	logDataKeyMsgType   []byte = []byte("msg")
	logDataKeyEntityId  []byte = []byte("eid")
	logDataKeyStateId   []byte = []byte("state")
	logDataKeySessionId []byte = []byte("sid")
	logDataKeyPhase     []byte = []byte("phase")
	logDataKeyReason    []byte = []byte("reason")
	logDataKeyVersion   []byte = []byte("v")
	logDataKeyAddr      []byte = []byte("raddr")
)

func (b *KeyValueBuffer) AddBytes(key []byte, value []byte) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.Write(value)
	return b
}

func (b *KeyValueBuffer) Add(key []byte, value string) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.WriteString(value)
	return b
}

func (b *KeyValueBuffer) AddInt(key []byte, value int) *KeyValueBuffer {
	return b.Add(key, strconv.Itoa(value))
}

func (b *KeyValueBuffer) AddUser(user string) *KeyValueBuffer {
	return b.Add(logDataKeyUser, user)
}

func (b *KeyValueBuffer) AddMsgType(t proto.Type) *KeyValueBuffer {
	return b.Add(logDataKeyMsgType, t.String())
}

func (b *KeyValueBuffer) AddEntityId(id uint32) *KeyValueBuffer {
	return b.AddInt(logDataKeyEntityId, int(id))
}

func (b *KeyValueBuffer) AddStateId(stateId string) *KeyValueBuffer {
	return b.Add(logDataKeyStateId, stateId)
}

func (b *KeyValueBuffer) AddSessionId(id string) *KeyValueBuffer {
	return b.Add(logDataKeySessionId, id)
}

func (b *KeyValueBuffer) AddPhase(phase string) *KeyValueBuffer {
	return b.Add(logDataKeyPhase, phase)
}

func (b *KeyValueBuffer) AddReason(reason string) *KeyValueBuffer {
	return b.Add(logDataKeyReason, reason)
}

func (b *KeyValueBuffer) AddVersion(v uint32) *KeyValueBuffer {
	if v != 0 {
		b.AddInt(logDataKeyVersion, int(v))
	}
	return b
}

func (b *KeyValueBuffer) AddRemoteAddr(addr string) *KeyValueBuffer {
	return b.Add(logDataKeyAddr, addr)
}
