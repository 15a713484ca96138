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

package client

import (
	"errors"

	"ghack/pkg/proto"
)

var (
	ErrConnect      = errors.New("client: connect failed")
	ErrHandshake    = errors.New("client: handshake failed")
	ErrWrongVersion = errors.New("client: protocol version rejected")
	ErrAccessDenied = errors.New("client: access denied")
	ErrServerFull   = errors.New("client: server full")
	ErrBanned       = errors.New("client: banned")
	ErrClosed       = errors.New("client: connection closed")
	ErrNotReady     = errors.New("client: session not established")
)

var loginErrorMapping = map[proto.LoginReason]error{
	proto.LoginAccessDenied: ErrAccessDenied,
	proto.LoginServerFull:   ErrServerFull,
	proto.LoginBanned:       ErrBanned,
}

func loginError(reason proto.LoginReason) error {
	if err, ok := loginErrorMapping[reason]; ok {
		return err
	}
	return ErrAccessDenied
}
