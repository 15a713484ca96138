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
Package auth decides whether a Login is accepted.

Tokens are never stored in config; only their 64-bit murmur3 fingerprints
are, rendered as 16 hex digits. Fingerprint with

	gameserv -fingerprint <token>

and paste the output into the [Auth.Tokens] table.
*/
package auth

import (
	"fmt"

	"ghack/pkg/proto"
	"ghack/pkg/util"
)

// IAuthority authorizes a Login request. Capacity (SERVER_FULL) is not an
// authority concern; the server checks it before consulting the authority.
type IAuthority interface {
	Authenticate(name string, authtoken string, permissions uint32) (ok bool, reason proto.LoginReason)
}

// AllowAll admits every login. The default when no [Auth] section is
// configured.
type AllowAll struct{}

func (AllowAll) Authenticate(name string, authtoken string, permissions uint32) (bool, proto.LoginReason) {
	if len(name) == 0 {
		return false, proto.LoginAccessDenied
	}
	return true, 0
}

// Config is the TOML [Auth] section.
type Config struct {
	RequireToken bool
	Banned       []string
	// name -> token fingerprint, 16 hex digits
	Tokens map[string]string
}

// ConfigAuthority authorizes against a static config: a ban list and an
// optional per-name token fingerprint table.
type ConfigAuthority struct {
	banned  map[string]struct{}
	tokens  map[string]string
	require bool
}

func NewConfigAuthority(cfg *Config) *ConfigAuthority {
	a := &ConfigAuthority{
		banned:  make(map[string]struct{}, len(cfg.Banned)),
		tokens:  cfg.Tokens,
		require: cfg.RequireToken,
	}
	for _, name := range cfg.Banned {
		a.banned[name] = struct{}{}
	}
	return a
}

func (a *ConfigAuthority) Authenticate(name string, authtoken string, permissions uint32) (bool, proto.LoginReason) {
	if len(name) == 0 {
		return false, proto.LoginAccessDenied
	}
	if _, ok := a.banned[name]; ok {
		return false, proto.LoginBanned
	}
	want, ok := a.tokens[name]
	if !ok {
		if a.require {
			return false, proto.LoginAccessDenied
		}
		return true, 0
	}
	if Fingerprint(authtoken) != want {
		return false, proto.LoginAccessDenied
	}
	return true, 0
}

// Fingerprint renders the murmur3 hash of a token as stored in config.
func Fingerprint(token string) string {
	return fmt.Sprintf("%016x", util.Murmur3Hash64([]byte(token)))
}
