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

package auth

import (
	"testing"

	"ghack/pkg/proto"
)

func TestAllowAll(t *testing.T) {
	var a AllowAll
	if ok, _ := a.Authenticate("alice", "", 0); !ok {
		t.Error("alice rejected")
	}
	if ok, reason := a.Authenticate("", "", 0); ok || reason != proto.LoginAccessDenied {
		t.Error("empty name accepted")
	}
}

func TestConfigAuthority(t *testing.T) {
	a := NewConfigAuthority(&Config{
		Banned: []string{"mallory"},
		Tokens: map[string]string{"alice": Fingerprint("s3cret")},
	})

	if ok, _ := a.Authenticate("alice", "s3cret", 0); !ok {
		t.Error("alice with right token rejected")
	}
	if ok, reason := a.Authenticate("alice", "wrong", 0); ok || reason != proto.LoginAccessDenied {
		t.Errorf("alice with wrong token: %t, %s", ok, reason)
	}
	if ok, reason := a.Authenticate("mallory", "", 0); ok || reason != proto.LoginBanned {
		t.Errorf("banned name: %t, %s", ok, reason)
	}
	// no fingerprint on file, tokens not required
	if ok, _ := a.Authenticate("bob", "", 0); !ok {
		t.Error("bob rejected without RequireToken")
	}
}

func TestConfigAuthorityRequireToken(t *testing.T) {
	a := NewConfigAuthority(&Config{
		RequireToken: true,
		Tokens:       map[string]string{"alice": Fingerprint("s3cret")},
	})
	if ok, reason := a.Authenticate("bob", "anything", 0); ok || reason != proto.LoginAccessDenied {
		t.Errorf("unknown name with RequireToken: %t, %s", ok, reason)
	}
	if ok, _ := a.Authenticate("alice", "s3cret", 0); !ok {
		t.Error("alice rejected")
	}
}

func TestFingerprintStable(t *testing.T) {
	if Fingerprint("x") != Fingerprint("x") {
		t.Error("fingerprint not deterministic")
	}
	if len(Fingerprint("x")) != 16 {
		t.Errorf("fingerprint length %d", len(Fingerprint("x")))
	}
}
