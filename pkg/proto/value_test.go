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
	"testing"
)

func TestStateValueEquals(t *testing.T) {
	tests := []struct {
		a, b  *StateValue
		equal bool
	}{
		{Bool(true), Bool(true), true},
		{Bool(true), Bool(false), false},
		{Int(5), Int(5), true},
		{Int(5), Float(5), false}, // no numeric coercion
		{Str("a"), Str("a"), true},
		{Str("a"), Str("b"), false},
		{Vec3(1, 2, 3), Vec3(1, 2, 3), true},
		{Vec3(1, 2, 3), Vec3(1, 2, 4), false},
		{Arr(Int(1), Int(2)), Arr(Int(1), Int(2)), true},
		{Arr(Int(1)), Arr(Int(1), Int(2)), false},
		{Arr(Arr(Str("x"))), Arr(Arr(Str("x"))), true},
		{Arr(Arr(Str("x"))), Arr(Arr(Str("y"))), false},
		{Arr(), Arr(), true},
	}
	for i, tt := range tests {
		if got := tt.a.Equals(tt.b); got != tt.equal {
			t.Errorf("case %d: %s == %s: got %t, want %t", i, tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestStateValueClone(t *testing.T) {
	orig := Arr(Int(1), Arr(Str("inner")))
	c := orig.Clone()
	if !c.Equals(orig) {
		t.Fatalf("clone differs: %s vs %s", c, orig)
	}
	// Mutating the clone's nested element must not reach the original.
	c.GetArray()[1].GetArray()[0].stringVal = "changed"
	if orig.GetArray()[1].GetArray()[0].GetString() != "inner" {
		t.Error("clone shares array elements with original")
	}
}

func TestStateValueAccessors(t *testing.T) {
	if v := Int(-7); v.GetType() != ValueInt || v.GetInt() != -7 {
		t.Errorf("Int: %s", v)
	}
	if v := Float(2.5); v.GetType() != ValueFloat || v.GetFloat() != 2.5 {
		t.Errorf("Float: %s", v)
	}
	if v := Vec3(1, 2, 3); v.GetVector3() != (Vector3{1, 2, 3}) {
		t.Errorf("Vec3: %s", v)
	}
	if v := Arr(Bool(true)); len(v.GetArray()) != 1 {
		t.Errorf("Arr: %s", v)
	}
}

func TestStateValueString(t *testing.T) {
	tests := []struct {
		v    *StateValue
		want string
	}{
		{Bool(true), "true"},
		{Int(-3), "-3"},
		{Str("hp"), "hp"},
		{Vec3(1, 2, 3), "(1, 2, 3)"},
		{Arr(Int(1), Str("x")), "[1, x]"},
		{nil, "<nil>"},
	}
	for i, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("case %d: got %q, want %q", i, got, tt.want)
		}
	}
}
