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
	"strings"
)

type ValueType uint8

// StateValue discriminant values, per protocol.proto.
const (
	ValueBool    = ValueType(1)
	ValueInt     = ValueType(2)
	ValueFloat   = ValueType(3)
	ValueString  = ValueType(4)
	ValueArray   = ValueType(5)
	ValueVector3 = ValueType(6)
)

var valueTypeNameMap map[ValueType]string = map[ValueType]string{
	ValueBool:    "Bool",
	ValueInt:     "Int",
	ValueFloat:   "Float",
	ValueString:  "String",
	ValueArray:   "Array",
	ValueVector3: "Vector3",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNameMap[t]; ok {
		return name
	}
	return "Unknown"
}

func (t ValueType) isValid() bool {
	_, ok := valueTypeNameMap[t]
	return ok
}

// Vector3 is an immutable three-component value; no identity.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// StateValue is the recursive tagged union carried by UpdateState. The
// fields are unexported and only settable through the typed constructors, so
// a discriminant/field mismatch cannot be constructed; the wire decoder is
// the only other producer and rejects mismatches as malformed.
type StateValue struct {
	typ       ValueType
	boolVal   bool
	intVal    int64
	floatVal  float64
	stringVal string
	arrayVal  []*StateValue
	vecVal    Vector3
}

func Bool(v bool) *StateValue {
	return &StateValue{typ: ValueBool, boolVal: v}
}

func Int(v int64) *StateValue {
	return &StateValue{typ: ValueInt, intVal: v}
}

func Float(v float64) *StateValue {
	return &StateValue{typ: ValueFloat, floatVal: v}
}

func Str(v string) *StateValue {
	return &StateValue{typ: ValueString, stringVal: v}
}

func Arr(values ...*StateValue) *StateValue {
	return &StateValue{typ: ValueArray, arrayVal: values}
}

func Vec3(x, y, z float64) *StateValue {
	return &StateValue{typ: ValueVector3, vecVal: Vector3{x, y, z}}
}

func (v *StateValue) GetType() ValueType {
	return v.typ
}

func (v *StateValue) GetBool() bool {
	return v.boolVal
}

func (v *StateValue) GetInt() int64 {
	return v.intVal
}

func (v *StateValue) GetFloat() float64 {
	return v.floatVal
}

func (v *StateValue) GetString() string {
	return v.stringVal
}

func (v *StateValue) GetArray() []*StateValue {
	return v.arrayVal
}

func (v *StateValue) GetVector3() Vector3 {
	return v.vecVal
}

// Equals compares discriminant and value, descending into arrays. Int and
// Float never compare equal to each other; there is no numeric coercion.
func (v *StateValue) Equals(o *StateValue) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case ValueBool:
		return v.boolVal == o.boolVal
	case ValueInt:
		return v.intVal == o.intVal
	case ValueFloat:
		return v.floatVal == o.floatVal
	case ValueString:
		return v.stringVal == o.stringVal
	case ValueVector3:
		return v.vecVal == o.vecVal
	case ValueArray:
		if len(v.arrayVal) != len(o.arrayVal) {
			return false
		}
		for i := range v.arrayVal {
			if !v.arrayVal[i].Equals(o.arrayVal[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone copies the value deeply; array elements are cloned, not shared.
func (v *StateValue) Clone() *StateValue {
	if v == nil {
		return nil
	}
	c := *v
	if v.typ == ValueArray {
		c.arrayVal = make([]*StateValue, len(v.arrayVal))
		for i, e := range v.arrayVal {
			c.arrayVal[i] = e.Clone()
		}
	}
	return &c
}

func (v *StateValue) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.typ {
	case ValueBool:
		return fmt.Sprintf("%t", v.boolVal)
	case ValueInt:
		return fmt.Sprintf("%d", v.intVal)
	case ValueFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case ValueString:
		return v.stringVal
	case ValueVector3:
		return v.vecVal.String()
	case ValueArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.arrayVal {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return "Unknown"
}
