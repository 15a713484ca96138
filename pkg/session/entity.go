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

package session

import (
	"sort"
	"sync"

	"ghack/pkg/proto"
)

// Entity is one replicated game object: an id, a display name and a bag of
// named states.
type Entity struct {
	Id   uint32
	Name string

	mtx    sync.RWMutex
	states map[string]*proto.StateValue
}

func NewEntity(id uint32, name string) *Entity {
	return &Entity{
		Id:     id,
		Name:   name,
		states: make(map[string]*proto.StateValue),
	}
}

func (e *Entity) SetState(stateId string, value *proto.StateValue) {
	e.mtx.Lock()
	e.states[stateId] = value
	e.mtx.Unlock()
}

func (e *Entity) State(stateId string) (value *proto.StateValue, ok bool) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	value, ok = e.states[stateId]
	return
}

// StateIds returns the names of the states set on the entity, sorted.
func (e *Entity) StateIds() []string {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	ids := make([]string, 0, len(e.states))
	for id := range e.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
