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

package server

import (
	"fmt"

	"github.com/golang/glog"

	"ghack/pkg/auth"
	otelCfg "ghack/pkg/logging/otel/config"
	"ghack/pkg/service"
)

const (
	kDefaultMaxPlayers   = 64
	kDefaultHealth       = 100
	kDefaultMoveSpeed    = 1.0
	kDefaultCombatDamage = 10.0
)

var defaultAssets = []string{"warrior.mdl", "ranger.mdl", "mage.mdl"}

type WorldConfig struct {
	DefaultHealth int64
	MoveSpeed     float64
	CombatDamage  float64
	Assets        []string
}

type Config struct {
	Service    service.Config
	MaxPlayers int
	Auth       auth.Config
	World      WorldConfig
	Otel       otelCfg.Config
}

func (cfg *Config) SetDefaultIfNotDefined() {
	cfg.Service.SetDefaultIfNotDefined()
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = kDefaultMaxPlayers
	}
	if cfg.World.DefaultHealth == 0 {
		cfg.World.DefaultHealth = kDefaultHealth
	}
	if cfg.World.MoveSpeed == 0 {
		cfg.World.MoveSpeed = kDefaultMoveSpeed
	}
	if cfg.World.CombatDamage == 0 {
		cfg.World.CombatDamage = kDefaultCombatDamage
	}
	if len(cfg.World.Assets) == 0 {
		cfg.World.Assets = defaultAssets
	}
}

func (cfg *Config) Validate() (err error) {
	if err = cfg.Service.Validate(); err != nil {
		return
	}
	if cfg.MaxPlayers < 0 {
		err = fmt.Errorf("MaxPlayers must not be negative")
	}
	return
}

func (cfg *Config) Dump() {
	for _, ln := range cfg.Service.Listener {
		glog.Infof("listener: %s", ln.GetConnString())
	}
	glog.Infof("MaxPlayers: %d", cfg.MaxPlayers)
	glog.Infof("DefaultHealth: %d", cfg.World.DefaultHealth)
	glog.Infof("Assets: %v", cfg.World.Assets)
}
