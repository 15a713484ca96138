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
	"fmt"

	"ghack/pkg/io"
)

type Config struct {
	Server      io.ServiceEndpoint
	Appname     string
	PlayerName  string
	Authtoken   string
	Permissions uint32
	IO          io.OutboundConfig
}

var defaultConfig = Config{
	Server: io.ServiceEndpoint{
		Addr: "127.0.0.1:9001",
	},
	Appname: "ghack",
	IO:      io.DefaultOutboundConfig,
}

func (c *Config) SetDefault() {
	if len(c.Server.Addr) == 0 {
		c.Server = defaultConfig.Server
	}
	c.Server.SetDefaultIfNotDefined()
	if len(c.Appname) == 0 {
		c.Appname = defaultConfig.Appname
	}
	c.IO.SetDefaultIfNotDefined()
}

func (c *Config) validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if len(c.PlayerName) == 0 {
		return fmt.Errorf("player name not specified")
	}
	return nil
}
