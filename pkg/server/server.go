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
Package server implements the game server: a listener accepting framed
protocol connections, the per-connection handshake, and the authoritative
world replicated to the connected players.
*/
package server

import (
	"net"

	"ghack/pkg/auth"
	"ghack/pkg/io"
	"ghack/pkg/logging/otel"
	"ghack/pkg/service"
	"ghack/pkg/session"
)

type Server struct {
	config    *Config
	authority auth.IAuthority
	world     *World
	service   *service.Service
}

func NewServer(cfg *Config) *Server {
	cfg.SetDefaultIfNotDefined()
	srv := &Server{
		config: cfg,
		world:  NewWorld(cfg.World),
	}
	if cfg.Auth.RequireToken || len(cfg.Auth.Banned) != 0 || len(cfg.Auth.Tokens) != 0 {
		srv.authority = auth.NewConfigAuthority(&cfg.Auth)
	} else {
		srv.authority = auth.AllowAll{}
	}
	srv.service = service.NewService(cfg.Service, srv.newConnHandler)
	return srv
}

func (s *Server) newConnHandler(c *io.Connector) io.IConnHandler {
	return &connHandler{
		conn: c,
		srv:  s,
		sess: session.NewAcceptor(),
	}
}

// Run blocks until Shutdown or SIGINT/SIGTERM.
func (s *Server) Run() {
	if s.config.Otel.Enabled {
		otel.Initialize(&s.config.Otel)
		defer otel.Shutdown()
	}
	s.service.Run()
}

func (s *Server) Shutdown() {
	s.service.Shutdown()
}

// Addrs lists the resolved listen addresses; used by tools and tests that
// bind port 0.
func (s *Server) Addrs() (addrs []net.Addr) {
	for _, l := range s.service.GetListeners() {
		addrs = append(addrs, l.Addr())
	}
	return
}

func (s *Server) World() *World {
	return s.world
}
