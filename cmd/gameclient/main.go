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

// gameclient is a terminal client: it joins a server, prints the world as
// it is replicated and moves the avatar with simple commands.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"ghack/pkg/client"
	"ghack/pkg/io"
	"ghack/pkg/proto"
	"ghack/pkg/session"
	"ghack/pkg/version"
)

type printingHandler struct {
	chClosed chan struct{}
}

func (h *printingHandler) OnEntityAdded(e *session.Entity) {
	fmt.Printf("+ entity %d %q\n", e.Id, e.Name)
}

func (h *printingHandler) OnEntityRemoved(id uint32, name string) {
	fmt.Printf("- entity %d %q\n", id, name)
}

func (h *printingHandler) OnStateChanged(id uint32, stateId string, value *proto.StateValue) {
	fmt.Printf("  entity %d %s = %s\n", id, stateId, value)
}

func (h *printingHandler) OnControlAssigned(uid uint32, revoked bool) {
	if revoked {
		fmt.Printf("* control of %d revoked\n", uid)
		return
	}
	fmt.Printf("* you are entity %d\n", uid)
}

func (h *printingHandler) OnEntityDeath(p *proto.EntityDeath) {
	fmt.Printf("! %q was killed by %q\n", p.Name, p.KillerName)
}

func (h *printingHandler) OnCombatHit(p *proto.CombatHit) {
	fmt.Printf("! %q hit %q for %g\n", p.AttackerName, p.VictimName, p.Damage)
}

func (h *printingHandler) OnDisconnect(reason proto.DisconnectReason, msg string) {
	fmt.Printf("disconnected: %s %s\n", reason, msg)
	close(h.chClosed)
}

var moves = map[string]proto.Vector3{
	"n": {Z: -1},
	"s": {Z: 1},
	"w": {X: -1},
	"e": {X: 1},
}

func main() {
	var (
		serverFlag  = flag.String("s", "127.0.0.1:9001", "server address")
		nameFlag    = flag.String("name", "", "player name")
		tokenFlag   = flag.String("token", "", "authtoken")
		versionFlag = flag.Bool("version", false, "display version information")
	)
	flag.Parse()

	if *versionFlag {
		version.PrintVersionInfo()
		return
	}
	if len(*nameFlag) == 0 {
		fmt.Println("-name is required")
		os.Exit(1)
	}

	handler := &printingHandler{chClosed: make(chan struct{})}
	c, err := client.New(client.Config{
		Server:     io.ServiceEndpoint{Addr: *serverFlag},
		PlayerName: *nameFlag,
		Authtoken:  *tokenFlag,
	}, handler)
	if err != nil {
		glog.Exit(err)
	}
	if err := c.Connect(); err != nil {
		glog.Exit(err)
	}
	fmt.Printf("connected to %s as %q; commands: n s w e, move <x> <y> <z>, quit\n",
		*serverFlag, *nameFlag)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-handler.chClosed:
			return
		case line, ok := <-lines:
			if !ok {
				c.Disconnect()
				return
			}
			if err := run(c, strings.Fields(line)); err != nil {
				if err == errQuit {
					c.Disconnect()
					return
				}
				fmt.Println(err)
			}
		}
	}
}

var errQuit = fmt.Errorf("quit")

func run(c client.IClient, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if d, ok := moves[args[0]]; ok {
		return c.Move(d)
	}
	switch args[0] {
	case "move":
		if len(args) != 4 {
			return fmt.Errorf("usage: move <x> <y> <z>")
		}
		var d proto.Vector3
		var err error
		if d.X, err = strconv.ParseFloat(args[1], 64); err != nil {
			return err
		}
		if d.Y, err = strconv.ParseFloat(args[2], 64); err != nil {
			return err
		}
		if d.Z, err = strconv.ParseFloat(args[3], 64); err != nil {
			return err
		}
		return c.Move(d)
	case "quit", "exit":
		return errQuit
	}
	return fmt.Errorf("unknown command %q", args[0])
}
