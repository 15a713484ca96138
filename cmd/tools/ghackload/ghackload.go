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

// ghackload drives synthetic players against a game server and reports
// join and move round-trip latency.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"

	"ghack/pkg/client"
	"ghack/pkg/cmd"
	"ghack/pkg/proto"
	"ghack/pkg/version"
)

type (
	Config struct {
		Client          client.Config
		NumExecutor     int
		NumReqPerSecond int
		RunningTime     int
		StatOutputRate  int
		PlayerPrefix    string
	}

	SyncTestDriver struct {
		cmd.Command

		cmdOpts CmdOptions
		config  Config

		stats       Statistics
		movingStats Statistics
	}

	CmdOptions struct {
		cfgFile         string
		server          string
		playerPrefix    string
		authtoken       string
		numExecutor     int
		numReqPerSecond int
		runningTime     int
		statOutputRate  int
		version         bool
	}
)

const (
	kDefaultServerAddr      = "127.0.0.1:9001"
	kDefaultNumExecutor     = 1
	kDefaultNumReqPerSecond = 100
	kDefaultRunningTime     = 100
	kDefaultStatOutputRate  = 10
	kDefaultPlayerPrefix    = "load"

	kMoveAckTimeout = time.Second
)

var td = SyncTestDriver{}

func (d *SyncTestDriver) setDefaultConfig() {
	d.config.Client.SetDefault()
	d.config.Client.Server.Addr = kDefaultServerAddr
	d.config.NumExecutor = kDefaultNumExecutor
	d.config.NumReqPerSecond = kDefaultNumReqPerSecond
	d.config.RunningTime = kDefaultRunningTime
	d.config.StatOutputRate = kDefaultStatOutputRate
	d.config.PlayerPrefix = kDefaultPlayerPrefix
}

func (d *SyncTestDriver) Init(name string, desc string) {
	d.Command.Init(name, desc)
	d.StringOption(&d.cmdOpts.server, "s|server", kDefaultServerAddr, "specify server address")
	d.StringOption(&d.cmdOpts.cfgFile, "c|config", "", "specify toml configuration file name")
	d.StringOption(&d.cmdOpts.playerPrefix, "prefix", kDefaultPlayerPrefix, "specify the player name prefix; executor i logs in as <prefix>-<i>")
	d.StringOption(&d.cmdOpts.authtoken, "token", "", "specify the authtoken presented at login")
	d.IntOption(&d.cmdOpts.numExecutor, "n|num-executor", kDefaultNumExecutor, "specify the number of executors to be running in parallel")
	d.IntOption(&d.cmdOpts.numReqPerSecond, "f|num-req-per-second", kDefaultNumReqPerSecond, "specify expected throughput (number of moves per second per executor)")
	d.IntOption(&d.cmdOpts.runningTime, "t|running-time", kDefaultRunningTime, "specify driver's running time in second")
	d.IntOption(&d.cmdOpts.statOutputRate, "o|stat-output-rate", kDefaultStatOutputRate, "specify how often to output statistic information in second")
	d.BoolOption(&d.cmdOpts.version, "version", false, "display version information.")

	d.AddExample(name+" -s 127.0.0.1:9001",
		"\trun the driver against the server listening on 127.0.0.1:9001 with default\n\toptions")
	d.AddExample(name+" -s 127.0.0.1:9001 -n 50 -f 20",
		"\trun 50 synthetic players, each moving 20 times per second")
	d.AddExample(name+" -c config.toml", "\trun the driver with options specified in config.toml")
}

func (d *SyncTestDriver) Parse(args []string) (err error) {
	if err = d.Command.Parse(args); err != nil {
		return
	}
	d.setDefaultConfig()

	if len(d.cmdOpts.cfgFile) != 0 {
		if _, err := toml.DecodeFile(d.cmdOpts.cfgFile, &d.config); err != nil {
			glog.Exitf("failed to load config file %s. %s", d.cmdOpts.cfgFile, err)
		}
	}
	if d.cmdOpts.server != kDefaultServerAddr {
		d.config.Client.Server.Addr = d.cmdOpts.server
	}
	if d.cmdOpts.playerPrefix != kDefaultPlayerPrefix {
		d.config.PlayerPrefix = d.cmdOpts.playerPrefix
	}
	if len(d.cmdOpts.authtoken) != 0 {
		d.config.Client.Authtoken = d.cmdOpts.authtoken
	}
	if d.cmdOpts.numExecutor != kDefaultNumExecutor {
		d.config.NumExecutor = d.cmdOpts.numExecutor
	}
	if d.cmdOpts.numReqPerSecond != kDefaultNumReqPerSecond {
		d.config.NumReqPerSecond = d.cmdOpts.numReqPerSecond
	}
	if d.cmdOpts.runningTime != kDefaultRunningTime {
		d.config.RunningTime = d.cmdOpts.runningTime
	}
	if d.cmdOpts.statOutputRate != kDefaultStatOutputRate {
		d.config.StatOutputRate = d.cmdOpts.statOutputRate
	}
	return
}

func (d *SyncTestDriver) PrintTestSetup() {
	fmt.Println(`
Test Configuration:
--------------------------------------------------------------------`)
	fmt.Printf("To join %d synthetic player(s) against %s,\n", d.config.NumExecutor, d.config.Client.Server.Addr)
	fmt.Printf("each moving no more than (%d) time(s) per second\n", d.config.NumReqPerSecond)
	fmt.Printf("for about (%d) second(s).\n\n", d.config.RunningTime)
	fmt.Printf("Statistic information will be printed for every (%d) second(s).\n\n", d.config.StatOutputRate)
}

func (d *SyncTestDriver) Exec() {
	if d.config.NumExecutor <= 0 {
		glog.Errorf("number of executor specified is zero")
		return
	}
	d.stats.Init()
	d.movingStats.Init()

	var wg sync.WaitGroup
	chDone := make(chan bool)

	wg.Add(1)
	go func() {
		defer wg.Done()
		timer := time.NewTimer(time.Duration(d.config.RunningTime) * time.Second)
		ticker := time.NewTicker(time.Duration(d.config.StatOutputRate) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-timer.C:
				timer.Stop()
				close(chDone)
				return
			case <-ticker.C:
				d.movingStats.PrettyPrint(os.Stdout)
				d.movingStats.Reset()
			}
		}
	}()

	for i := 0; i < d.config.NumExecutor; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.runExecutor(id, chDone)
		}(i)
	}
	wg.Wait()

	fmt.Println("\nOverall:")
	d.stats.PrettyPrint(os.Stdout)
}

// moveEchoHandler signals when the server echoes the avatar's own position.
type moveEchoHandler struct {
	client.GameHandlerBase
	uid     uint32
	chReady chan struct{}
	chAck   chan struct{}
}

func newMoveEchoHandler() *moveEchoHandler {
	return &moveEchoHandler{
		chReady: make(chan struct{}),
		chAck:   make(chan struct{}, 1),
	}
}

func (h *moveEchoHandler) OnControlAssigned(uid uint32, revoked bool) {
	if !revoked {
		h.uid = uid
		close(h.chReady)
	}
}

func (h *moveEchoHandler) OnStateChanged(id uint32, stateId string, value *proto.StateValue) {
	if id == h.uid && stateId == "Position" {
		select {
		case h.chAck <- struct{}{}:
		default:
		}
	}
}

func (d *SyncTestDriver) runExecutor(id int, chDone chan bool) {
	cfg := d.config.Client
	cfg.PlayerName = fmt.Sprintf("%s-%d", d.config.PlayerPrefix, id)

	handler := newMoveEchoHandler()
	c, err := client.New(cfg, handler)
	if err != nil {
		glog.Error(err)
		return
	}
	defer c.Close()

	tmStart := time.Now()
	if err = c.Connect(); err == nil {
		select {
		case <-handler.chReady:
		case <-time.After(kMoveAckTimeout):
			err = fmt.Errorf("no control assignment")
		}
	}
	elapsed := time.Since(tmStart)
	d.stats.Put(kRequestJoin, elapsed, err)
	d.movingStats.Put(kRequestJoin, elapsed, err)
	if err != nil {
		glog.Errorf("executor %d: %s", id, err)
		return
	}

	interval := time.Second / time.Duration(d.config.NumReqPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dir := proto.Vector3{X: 1}
	for {
		select {
		case <-chDone:
			c.Disconnect()
			return
		case <-ticker.C:
			tmStart = time.Now()
			err = c.Move(dir)
			if err == nil {
				select {
				case <-handler.chAck:
				case <-time.After(kMoveAckTimeout):
					err = fmt.Errorf("move not echoed")
				case <-chDone:
					c.Disconnect()
					return
				}
			}
			elapsed = time.Since(tmStart)
			d.stats.Put(kRequestMove, elapsed, err)
			d.movingStats.Put(kRequestMove, elapsed, err)
			dir.X = -dir.X // stay near the origin
		}
	}
}

func main() {
	td.Init("ghackload", "drive synthetic players against a ghack game server")

	if err := td.Parse(os.Args[1:]); err != nil {
		glog.Exit(err)
	}
	if td.cmdOpts.version {
		version.PrintVersionInfo()
		return
	}
	td.PrintTestSetup()
	td.Exec()
}
