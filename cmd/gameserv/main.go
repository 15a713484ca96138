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

// gameserv is the authoritative game server.
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"

	"ghack/pkg/auth"
	"ghack/pkg/server"
	"ghack/pkg/version"
)

func main() {
	var (
		configFlag      = flag.String("config", "", "toml configuration file")
		listenFlag      = flag.String("l", "", "listen address, overrides the config file")
		fingerprintFlag = flag.String("fingerprint", "", "print the fingerprint of the given authtoken and exit")
		versionFlag     = flag.Bool("version", false, "display version information")
	)
	flag.Parse()

	if *versionFlag {
		version.PrintVersionInfo()
		return
	}
	if len(*fingerprintFlag) != 0 {
		fmt.Println(auth.Fingerprint(*fingerprintFlag))
		return
	}

	if len(*configFlag) != 0 {
		if err := loadConfig(*configFlag); err != nil {
			glog.Exitf("Failed to load %s. %s", *configFlag, err)
		}
	}
	if len(*listenFlag) != 0 {
		conf.Service.SetListeners([]string{*listenFlag})
	}
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}

	glog.Infof("Starting gameserv %s", version.OnelineVersionString())
	conf.Dump()
	server.NewServer(&conf).Run()
	glog.Info("gameserv stopped")
}
