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

// Package cmd is the driver skeleton shared by the ghack command-line
// tools: options with "long|short" spellings, man-page style usage, and a
// vmodule passthrough to glog's global flag.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Option is a flag.FlagSet accepting "long|short" option names. Usage
// text is accumulated per option, not per spelling, so -s and -server
// document as one entry.
type Option struct {
	flag.FlagSet
	optsDesc string
}

// register binds every spelling in name and returns them joined for the
// usage text.
func (o *Option) register(name string, bind func(n string)) string {
	var opts []string
	for _, n := range strings.Split(name, "|") {
		if n != "" {
			bind(n)
			opts = append(opts, "-"+n)
		}
	}
	return strings.Join(opts, ", ")
}

func (o *Option) StringOption(p *string, name string, value string, usage string) {
	opt := o.register(name, func(n string) { o.StringVar(p, n, value, "") })
	o.optsDesc += fmt.Sprintf("  %s string\n    \t(default %q)\n    \t%s\n\n", opt, value, usage)
}

func (o *Option) IntOption(p *int, name string, value int, usage string) {
	opt := o.register(name, func(n string) { o.IntVar(p, n, value, "") })
	o.optsDesc += fmt.Sprintf("  %s int\n    \t(default %v)\n    \t%s\n\n", opt, value, usage)
}

func (o *Option) BoolOption(p *bool, name string, value bool, usage string) {
	opt := o.register(name, func(n string) { o.BoolVar(p, n, value, "") })
	o.optsDesc += fmt.Sprintf("  %s\n    \t(default %v)\n    \t%s\n\n", opt, value, usage)
}

func (o *Option) GetOptionDesc() string {
	return o.optsDesc
}

type Command struct {
	Option
	name       string
	desc       string
	examples   string
	optVModule string
}

func (c *Command) Init(name string, desc string) {
	c.name = name
	c.desc = desc
	c.Option.Init(name, flag.ExitOnError)
	c.StringVar(&c.optVModule, "vmodule", "",
		"comma-separated list of pattern=N settings for file-filtered logging")
	c.Option.Usage = c.PrintUsage
}

func (c *Command) GetName() string {
	return c.name
}

func (c *Command) GetDesc() string {
	return c.desc
}

func (c *Command) AddExample(cmdExample string, desc string) {
	c.examples += desc + "\n\t\t" + cmdExample + "\n\n"
}

func (c *Command) Parse(arguments []string) (err error) {
	if err = c.Option.Parse(arguments); err != nil {
		return
	}
	// glog owns the real vmodule flag on the global set.
	if c.optVModule != "" {
		if f := flag.Lookup("vmodule"); f != nil {
			f.Value.Set(c.optVModule)
		}
	}
	return
}

func (c *Command) writeUsage(w *tabwriter.Writer) {
	fmt.Fprintf(w, "\nNAME\n\t%s - %s\n\nSYNOPSIS\n\t%s [options]\n\n", c.name, c.desc, c.name)
	if c.optsDesc != "" {
		fmt.Fprintf(w, "OPTION\n%s", c.optsDesc)
	}
	if c.examples != "" {
		fmt.Fprintf(w, "EXAMPLE\n%s", c.examples)
	}
	w.Flush()
}

func (c *Command) PrintUsage() {
	c.writeUsage(tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0))
}
