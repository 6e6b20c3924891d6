// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ftl renders a template tree written as a YAML document.
//
// Usage:
//
//	ftl [-o output] [-data data.yaml] [-settings settings.yaml] [-dump] [-watch] document.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	ftl(os.Args...)
}

// TestEnvironment is true when testing the command, false otherwise.
var TestEnvironment = false

// exit causes the current program to exit with the given status code. If
// running in a test environment, every exit call is a no-op.
func exit(status int) {
	if !TestEnvironment {
		os.Exit(status)
	}
}

// stderr prints lines on stderr.
func stderr(lines ...string) {
	for _, l := range lines {
		fmt.Fprint(os.Stderr, l+"\n")
	}
}

// exitError prints msg on stderr with a bold red color and exits with status
// code 1.
func exitError(format string, a ...interface{}) {
	msg := fmt.Errorf(format, a...)
	stderr("\033[1;31m"+msg.Error()+"\033[0m", `exit status 1`)
	exit(1)
}

func usage() {
	stderr(
		`Ftl renders a template tree written as a YAML document.`,
		``,
		`Usage:`,
		``,
		`	   ftl [flags] document.yaml`,
		``,
		`The flags are:`,
		``,
	)
}

// options are the options of a run.
type options struct {
	document string // path of the document
	data     string // path of the data model; empty if not present
	settings string // path of the settings; empty if not present
	output   string // path of the output; empty for stdout
	dump     bool   // dump the tree instead of rendering it
	watch    bool   // render again when a file changes
}

// ftl runs the command with the given args. The first argument must be the
// executable name.
func ftl(args ...string) {

	flags := flag.NewFlagSet("ftl", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() {
		usage()
		flags.PrintDefaults()
	}

	var opts options
	flags.StringVar(&opts.output, "o", "", "write the output to `file` instead of stdout")
	flags.StringVar(&opts.data, "data", "", "read the data model from the YAML `file`")
	flags.StringVar(&opts.settings, "settings", "", "read the settings from the YAML `file`")
	flags.BoolVar(&opts.dump, "dump", false, "dump the tree instead of rendering it")
	flags.BoolVar(&opts.watch, "watch", false, "render again when a file changes")

	if err := flags.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			exit(0)
			return
		}
		exit(2)
		return
	}

	// No document provided.
	if flags.NArg() == 0 {
		flags.Usage()
		exit(0)
		return
	}

	// Too many arguments provided.
	if flags.NArg() > 1 {
		stderr(`bad number of arguments`)
		flags.Usage()
		exit(1)
		return
	}

	opts.document = flags.Arg(0)

	if opts.watch {
		if opts.output == "" {
			exitError("-watch requires -o")
			return
		}
		if err := watch(opts); err != nil {
			exitError("%s", err)
		}
		return
	}

	if err := run(opts); err != nil {
		exitError("%s", err)
	}
}

// run reads the files of opts and writes the rendered document, or its
// dump, to the output.
func run(opts options) (err error) {
	var out io.Writer = os.Stdout
	if opts.output != "" {
		var f *os.File
		f, err = os.Create(opts.output)
		if err != nil {
			return err
		}
		defer func() {
			if e := f.Close(); err == nil {
				err = e
			}
		}()
		out = f
	}
	return process(opts, out)
}
