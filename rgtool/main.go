// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Rgtool compiles YAML register block descriptions into an AXI4 register
// slave, an address package, a UVM register model and a C header.
//
// Usage:
//
//	rgtool COMMAND [ARGUMENTS]
//	rgtool help COMMAND
//	rgtool version
package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"runtime/debug"
	"slices"

	"github.com/embeddedgo/regtools/rgtool/internal/cmd/addr"
	"github.com/embeddedgo/regtools/rgtool/internal/cmd/gen"
	"github.com/embeddedgo/regtools/rgtool/internal/cmd/hex"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"addr": {addr.Descr, addr.Main},
	"gen":  {gen.Descr, gen.Main},
	"hex":  {hex.Descr, hex.Main},
}

func printToolList(w io.Writer) {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := len("version")
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	fmt.Fprint(w, "Usage:\n  rgtool COMMAND [ARGUMENTS]\n  rgtool help COMMAND\n\n")
	fmt.Fprintln(w, "Available commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
	fmt.Fprintf(w, "  %*s  %s\n", maxLen, "version", "print the rgtool version")
}

// command returns the name of the tool selected by args (os.Args[1:]) and
// the arguments passed to it. The "help CMD" form is rewritten to "CMD -h".
func command(args []string) (name string, targs []string, ok bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	name, targs = args[0], args[1:]
	if name == "help" {
		if len(targs) != 1 {
			return name, targs, false
		}
		name, targs = targs[0], []string{"-h"}
	}
	_, ok = tools[name]
	return name, targs, ok
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" && len(args) == 1 {
		printToolList(os.Stderr)
		return
	}
	if args[0] == "version" || args[0] == "-version" {
		fmt.Println("rgtool", version())
		return
	}
	name, targs, ok := command(args)
	if !ok {
		if name != "help" {
			fmt.Fprintf(os.Stderr, "rgtool: unknown command %q\n\n", name)
		}
		printToolList(os.Stderr)
		os.Exit(1)
	}
	tools[name].main("rgtool "+name, targs)
}
