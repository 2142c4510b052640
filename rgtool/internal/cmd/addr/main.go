// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package addr

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/embeddedgo/regtools/regspec"
	"github.com/embeddedgo/regtools/rgtool/internal/emit"
	"github.com/embeddedgo/regtools/rgtool/internal/util"
)

const Descr = "print the address map of a register block"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] [SPEC.yml]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	tex := fs.Bool("tex", false, "print the memory windows as LaTeX table rows")
	goconst := fs.Bool("go", false, "print the addresses as a Go constant block")
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	spec, _ := util.InOutFiles(fs.Arg(0), ".yml", "", "")
	w := bufio.NewWriter(os.Stdout)
	util.FatalErr("", Print(w, spec, *tex, *goconst))
	util.FatalErr("", w.Flush())
}

// Print loads the block described in spec and writes its address map to w,
// as LaTeX table rows if tex is set or as Go constants if goconst is set.
func Print(w io.Writer, spec string, tex, goconst bool) error {
	m, err := regspec.Load(spec)
	if err != nil {
		return err
	}
	switch {
	case tex:
		return emit.MemoryTable(w, m)
	case goconst:
		return emit.GoConsts(w, m)
	}
	return emit.AddressMap(w, m)
}
