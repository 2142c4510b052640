// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/embeddedgo/regtools/regspec"
	"github.com/embeddedgo/regtools/rgtool/internal/emit"
	"github.com/embeddedgo/regtools/rgtool/internal/hex"
	"github.com/embeddedgo/regtools/rgtool/internal/util"
	"golang.org/x/sync/errgroup"
)

const Descr = "generate the AXI slave, UVM model and C header of register blocks"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] SPEC.yml...\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	var cfg emit.Config
	fs.StringVar(
		&cfg.RTLPath, "rtl", "",
		"output directory for the AXI slave and address package (default SPEC/../../rtl)",
	)
	fs.StringVar(
		&cfg.UVMPath, "uvm", "",
		"output directory for the UVM register model (default SPEC/../../tb/uvm_reg)",
	)
	fs.StringVar(
		&cfg.SWPath, "sw", "",
		"output directory for the C header (default SPEC/../../sw)",
	)
	withHex := fs.Bool("hex", false, "write also the register reset image to the C header directory")
	verbose := fs.Bool("v", false, "print the names of the generated files")
	fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	util.SetVerbose(*verbose)
	files, err := Generate(fs.Args(), cfg, *withHex)
	util.FatalErr("", err)
	for _, f := range files {
		util.FatalErr("", util.WriteFile(f.Path, f.Data))
		util.Info("generated %s", f.Path)
	}
}

// Generate renders the files of all specifications in parallel. It returns
// no files if any specification fails.
func Generate(specs []string, cfg emit.Config, withHex bool) ([]*emit.File, error) {
	results := make([][]*emit.File, len(specs))
	var g errgroup.Group
	for i, name := range specs {
		g.Go(func() error {
			files, err := generate(name, cfg.Resolve(name), withHex)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	files := slices.Concat(results...)
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Path] {
			return nil, fmt.Errorf("%s generated twice", f.Path)
		}
		seen[f.Path] = true
	}
	return files, nil
}

func generate(name string, cfg emit.Config, withHex bool) ([]*emit.File, error) {
	m, err := regspec.Load(name)
	if err != nil {
		return nil, err
	}
	for _, l := range m.Layouts {
		if !l.Reg.Access.Writable() {
			continue
		}
		for _, f := range l.Reg.Fields {
			if f.Kind.Input() {
				util.Warn(
					"%s: %s.%s is a slave input in a writable register",
					name, l.Reg.Name, f.Name,
				)
			}
		}
	}
	files, err := emit.Files(m, cfg)
	if err != nil {
		return nil, err
	}
	if withHex {
		for _, f := range m.ParamResets() {
			util.Warn(
				"%s: reset value %s of %s depends on %s, zero in the reset image",
				name, *f.Reset, f.Name, f.Size.Param,
			)
		}
		var buf bytes.Buffer
		if err := hex.Write(&buf, m, 0); err != nil {
			return nil, err
		}
		files = append(files, &emit.File{
			Path: filepath.Join(cfg.SWPath, m.Block.Name+"_reset.hex"),
			Data: buf.Bytes(),
		})
	}
	return files, nil
}
