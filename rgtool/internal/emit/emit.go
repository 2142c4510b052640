// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit renders the register block model as SystemVerilog, UVM and C
// source files.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/embeddedgo/regtools/regmap"
)

// Config holds the output directories. Empty fields are derived from the
// location of the specification file by Resolve.
type Config struct {
	RTLPath string // bus slave and address package
	UVMPath string // register model
	SWPath  string // C header
}

// Resolve fills the empty directories of cfg using the conventional project
// layout: a specification in ROOT/DIR/block.yml produces ROOT/rtl,
// ROOT/tb/uvm_reg and ROOT/sw.
func (cfg Config) Resolve(specFile string) Config {
	if p, err := filepath.Abs(specFile); err == nil {
		specFile = p
	}
	root := filepath.Dir(filepath.Dir(specFile))
	if cfg.RTLPath == "" {
		cfg.RTLPath = filepath.Join(root, "rtl")
	}
	if cfg.UVMPath == "" {
		cfg.UVMPath = filepath.Join(root, "tb", "uvm_reg")
	}
	if cfg.SWPath == "" {
		cfg.SWPath = filepath.Join(root, "sw")
	}
	return cfg
}

type File struct {
	Path string
	Data []byte
}

type renderer func(w io.Writer, m *regmap.Model) error

// Files renders all source files of the block. Nothing is written to disk.
func Files(m *regmap.Model, cfg Config) ([]*File, error) {
	name := m.Block.Name
	outs := []struct {
		dir, name string
		render    renderer
	}{
		{cfg.RTLPath, name + "_address_pkg.sv", AddressPackage},
		{cfg.RTLPath, name + "_axi_slave.sv", AXISlave},
		{cfg.UVMPath, name + "_reg.sv", UVMRegs},
		{cfg.UVMPath, name + "_block.sv", UVMBlock},
		{cfg.SWPath, name + "_address.h", CHeader},
	}
	files := make([]*File, 0, len(outs))
	for _, o := range outs {
		var buf bytes.Buffer
		if err := o.render(&buf, m); err != nil {
			return nil, fmt.Errorf("%s: %w", o.name, err)
		}
		files = append(files, &File{
			Path: filepath.Join(o.dir, o.name),
			Data: buf.Bytes(),
		})
	}
	return files, nil
}

func donotedit(w io.Writer, m *regmap.Model) {
	fmt.Fprintf(w, "// Code generated by rgtool from the %s register block. DO NOT EDIT.\n", m.Block.Name)
}

// hexDigits returns the number of hex digits needed for width address bits.
func hexDigits(width int) int {
	return (width + 3) / 4
}

// svHex formats addr as a SystemVerilog literal of width bits.
func svHex(width int, addr uint64) string {
	return fmt.Sprintf("%d'h%0*X", width, hexDigits(width), addr)
}

// cHex formats addr as a C hexadecimal constant.
func cHex(width int, addr uint64) string {
	return fmt.Sprintf("0x%0*X", hexDigits(width), addr)
}

// errWriter remembers the first write error so the renderers can use
// fmt.Fprintf without checking every call.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}
