// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/embeddedgo/regtools/regmap"
)

// AddrConst is a named address.
type AddrConst struct {
	Name string
	Addr uint64
}

// AddrConsts returns the address constants of the block in the order they
// are emitted: the high address, the registers and the memory windows.
func AddrConsts(am *regmap.AddressMap) []AddrConst {
	cs := make([]AddrConst, 0, 1+len(am.Slots)+2*len(am.Mems))
	cs = append(cs, AddrConst{am.HighName, am.High})
	for _, s := range am.Slots {
		cs = append(cs, AddrConst{s.Name, s.Addr})
	}
	for _, mr := range am.Mems {
		cs = append(cs, AddrConst{mr.BaseName, mr.Base}, AddrConst{mr.HighName, mr.High})
	}
	return cs
}

// AddressPackage writes the SystemVerilog package with the address
// constants.
func AddressPackage(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	b := m.Block
	guard := strings.ToUpper(b.Name) + "_ADDRESS_PKG"
	donotedit(ew, m)
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "`ifndef", guard)
	fmt.Fprintln(ew, "`define", guard)
	fmt.Fprintln(ew)
	fmt.Fprintf(ew, "package %s_address_pkg;\n\n", b.Name)
	tw := tabwriter.NewWriter(ew, 0, 0, 1, ' ', 0)
	for _, c := range AddrConsts(m.Map) {
		fmt.Fprintf(
			tw, "  localparam logic [%d : 0] %s\t= %s;\n",
			b.AddrWidth-1, c.Name, svHex(b.AddrWidth, c.Addr),
		)
	}
	tw.Flush()
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "endpackage")
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "`endif")
	return ew.err
}

// CHeader writes the C header with the address constants. The addresses are
// relative to <BLOCK>_PHYSICAL_ADDRESS_C which must be defined by the user.
func CHeader(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	b := m.Block
	acronym := strings.ToUpper(b.Name)
	guard := acronym + "_ADDRESS_H"
	donotedit(ew, m)
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "#ifndef", guard)
	fmt.Fprintln(ew, "#define", guard)
	fmt.Fprintln(ew)
	tw := tabwriter.NewWriter(ew, 0, 0, 1, ' ', 0)
	for _, c := range AddrConsts(m.Map) {
		fmt.Fprintf(
			tw, "#define %s\t(%s_PHYSICAL_ADDRESS_C + %s)\n",
			c.Name, acronym, cHex(b.AddrWidth, c.Addr),
		)
	}
	tw.Flush()
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "#endif")
	return ew.err
}

// MemoryTable writes the rows of a LaTeX table listing the memory windows.
func MemoryTable(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	tex := strings.NewReplacer("_", `\_`, "&", `\&`, "%", `\%`, "#", `\#`)
	for _, mr := range m.Map.Mems {
		fmt.Fprintf(
			ew, "%s & %s & 0x%04X & 0x%04X & %d & %d \\\\\n",
			tex.Replace(mr.Mem.Name), mr.Mem.Access,
			mr.Base, mr.High, mr.Mem.Size, mr.Mem.Width,
		)
	}
	return ew.err
}

// AddressMap writes a human readable listing of the address map.
func AddressMap(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	b := m.Block
	fmt.Fprintf(
		ew, "// %s: %d-bit bus, %d-bit address, %d registers, %d memories\n",
		b.Name, b.BusWidth, b.AddrWidth, len(b.Registers), len(b.Memories),
	)
	tw := tabwriter.NewWriter(ew, 0, 0, 1, ' ', 0)
	for _, l := range m.Layouts {
		for _, s := range l.Slots {
			fmt.Fprintf(tw, "%s\t %-3v\t %s\t", cHex(b.AddrWidth, s.Addr), l.Reg.Access, s.Name)
			fields := make([]string, len(l.Order))
			for i, f := range l.Order {
				fields[i] = fmt.Sprintf("%s[%s]", f.Name, f.Range())
			}
			fmt.Fprintf(tw, " %s\n", strings.Join(fields, " "))
		}
	}
	for _, mr := range m.Map.Mems {
		fmt.Fprintf(
			tw, "%s\t %-3v\t %s\t %s..%s %dx%d\n",
			cHex(b.AddrWidth, mr.Base), mr.Mem.Access, mr.BaseName,
			cHex(b.AddrWidth, mr.Base), cHex(b.AddrWidth, mr.High),
			mr.Mem.Size, mr.Mem.Width,
		)
	}
	fmt.Fprintf(tw, "%s\t\t %s\t\n", cHex(b.AddrWidth, m.Map.High), m.Map.HighName)
	tw.Flush()
	return ew.err
}

// GoConsts writes the address offsets as a Go constant block.
func GoConsts(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	donotedit(ew, m)
	fmt.Fprintln(ew)
	fmt.Fprintln(ew, "//", m.Block.Name, "register block offsets")
	fmt.Fprintln(ew, "const (")
	for _, c := range AddrConsts(m.Map) {
		fmt.Fprintf(ew, "\t%s uintptr = %#X\n", c.Name, c.Addr)
	}
	fmt.Fprintln(ew, ")")
	return ew.err
}
