// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/embeddedgo/regtools/regmap"
)

type uvmField struct {
	Name     string
	Descr    string
	Size     string
	LSB      int
	Access   string
	Volatile int
	Reset    string
	HasReset int
}

type uvmReg struct {
	Name   string // instance name
	Class  string
	Descr  string
	Size   string
	Offset string
	Access string // access in the address map
	Fields []uvmField
}

type uvmBlock struct {
	Name     string
	MapName  string
	BusBytes int
	Regs     []uvmReg
}

const uvmRegText = `
{{- range .Regs}}

// {{.Descr}}
class {{.Class}} extends uvm_reg;
  ` + "`uvm_object_utils({{.Class}})" + `
{{range .Fields}}
  rand uvm_reg_field {{.Name}};
{{- end}}

  function new(string name = "{{.Class}}");
    super.new(name, {{.Size}}, UVM_NO_COVERAGE);
  endfunction

  virtual function void build();
{{- range .Fields}}

    // {{.Descr}}
    {{.Name}} = uvm_reg_field::type_id::create("{{.Name}}");
    {{.Name}}.configure(
      .parent(this),
      .size({{.Size}}),
      .lsb_pos({{.LSB}}),
      .access("{{.Access}}"),
      .volatile({{.Volatile}}),
      .reset({{.Reset}}),
      .has_reset({{.HasReset}}),
      .is_rand(1),
      .individually_accessible(0)
    );
{{- end}}
  endfunction

endclass
{{- end}}
`

const uvmBlockText = `
class {{.Name}}_block extends uvm_reg_block;
  ` + "`uvm_object_utils({{.Name}}_block)" + `
{{range .Regs}}
  rand {{.Class}} {{.Name}};
{{- end}}

  function new(string name = "{{.Name}}_block");
    super.new(name, UVM_NO_COVERAGE);
  endfunction

  virtual function void build();
{{- range .Regs}}

    {{.Name}} = {{.Class}}::type_id::create("{{.Name}}");
    {{.Name}}.configure(this);
    {{.Name}}.build();
{{- end}}

    default_map = create_map("{{.MapName}}", 0, {{.BusBytes}}, UVM_LITTLE_ENDIAN);
{{range .Regs}}
    default_map.add_reg({{.Name}}, {{.Offset}}, "{{.Access}}");
{{- end}}

    lock_model();
  endfunction

endclass
`

var (
	uvmRegTmpl   = template.Must(template.New("reg").Parse(uvmRegText))
	uvmBlockTmpl = template.Must(template.New("block").Parse(uvmBlockText))
)

// UVMRegs writes one uvm_reg class per register slot.
func UVMRegs(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	donotedit(ew, m)
	if ew.err != nil {
		return ew.err
	}
	return uvmRegTmpl.Execute(ew, newUVMBlock(m))
}

// UVMBlock writes the uvm_reg_block that maps the register classes written by
// UVMRegs.
func UVMBlock(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	donotedit(ew, m)
	if ew.err != nil {
		return ew.err
	}
	return uvmBlockTmpl.Execute(ew, newUVMBlock(m))
}

func newUVMBlock(m *regmap.Model) *uvmBlock {
	b := m.Block
	ub := &uvmBlock{
		Name:     b.Name,
		MapName:  b.Name + "_map",
		BusBytes: b.Stride(),
	}
	for _, l := range m.Layouts {
		r := l.Reg
		for _, s := range l.Slots {
			name := r.Name
			if s.Index >= 0 {
				name += "_" + strconv.Itoa(s.Index)
			}
			ur := uvmReg{
				Name:   name,
				Class:  name + "_reg",
				Descr:  oneLine(r.Descr),
				Size:   regSize(r),
				Offset: svHex(b.AddrWidth, s.Addr),
				Access: mapAccess(r.Access),
			}
			if ur.Descr == "" {
				ur.Descr = name
			}
			for _, f := range r.Fields {
				uf := uvmField{
					Name:   regmap.Instance(f, s.Index),
					Descr:  oneLine(f.Descr),
					Size:   f.Size.String(),
					LSB:    f.LSB,
					Access: fieldAccess(r.Access),
					Reset:  "0",
				}
				if uf.Descr == "" {
					uf.Descr = uf.Name
				}
				if f.Kind.Input() || r.Access == regmap.RC {
					uf.Volatile = 1
				}
				if f.Reset != nil {
					uf.Reset = *f.Reset
					uf.HasReset = 1
				}
				ur.Fields = append(ur.Fields, uf)
			}
			ub.Regs = append(ub.Regs, ur)
		}
	}
	return ub
}

// regSize returns the sum of the field sizes, as a number if all sizes are
// known or as an expression otherwise.
func regSize(r *regmap.Register) string {
	n := 0
	var terms []string
	for _, f := range r.Fields {
		if f.Size.Symbolic() {
			terms = append(terms, f.Size.Param)
		} else {
			n += f.Size.Bits
		}
	}
	if n > 0 || len(terms) == 0 {
		terms = append(terms, strconv.Itoa(n))
	}
	return strings.Join(terms, "+")
}

// mapAccess returns the access of a register in the address map: readable
// and writable registers are RW, the other readable ones RO and the rest WO.
func mapAccess(a regmap.Access) string {
	switch {
	case a.Readable() && a.Writable():
		return "RW"
	case a.Readable():
		return "RO"
	}
	return "WO"
}

// fieldAccess returns the uvm_reg_field access policy of a field.
func fieldAccess(a regmap.Access) string {
	if a == regmap.ROM {
		return "RO"
	}
	return a.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
