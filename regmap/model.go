// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regmap computes the address map and the bit-field layout of
// a register block.
package regmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrConfig is wrapped by all errors caused by a register block that
	// cannot be mapped (unsupported access modes, unresolvable bit ranges,
	// addresses that do not fit the address width).
	ErrConfig = errors.New("configuration error")

	// ErrStructure is wrapped by all errors caused by malformed register or
	// field lists.
	ErrStructure = errors.New("structural inconsistency")
)

func configErr(f string, args ...any) error {
	return fmt.Errorf("%w: "+f, append([]any{ErrConfig}, args...)...)
}

func structErr(f string, args ...any) error {
	return fmt.Errorf("%w: "+f, append([]any{ErrStructure}, args...)...)
}

type Access uint8

const (
	WO Access = iota + 1 // write only
	RO                   // read only
	RW                   // read-write
	RC                   // read and clear
	ROM                  // read only constant
)

var accessNames = [...]string{
	WO: "WO", RO: "RO", RW: "RW", RC: "RC", ROM: "ROM",
}

func (a Access) String() string {
	if a == 0 || int(a) >= len(accessNames) {
		return "Access(" + strconv.Itoa(int(a)) + ")"
	}
	return accessNames[a]
}

// ParseAccess accepts the access mode names in any letter case.
func ParseAccess(s string) (Access, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for a, name := range accessNames {
		if a != 0 && name == u {
			return Access(a), nil
		}
	}
	return 0, configErr("unknown access mode %q", s)
}

func (a Access) Readable() bool {
	return a == RO || a == RW || a == RC || a == ROM
}

func (a Access) Writable() bool {
	return a == WO || a == RW
}

// Kind is the role of a bit field in the generated logic. It is derived from
// the first underscore delimited token of the field name.
type Kind uint8

const (
	Internal  Kind = iota // stored in the slave, not visible as a port
	Control               // CR: output driven by the slave
	Command               // CMD: self-clearing output
	Status                // SR: input sampled by the slave
	Interrupt             // IRQ: input sampled by the slave
	Constant              // ROM: constant, never written
)

var kindNames = [...]string{
	Internal:  "Internal",
	Control:   "Control",
	Command:   "Command",
	Status:    "Status",
	Interrupt: "Interrupt",
	Constant:  "Constant",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// KindOf returns the kind of the field named name.
func KindOf(name string) Kind {
	prefix, _, _ := strings.Cut(name, "_")
	switch strings.ToUpper(prefix) {
	case "CR":
		return Control
	case "CMD":
		return Command
	case "SR":
		return Status
	case "IRQ":
		return Interrupt
	case "ROM":
		return Constant
	}
	return Internal
}

// Output reports whether the field is driven by the slave.
func (k Kind) Output() bool { return k == Control || k == Command }

// Input reports whether the field is sampled by the slave.
func (k Kind) Input() bool { return k == Status || k == Interrupt }

// Size is the bit size of a field: a positive number of bits or the name of
// a block parameter.
type Size struct {
	Bits  int
	Param string
}

func Bits(n int) Size { return Size{Bits: n} }

func Param(name string) Size { return Size{Param: name} }

func (s Size) Symbolic() bool { return s.Param != "" }

func (s Size) OneBit() bool { return s.Param == "" && s.Bits == 1 }

func (s Size) String() string {
	if s.Param != "" {
		return s.Param
	}
	return strconv.Itoa(s.Bits)
}

type BitField struct {
	Name  string
	Kind  Kind
	Size  Size
	LSB   int
	Reset *string // reset value literal, nil if not specified
	Descr string
}

// NewField returns a bit field with its kind resolved from the name.
func NewField(name string, size Size, lsb int, reset *string, descr string) (*BitField, error) {
	if name == "" {
		return nil, structErr("field without a name")
	}
	if !size.Symbolic() && size.Bits <= 0 {
		return nil, configErr("field %s: bad size %d", name, size.Bits)
	}
	if lsb < 0 {
		return nil, configErr("field %s: bad lsb position %d", name, lsb)
	}
	f := &BitField{
		Name:  name,
		Kind:  KindOf(name),
		Size:  size,
		LSB:   lsb,
		Reset: reset,
		Descr: descr,
	}
	if f.Kind == Constant && reset == nil {
		return nil, configErr("constant field %s has no reset value", name)
	}
	return f, nil
}

// Range returns the bit range occupied by the field.
func (f *BitField) Range() BitRange {
	return BitRange{Size: f.Size, LSB: f.LSB}
}

type Register struct {
	Name   string
	Access Access
	Repeat int
	Descr  string
	Fields []*BitField
}

// NewRegister returns a register. Repeat == 0 is treated as 1.
func NewRegister(name string, access Access, repeat int, descr string, fields []*BitField) (*Register, error) {
	if name == "" {
		return nil, structErr("register without a name")
	}
	if access < WO || access > ROM {
		return nil, configErr("register %s: bad access mode %v", name, access)
	}
	switch {
	case repeat == 0:
		repeat = 1
	case repeat < 0:
		return nil, structErr("register %s: bad repeat count %d", name, repeat)
	}
	if len(fields) == 0 {
		return nil, structErr("register %s has no fields", name)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == nil {
			return nil, structErr("register %s: nil field", name)
		}
		if seen[f.Name] {
			return nil, structErr("register %s: duplicate field %s", name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == Constant && access.Writable() {
			return nil, configErr(
				"register %s: constant field %s in a %v register",
				name, f.Name, access,
			)
		}
	}
	return &Register{
		Name:   name,
		Access: access,
		Repeat: repeat,
		Descr:  descr,
		Fields: fields,
	}, nil
}

// Repeated reports whether the register occupies more than one address slot.
func (r *Register) Repeated() bool { return r.Repeat > 1 }

// ClearSignal returns the name of the synthesized read strobe of an RC
// register or "" for any other register.
func (r *Register) ClearSignal() string {
	if r.Access != RC {
		return ""
	}
	return "clear_" + r.Name
}

type Memory struct {
	Name   string
	Access Access
	Size   int // number of elements
	Width  int // element width in bits
}

// NewMemory returns a memory region. Only write-only and read-write memories
// can be mapped. Reading a memory through the slave is not supported.
func NewMemory(name string, access Access, size, width int) (*Memory, error) {
	if name == "" {
		return nil, structErr("memory without a name")
	}
	if access != RW && access != WO {
		return nil, configErr(
			"memory %s: access %v not supported (only RW and WO memories)",
			name, access,
		)
	}
	if size <= 0 {
		return nil, configErr("memory %s: bad size %d", name, size)
	}
	if width <= 0 {
		return nil, configErr("memory %s: bad width %d", name, width)
	}
	return &Memory{Name: name, Access: access, Size: size, Width: width}, nil
}

type RegisterBlock struct {
	Name      string
	BusWidth  int // bus width in bits
	AddrWidth int // address width in bits
	Registers []*Register
	Memories  []*Memory
	Params    []string
}

// NewBlock returns a register block after checking that every symbolic field
// size refers to a declared parameter and that no two registers, memories or
// module signals share a name.
func NewBlock(name string, busWidth, addrWidth int, regs []*Register, mems []*Memory, params []string) (*RegisterBlock, error) {
	if name == "" {
		return nil, structErr("block without a name")
	}
	if busWidth <= 0 || busWidth%8 != 0 {
		return nil, structErr("block %s: bus width %d is not a multiple of 8", name, busWidth)
	}
	if addrWidth <= 0 || addrWidth > 64 {
		return nil, configErr("block %s: bad address width %d", name, addrWidth)
	}
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[ParamName(p)] = true
	}
	names := make(map[string]string)
	// Fields, clear strobes and memory ports share the namespace of the
	// slave module.
	signals := make(map[string]string)
	signal := func(sig, what string) error {
		if other, ok := signals[sig]; ok {
			return structErr("block %s: signal %s of %s collides with %s", name, sig, what, other)
		}
		signals[sig] = what
		return nil
	}
	for _, r := range regs {
		if r == nil {
			return nil, structErr("block %s: nil register", name)
		}
		if what, ok := names[strings.ToUpper(r.Name)]; ok {
			return nil, structErr("block %s: register %s collides with %s", name, r.Name, what)
		}
		names[strings.ToUpper(r.Name)] = "register " + r.Name
		if c := r.ClearSignal(); c != "" {
			if err := signal(c, "register "+r.Name); err != nil {
				return nil, err
			}
		}
		for _, f := range r.Fields {
			if err := signal(f.Name, "field "+r.Name+"."+f.Name); err != nil {
				return nil, err
			}
			if f.Size.Symbolic() && !declared[ParamName(f.Size.Param)] {
				return nil, configErr(
					"field %s.%s: size %s is not a declared parameter",
					r.Name, f.Name, f.Size.Param,
				)
			}
		}
	}
	for _, m := range mems {
		if m == nil {
			return nil, structErr("block %s: nil memory", name)
		}
		if what, ok := names["MEM:"+strings.ToUpper(m.Name)]; ok {
			return nil, structErr("block %s: memory %s collides with %s", name, m.Name, what)
		}
		names["MEM:"+strings.ToUpper(m.Name)] = "memory " + m.Name
		for _, port := range []string{"_we", "_addr", "_wdata"} {
			if err := signal(m.Name+port, "memory "+m.Name); err != nil {
				return nil, err
			}
		}
	}
	return &RegisterBlock{
		Name:      name,
		BusWidth:  busWidth,
		AddrWidth: addrWidth,
		Registers: regs,
		Memories:  mems,
		Params:    params,
	}, nil
}

// Stride returns the number of bytes per bus beat.
func (b *RegisterBlock) Stride() int { return b.BusWidth / 8 }

// ParamName returns NAME for a parameter written as $fn(NAME) and p
// otherwise.
func ParamName(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexByte(p, '$'); i >= 0 {
		if j := strings.IndexByte(p[i:], '('); j > 0 {
			if k := strings.LastIndexByte(p, ')'); k > i+j {
				return strings.TrimSpace(p[i+j+1 : k])
			}
		}
	}
	return p
}
