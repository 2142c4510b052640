// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regmap

import (
	"strconv"
)

// BitRange is the range of bits [LSB+Size-1 : LSB].
type BitRange struct {
	Size Size
	LSB  int
}

// Bit reports whether the range is a single bit index.
func (br BitRange) Bit() bool { return br.Size.OneBit() }

// MSB returns the upper bound of the range as a number or, for a symbolic
// size, as an expression.
func (br BitRange) MSB() string {
	if br.Size.Symbolic() {
		if br.LSB == 0 {
			return br.Size.Param + "-1"
		}
		return br.Size.Param + "+" + strconv.Itoa(br.LSB) + "-1"
	}
	return strconv.Itoa(br.LSB + br.Size.Bits - 1)
}

// String returns "MSB : LSB" or just "LSB" for a single bit.
func (br BitRange) String() string {
	if br.Bit() {
		return strconv.Itoa(br.LSB)
	}
	return br.MSB() + " : " + strconv.Itoa(br.LSB)
}

// Expr is the shape of a register access on the bus data word. A single
// field register maps the field to the Range slice of the data word. A
// register with more fields maps the concatenation of Fields (most
// significant first) to the whole data word.
type Expr struct {
	Fields []*BitField
	Range  *BitRange // nil for a concatenation
	Index  int       // index into the array signals or -1
}

func (e *Expr) Concat() bool { return e.Range == nil }

// SlotLayout describes the accesses at one address slot of a register.
type SlotLayout struct {
	*Slot
	Write *Expr  // nil if the register cannot be written
	Read  *Expr  // nil if the register cannot be read
	Clear string // strobe asserted by a read or ""
}

// Reset binds a reset value to a field signal (an array element for
// repeated registers).
type Reset struct {
	Field *BitField
	Index int
	Value string
}

// Signal returns the name of the reset signal: "name" or "name[i]".
func (r Reset) Signal() string {
	return ArrayElem(r.Field.Name, r.Index)
}

// ArrayElem returns "name[i]" or name if i < 0.
func ArrayElem(name string, i int) string {
	if i < 0 {
		return name
	}
	return name + "[" + strconv.Itoa(i) + "]"
}

// Instance returns the name of the i-th repeated instance of the field:
// "name_i" or name if i < 0.
func Instance(f *BitField, i int) string {
	if i < 0 {
		return f.Name
	}
	return f.Name + "_" + strconv.Itoa(i)
}

type Layout struct {
	Reg *Register

	// Order lists the fields as they appear on the data word, most
	// significant first. For registers with two or more fields it is the
	// reverse of the declaration order.
	Order []*BitField

	Slots        []*SlotLayout
	Clear        string      // read strobe of an RC register or ""
	SelfClearing []*BitField // Command fields, zeroed every cycle
	Constants    []*BitField // Constant fields, declared, never reset
	Resets       []Reset
}

// Concat reports whether the register is accessed as a concatenation of its
// fields.
func (l *Layout) Concat() bool { return len(l.Reg.Fields) > 1 }

// LayoutRegister computes the field layout of r. Slots are the address slots
// assigned to r by Allocate, one per repeat index.
func LayoutRegister(r *Register, slots []*Slot, busWidth int) (*Layout, error) {
	if len(slots) != r.Repeat {
		return nil, structErr(
			"register %s: %d address slots for %d repeats",
			r.Name, len(slots), r.Repeat,
		)
	}
	l := &Layout{Reg: r, Clear: r.ClearSignal()}
	n := len(r.Fields)
	l.Order = make([]*BitField, n)
	for i, f := range r.Fields {
		l.Order[n-1-i] = f
	}
	if n > 1 {
		// The write and read expressions concatenate the fields, so the
		// first declared field sits at bit 0 and the others follow it.
		off := 0
		for _, f := range r.Fields {
			if f.LSB != off {
				return nil, configErr(
					"field %s.%s: lsb_pos %d, concatenation places it at bit %d",
					r.Name, f.Name, f.LSB, off,
				)
			}
			if f.Size.Symbolic() {
				break
			}
			off += f.Size.Bits
		}
	}
	width := 0
	for _, f := range r.Fields {
		if f.Size.Symbolic() {
			continue
		}
		if n == 1 && f.LSB+f.Size.Bits > busWidth {
			return nil, configErr(
				"field %s.%s: bits [%s] do not fit in %d-bit bus",
				r.Name, f.Name, f.Range(), busWidth,
			)
		}
		width += f.Size.Bits
	}
	if width > busWidth {
		return nil, configErr(
			"register %s: %d field bits do not fit in %d-bit bus",
			r.Name, width, busWidth,
		)
	}
	for _, s := range slots {
		if s.Reg != r {
			return nil, structErr("register %s: slot %s belongs to %s", r.Name, s.Name, s.Reg.Name)
		}
		sl := &SlotLayout{Slot: s}
		if r.Access.Writable() {
			sl.Write = l.expr(s.Index)
		}
		if r.Access.Readable() {
			sl.Read = l.expr(s.Index)
			sl.Clear = l.Clear
		}
		l.Slots = append(l.Slots, sl)
	}
	for _, f := range r.Fields {
		switch f.Kind {
		case Command:
			l.SelfClearing = append(l.SelfClearing, f)
		case Constant:
			l.Constants = append(l.Constants, f)
			continue
		}
		if f.Reset == nil {
			continue
		}
		if !r.Repeated() {
			l.Resets = append(l.Resets, Reset{Field: f, Index: -1, Value: *f.Reset})
			continue
		}
		for i := 0; i < r.Repeat; i++ {
			l.Resets = append(l.Resets, Reset{Field: f, Index: i, Value: *f.Reset})
		}
	}
	return l, nil
}

func (l *Layout) expr(index int) *Expr {
	e := &Expr{Fields: l.Order, Index: index}
	if !l.Concat() {
		br := l.Order[0].Range()
		e.Range = &br
	}
	return e
}
