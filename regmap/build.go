// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regmap

import (
	"errors"
	"fmt"
)

// Model is everything the emitters need to know about a register block.
type Model struct {
	Block   *RegisterBlock
	Map     *AddressMap
	Layouts []*Layout // in register declaration order
}

// Build allocates the addresses of b and lays out all its registers. It
// either returns the complete model or the first error found.
func Build(b *RegisterBlock) (*Model, error) {
	am, err := Allocate(b)
	if err != nil {
		return nil, err
	}
	m := &Model{Block: b, Map: am}
	for _, r := range b.Registers {
		l, err := LayoutRegister(r, am.RegSlots(r), b.BusWidth)
		if err != nil {
			return nil, err
		}
		m.Layouts = append(m.Layouts, l)
	}
	return m, nil
}

// Resets returns the reset bindings of all registers.
func (m *Model) Resets() []Reset {
	var rs []Reset
	for _, l := range m.Layouts {
		rs = append(rs, l.Resets...)
	}
	return rs
}

// SelfClearing returns the Command fields of all registers.
func (m *Model) SelfClearing() []*BitField {
	var fs []*BitField
	for _, l := range m.Layouts {
		fs = append(fs, l.SelfClearing...)
	}
	return fs
}

// ClearSignals returns the read strobes of all RC registers.
func (m *Model) ClearSignals() []string {
	var ss []string
	for _, l := range m.Layouts {
		if l.Clear != "" {
			ss = append(ss, l.Clear)
		}
	}
	return ss
}

// Word is the value of a register slot after reset.
type Word struct {
	Slot  *Slot
	Value uint64
}

// ResetWords returns the reset value of every register slot. Fields without
// a reset value contribute zeros, as do the fields listed by ParamResets.
func (m *Model) ResetWords() ([]Word, error) {
	ws := make([]Word, 0, len(m.Map.Slots))
	for _, l := range m.Layouts {
		var v uint64
		for _, f := range l.Reg.Fields {
			if f.Reset == nil {
				continue
			}
			x, err := ParseLiteral(*f.Reset, f.Size)
			if errors.Is(err, ErrParamFill) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", l.Reg.Name, f.Name, err)
			}
			if f.LSB < 64 {
				v |= x << uint(f.LSB)
			}
		}
		if bw := m.Block.BusWidth; bw < 64 {
			v &= 1<<uint(bw) - 1
		}
		for _, s := range l.Slots {
			ws = append(ws, Word{Slot: s.Slot, Value: v})
		}
	}
	return ws, nil
}

// ParamResets returns the fields whose reset value depends on a parameter of
// the block, in declaration order.
func (m *Model) ParamResets() []*BitField {
	var fs []*BitField
	for _, l := range m.Layouts {
		for _, f := range l.Reg.Fields {
			if f.Reset == nil || !f.Size.Symbolic() {
				continue
			}
			if _, err := ParseLiteral(*f.Reset, f.Size); errors.Is(err, ErrParamFill) {
				fs = append(fs, f)
			}
		}
	}
	return fs
}
