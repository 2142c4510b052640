// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hex writes the reset image of a register block in the Intel HEX
// format.
package hex

import (
	"fmt"
	"io"
	"math"

	"github.com/embeddedgo/regtools/regmap"
	"github.com/marcinbor85/gohex"
)

// Image returns the register slots after reset, stride little-endian bytes
// per slot, placed at base plus the slot address.
func Image(m *regmap.Model, base uint32) (*gohex.Memory, error) {
	words, err := m.ResetWords()
	if err != nil {
		return nil, err
	}
	stride := m.Block.Stride()
	mem := gohex.NewMemory()
	for _, w := range words {
		addr := uint64(base) + w.Slot.Addr
		if addr+uint64(stride) > math.MaxUint32+1 {
			return nil, fmt.Errorf("%s: address 0x%X does not fit in 32 bits", w.Slot.Name, addr)
		}
		data := make([]byte, stride)
		v := w.Value
		for i := range data {
			data[i] = byte(v)
			v >>= 8
		}
		if err := mem.AddBinary(uint32(addr), data); err != nil {
			return nil, fmt.Errorf("%s: %w", w.Slot.Name, err)
		}
	}
	return mem, nil
}

// Write writes the reset image of m to w.
func Write(w io.Writer, m *regmap.Model, base uint32) error {
	mem, err := Image(m, base)
	if err != nil {
		return err
	}
	return mem.DumpIntelHex(w, 16)
}
