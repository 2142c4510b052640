// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regmap

import (
	"math/bits"
	"strconv"
	"strings"
)

// Slot is one address occupied by a register. A repeated register occupies
// Repeat consecutive slots.
type Slot struct {
	Name  string // symbolic address name: REG_ADDR or REG_<i>_ADDR
	Reg   *Register
	Index int // repeat index or -1 if the register is not repeated
	Addr  uint64
}

// MemRange is the address window of a memory: [Base, High).
type MemRange struct {
	Mem      *Memory
	BaseName string
	HighName string
	Shift    uint // alignment shift: Base is a multiple of 1<<Shift
	Base     uint64
	High     uint64
}

// AddrBits returns the number of the bus address bits used to address the
// memory elements. The low clog2(stride) bits count bytes inside a bus beat.
func (mr *MemRange) AddrBits() uint { return mr.Shift }

type AddressMap struct {
	Stride   int
	Slots    []*Slot
	RegEnd   uint64 // end of the register region
	Mems     []*MemRange
	High     uint64 // overall high address
	HighName string
}

// Clog2 returns ceil(log2(n)) for n >= 1 and 0 otherwise.
func Clog2(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}

// AlignShift returns the alignment shift of a memory of size elements
// addressed through a bus with the given stride.
func AlignShift(size, stride int) uint {
	return Clog2(size) + Clog2(stride)
}

// AlignUp rounds cursor up to the next multiple of 1<<shift. A cursor that is
// already aligned is moved to the next boundary too.
func AlignUp(cursor uint64, shift uint) uint64 {
	return ((cursor + 1<<shift) >> shift) << shift
}

// SlotName returns the symbolic address name of the i-th slot of the
// register r (i < 0 for a not repeated register).
func SlotName(r *Register, i int) string {
	name := strings.ToUpper(r.Name)
	if i >= 0 {
		name += "_" + strconv.Itoa(i)
	}
	return name + "_ADDR"
}

// Allocate assigns addresses to all registers of b in declaration order and
// then places the memories above them.
func Allocate(b *RegisterBlock) (*AddressMap, error) {
	stride := b.Stride()
	acronym := strings.ToUpper(b.Name)
	am := &AddressMap{
		Stride:   stride,
		HighName: acronym + "_HIGH_ADDRESS",
	}
	var cursor uint64
	for _, r := range b.Registers {
		if !r.Repeated() {
			am.Slots = append(am.Slots, &Slot{
				Name:  SlotName(r, -1),
				Reg:   r,
				Index: -1,
				Addr:  cursor,
			})
			cursor += uint64(stride)
			continue
		}
		for i := 0; i < r.Repeat; i++ {
			am.Slots = append(am.Slots, &Slot{
				Name:  SlotName(r, i),
				Reg:   r,
				Index: i,
				Addr:  cursor,
			})
			cursor += uint64(stride)
		}
	}
	am.RegEnd = cursor
	for _, m := range b.Memories {
		shift := AlignShift(m.Size, stride)
		if shift >= 64 {
			return nil, configErr("memory %s: alignment shift %d too large", m.Name, shift)
		}
		base := AlignUp(cursor, shift)
		if base < cursor {
			return nil, configErr("memory %s: address overflow", m.Name)
		}
		name := acronym + "_" + strings.ToUpper(m.Name)
		mr := &MemRange{
			Mem:      m,
			BaseName: name + "_BASE_ADDR",
			HighName: name + "_HIGH_ADDR",
			Shift:    shift,
			Base:     base,
			High:     base + uint64(m.Size)*uint64(stride),
		}
		am.Mems = append(am.Mems, mr)
		cursor = mr.High
	}
	am.High = cursor
	if b.AddrWidth < 64 && am.High >= 1<<uint(b.AddrWidth) {
		return nil, configErr(
			"block %s: high address %#x does not fit in %d address bits",
			b.Name, am.High, b.AddrWidth,
		)
	}
	if err := am.checkNames(b.Name); err != nil {
		return nil, err
	}
	return am, nil
}

// checkNames reports an address constant name used twice, e.g. by the slots
// of register r repeated twice and register r_0.
func (am *AddressMap) checkNames(block string) error {
	seen := map[string]string{am.HighName: "the block"}
	add := func(name, what string) error {
		if other, ok := seen[name]; ok {
			return structErr("block %s: %s of %s collides with %s", block, name, what, other)
		}
		seen[name] = what
		return nil
	}
	for _, s := range am.Slots {
		if err := add(s.Name, "register "+s.Reg.Name); err != nil {
			return err
		}
	}
	for _, mr := range am.Mems {
		if err := add(mr.BaseName, "memory "+mr.Mem.Name); err != nil {
			return err
		}
		if err := add(mr.HighName, "memory "+mr.Mem.Name); err != nil {
			return err
		}
	}
	return nil
}

// Slot returns the address slot named name or nil.
func (am *AddressMap) Slot(name string) *Slot {
	for _, s := range am.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// RegSlots returns the slots of the register r in repeat index order.
func (am *AddressMap) RegSlots(r *Register) []*Slot {
	var ss []*Slot
	for _, s := range am.Slots {
		if s.Reg == r {
			ss = append(ss, s)
		}
	}
	return ss
}
