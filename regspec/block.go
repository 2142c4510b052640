// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regspec

import (
	"fmt"

	"github.com/embeddedgo/regtools/regmap"
)

// Block converts the specification to the register block model.
func (s *Spec) Block() (*regmap.RegisterBlock, error) {
	regs := make([]*regmap.Register, 0, len(s.Registers))
	for i, sr := range s.Registers {
		if sr == nil {
			return nil, fmt.Errorf("%w: register %d is empty", regmap.ErrStructure, i)
		}
		r, err := sr.register()
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	mems := make([]*regmap.Memory, 0, len(s.Memories))
	for i, sm := range s.Memories {
		if sm == nil {
			return nil, fmt.Errorf("%w: memory %d is empty", regmap.ErrStructure, i)
		}
		access, err := regmap.ParseAccess(sm.Access)
		if err != nil {
			return nil, fmt.Errorf("memory %s: %w", sm.Name, err)
		}
		m, err := regmap.NewMemory(sm.Name, access, sm.Size, sm.Width)
		if err != nil {
			return nil, err
		}
		mems = append(mems, m)
	}
	return regmap.NewBlock(s.Name, s.BusWidth, s.AddrWidth, regs, mems, s.Parameters)
}

func (sr *Register) register() (*regmap.Register, error) {
	access, err := regmap.ParseAccess(sr.Access)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", sr.Name, err)
	}
	fields := make([]*regmap.BitField, 0, len(sr.BitFields))
	for i, bf := range sr.BitFields {
		if bf == nil || bf.Field == nil {
			return nil, fmt.Errorf(
				"%w: register %s: bit field %d is empty",
				regmap.ErrStructure, sr.Name, i,
			)
		}
		sf := bf.Field
		size := regmap.Bits(sf.Size.Bits)
		if sf.Size.Param != "" {
			size = regmap.Param(sf.Size.Param)
		}
		var reset *string
		if sf.ResetValue != nil {
			v := string(*sf.ResetValue)
			reset = &v
		}
		f, err := regmap.NewField(sf.Name, size, sf.LSBPos, reset, sf.Description)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", sr.Name, err)
		}
		fields = append(fields, f)
	}
	return regmap.NewRegister(sr.Name, access, sr.Repeat, sr.Desc, fields)
}

// Load reads the named specification file and builds its register block
// model.
func Load(name string) (*regmap.Model, error) {
	s, err := ReadFile(name)
	if err != nil {
		return nil, err
	}
	b, err := s.Block()
	if err != nil {
		return nil, err
	}
	return regmap.Build(b)
}
