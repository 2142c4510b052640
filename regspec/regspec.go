// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regspec describes the YAML register block specification.
package regspec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const DefaultAddrWidth = 16

// Size is a field size: an integer number of bits or a parameter name.
type Size struct {
	Bits  int
	Param string
}

func (s *Size) UnmarshalYAML(unmarshal func(any) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		*s = Size{Bits: n}
		return nil
	}
	var p string
	if err := unmarshal(&p); err != nil {
		return err
	}
	if n, err := strconv.Atoi(p); err == nil {
		*s = Size{Bits: n}
		return nil
	}
	*s = Size{Param: p}
	return nil
}

// Value is any scalar kept as its literal text.
type Value string

func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var x any
	if err := unmarshal(&x); err != nil {
		return err
	}
	switch x := x.(type) {
	case nil:
		return ErrNilValue
	case string:
		*v = Value(x)
	case int, int64, uint64, float64, bool:
		*v = Value(fmt.Sprint(x))
	default:
		return fmt.Errorf("not a scalar value: %v", x)
	}
	return nil
}

var ErrNilValue = errors.New("nil value")

type Spec struct {
	Name       string      `yaml:"-"`
	BusWidth   int         `yaml:"bus_width"`
	AddrWidth  int         `yaml:"addr_width"`
	Parameters []string    `yaml:"parameters"`
	Registers  []*Register `yaml:"registers"`
	Memories   []*Memory   `yaml:"memories"`
}

type Register struct {
	Name      string      `yaml:"name"`
	Access    string      `yaml:"access"`
	Repeat    int         `yaml:"repeat"`
	Desc      string      `yaml:"desc"`
	BitFields []*BitField `yaml:"bit_fields"`
}

// BitField is one element of the bit_fields list: a map with the single
// "field" key.
type BitField struct {
	Field *Field `yaml:"field"`
}

type Field struct {
	Name        string `yaml:"name"`
	Size        Size   `yaml:"size"`
	LSBPos      int    `yaml:"lsb_pos"`
	ResetValue  *Value `yaml:"reset_value"`
	Description string `yaml:"description"`
}

type Memory struct {
	Name   string `yaml:"name"`
	Access string `yaml:"access"`
	Size   int    `yaml:"size"`
	Width  int    `yaml:"width"`
}

var ErrNoBlock = errors.New("no register block")

// Decode decodes a specification document. The document is a map whose
// first key is the block name.
func Decode(data []byte) (*Spec, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, ErrNoBlock
	}
	name, ok := doc[0].Key.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("bad block name: %v", doc[0].Key)
	}
	body, err := yaml.Marshal(doc[0].Value)
	if err != nil {
		return nil, err
	}
	spec := &Spec{Name: name}
	if err := yaml.UnmarshalStrict(body, spec); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if spec.AddrWidth == 0 {
		spec.AddrWidth = DefaultAddrWidth
	}
	return spec, nil
}

// Read decodes the specification read from r.
func Read(r io.Reader) (*Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ReadFile decodes the specification file.
func ReadFile(name string) (*Spec, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	spec, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return spec, nil
}
