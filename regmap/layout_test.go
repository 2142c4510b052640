// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regmap

import (
	"errors"
	"strings"
	"testing"
)

func fieldNames(fs []*BitField) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}

func buildOne(t *testing.T, busWidth int, r *Register, params ...string) *Layout {
	t.Helper()
	m, err := Build(mustBlock(t, busWidth, []*Register{r}, nil, params...))
	if err != nil {
		t.Fatal(err)
	}
	return m.Layouts[0]
}

func TestBitRange(t *testing.T) {
	cases := []struct {
		size Size
		lsb  int
		want string
	}{
		{Bits(1), 0, "0"},
		{Bits(1), 5, "5"},
		{Bits(8), 0, "7 : 0"},
		{Bits(8), 8, "15 : 8"},
		{Param("N"), 0, "N-1 : 0"},
		{Param("N"), 4, "N+4-1 : 4"},
	}
	for _, c := range cases {
		br := BitRange{Size: c.size, LSB: c.lsb}
		if got := br.String(); got != c.want {
			t.Errorf("BitRange{%v, %d} = %q, want %q", c.size, c.lsb, got, c.want)
		}
	}
}

func TestLayoutConcatOrder(t *testing.T) {
	r := mustReg(t, "cfg", RW, 1,
		mustField(t, "f0", Bits(4), 0, nil),
		mustField(t, "f1", Bits(4), 4, nil),
		mustField(t, "f2", Bits(4), 8, nil),
	)
	l := buildOne(t, 32, r)
	if got := fieldNames(l.Order); got != "f2,f1,f0" {
		t.Errorf("order %s, want f2,f1,f0", got)
	}
	s := l.Slots[0]
	if s.Write == nil || !s.Write.Concat() || fieldNames(s.Write.Fields) != "f2,f1,f0" {
		t.Errorf("write %+v", s.Write)
	}
	if s.Read == nil || !s.Read.Concat() || fieldNames(s.Read.Fields) != "f2,f1,f0" {
		t.Errorf("read %+v", s.Read)
	}
	if s.Clear != "" {
		t.Errorf("clear %q for RW register", s.Clear)
	}
	// The declaration order must not be changed.
	if fieldNames(r.Fields) != "f0,f1,f2" {
		t.Errorf("register fields reordered: %s", fieldNames(r.Fields))
	}
}

func TestLayoutTwoBytes(t *testing.T) {
	r := mustReg(t, "pair", RW, 1,
		mustField(t, "a", Bits(8), 0, nil),
		mustField(t, "b", Bits(8), 8, nil),
	)
	l := buildOne(t, 32, r)
	s := l.Slots[0]
	if fieldNames(s.Read.Fields) != "b,a" || fieldNames(s.Write.Fields) != "b,a" {
		t.Errorf("read {%s} write {%s}, want {b,a}", fieldNames(s.Read.Fields), fieldNames(s.Write.Fields))
	}
}

func TestLayoutSingleField(t *testing.T) {
	cases := []struct {
		f    *BitField
		want string
	}{
		{mustField(t, "cr_go", Bits(1), 0, nil), "0"},
		{mustField(t, "cr_go", Bits(1), 1, nil), "1"},
		{mustField(t, "cr_val", Bits(12), 0, nil), "11 : 0"},
		{mustField(t, "cr_val", Bits(12), 4, nil), "15 : 4"},
		{mustField(t, "cr_val", Param("W"), 0, nil), "W-1 : 0"},
		{mustField(t, "cr_val", Param("W"), 2, nil), "W+2-1 : 2"},
	}
	for _, c := range cases {
		l := buildOne(t, 32, mustReg(t, "ctrl", RW, 1, c.f), "W")
		s := l.Slots[0]
		if s.Write == nil || s.Write.Concat() || s.Write.Range.String() != c.want {
			t.Errorf("%s@%d: write %+v, want range %s", c.f.Size, c.f.LSB, s.Write, c.want)
		}
		if s.Read == nil || s.Read.Range.String() != c.want {
			t.Errorf("%s@%d: read %+v, want range %s", c.f.Size, c.f.LSB, s.Read, c.want)
		}
		if s.Write.Index != -1 {
			t.Errorf("index %d for a not repeated register", s.Write.Index)
		}
	}
}

// Two single bit CR fields placed in separate registers are not combined.
func TestLayoutSeparateControlBits(t *testing.T) {
	regs := []*Register{
		mustReg(t, "start", WO, 1, mustField(t, "cr_start", Bits(1), 0, nil)),
		mustReg(t, "stop", WO, 1, mustField(t, "cr_stop", Bits(1), 1, nil)),
	}
	m, err := Build(mustBlock(t, 32, regs, nil))
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"0", "1"} {
		s := m.Layouts[i].Slots[0]
		if s.Write == nil || s.Write.Concat() || s.Write.Range.String() != want {
			t.Errorf("%s: write %+v, want bit %s", s.Name, s.Write, want)
		}
		if s.Read != nil {
			t.Errorf("%s: read of a WO register", s.Name)
		}
	}
}

func TestLayoutAccessModes(t *testing.T) {
	cases := []struct {
		access      Access
		write, read bool
	}{
		{WO, true, false},
		{RO, false, true},
		{RW, true, true},
		{RC, false, true},
		{ROM, false, true},
	}
	for _, c := range cases {
		f := mustField(t, "x", Bits(8), 0, lit("0"))
		l := buildOne(t, 32, mustReg(t, "r", c.access, 1, f))
		s := l.Slots[0]
		if (s.Write != nil) != c.write || (s.Read != nil) != c.read {
			t.Errorf("%v: write %v read %v", c.access, s.Write != nil, s.Read != nil)
		}
	}
}

func TestLayoutReadAndClear(t *testing.T) {
	single := buildOne(t, 32, mustReg(t, "irq", RC, 1, mustField(t, "irq_done", Bits(1), 3, nil)))
	s := single.Slots[0]
	if s.Read == nil || s.Read.Concat() || s.Read.Range.String() != "3" {
		t.Errorf("single RC read %+v", s.Read)
	}
	if s.Clear != "clear_irq" || single.Clear != "clear_irq" {
		t.Errorf("single RC clear %q", s.Clear)
	}
	multi := buildOne(t, 32, mustReg(t, "evt", RC, 1,
		mustField(t, "irq_a", Bits(1), 0, nil),
		mustField(t, "irq_b", Bits(1), 1, nil),
	))
	s = multi.Slots[0]
	if s.Read == nil || !s.Read.Concat() || fieldNames(s.Read.Fields) != "irq_b,irq_a" {
		t.Errorf("multi RC read %+v", s.Read)
	}
	if s.Write != nil || s.Clear != "clear_evt" {
		t.Errorf("multi RC: write %v clear %q", s.Write, s.Clear)
	}
}

func TestLayoutRepeat(t *testing.T) {
	r := mustReg(t, "coef", RW, 3,
		mustField(t, "cr_lo", Bits(8), 0, lit("8'h01")),
		mustField(t, "cmd_hi", Bits(8), 8, nil),
	)
	l := buildOne(t, 32, r)
	if len(l.Slots) != 3 {
		t.Fatalf("%d slots, want 3", len(l.Slots))
	}
	for i, s := range l.Slots {
		if s.Index != i || s.Write.Index != i || s.Read.Index != i {
			t.Errorf("slot %d: index %d/%d/%d", i, s.Index, s.Write.Index, s.Read.Index)
		}
		if s.Addr != uint64(4*i) {
			t.Errorf("slot %d at %d", i, s.Addr)
		}
	}
	if len(l.Resets) != 3 {
		t.Fatalf("%d resets, want 3", len(l.Resets))
	}
	for i, rs := range l.Resets {
		if want := "cr_lo[" + string(rune('0'+i)) + "]"; rs.Signal() != want || rs.Value != "8'h01" {
			t.Errorf("reset %d: %s <= %s", i, rs.Signal(), rs.Value)
		}
	}
	if Instance(r.Fields[0], 2) != "cr_lo_2" || Instance(r.Fields[0], -1) != "cr_lo" {
		t.Error("Instance names")
	}
	if len(l.SelfClearing) != 1 || l.SelfClearing[0].Name != "cmd_hi" {
		t.Errorf("self clearing %s", fieldNames(l.SelfClearing))
	}
}

func TestLayoutResetsAndConstants(t *testing.T) {
	r := mustReg(t, "id", ROM, 1,
		mustField(t, "rom_version", Bits(8), 0, lit("8'h12")),
		mustField(t, "sr_state", Bits(4), 8, lit("0")),
		mustField(t, "sr_err", Bits(1), 12, nil),
	)
	l := buildOne(t, 32, r)
	if len(l.Constants) != 1 || l.Constants[0].Name != "rom_version" {
		t.Errorf("constants %s", fieldNames(l.Constants))
	}
	if len(l.Resets) != 1 || l.Resets[0].Signal() != "sr_state" || l.Resets[0].Value != "0" {
		t.Errorf("resets %+v", l.Resets)
	}
}

func TestLayoutErrors(t *testing.T) {
	wide := mustReg(t, "wide", RW, 1, mustField(t, "x", Bits(8), 28, nil))
	if _, err := LayoutRegister(wide, []*Slot{{Reg: wide, Index: -1}}, 32); !errors.Is(err, ErrConfig) {
		t.Errorf("field above the bus: %v", err)
	}
	fat := mustReg(t, "fat", RW, 1,
		mustField(t, "a", Bits(20), 0, nil),
		mustField(t, "b", Bits(20), 20, nil),
	)
	if _, err := LayoutRegister(fat, []*Slot{{Reg: fat, Index: -1}}, 32); !errors.Is(err, ErrConfig) {
		t.Errorf("fields wider than the bus: %v", err)
	}
	overlap := mustReg(t, "overlap", RW, 1,
		mustField(t, "a", Bits(8), 0, nil),
		mustField(t, "b", Bits(8), 0, nil),
	)
	if _, err := LayoutRegister(overlap, []*Slot{{Reg: overlap, Index: -1}}, 32); !errors.Is(err, ErrConfig) {
		t.Errorf("overlapping fields: %v", err)
	}
	gap := mustReg(t, "gap", RW, 1,
		mustField(t, "a", Bits(4), 0, nil),
		mustField(t, "b", Bits(4), 8, nil),
	)
	if _, err := LayoutRegister(gap, []*Slot{{Reg: gap, Index: -1}}, 32); !errors.Is(err, ErrConfig) {
		t.Errorf("gap between fields: %v", err)
	}
	shifted := mustReg(t, "shifted", RW, 1,
		mustField(t, "a", Bits(4), 4, nil),
		mustField(t, "b", Bits(4), 8, nil),
	)
	if _, err := LayoutRegister(shifted, []*Slot{{Reg: shifted, Index: -1}}, 32); !errors.Is(err, ErrConfig) {
		t.Errorf("first field above bit 0: %v", err)
	}
	// Nothing is known about the bits above a parameter sized field.
	sym := mustReg(t, "sym", RW, 1,
		mustField(t, "a", Bits(2), 0, nil),
		mustField(t, "b", Param("W"), 2, nil),
		mustField(t, "c", Bits(1), 9, nil),
	)
	if _, err := LayoutRegister(sym, []*Slot{{Reg: sym, Index: -1}}, 32); err != nil {
		t.Errorf("parameter sized field: %v", err)
	}
	rep := mustReg(t, "rep", RW, 2, mustField(t, "a", Bits(1), 0, nil))
	if _, err := LayoutRegister(rep, []*Slot{{Reg: rep, Index: 0}}, 32); !errors.Is(err, ErrStructure) {
		t.Errorf("missing repeat slot: %v", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	regs := []*Register{
		mustReg(t, "a", RW, 2, mustField(t, "cr_a", Bits(3), 0, lit("1")), mustField(t, "cmd_b", Bits(1), 3, nil)),
		mustReg(t, "b", RC, 1, mustField(t, "irq_x", Bits(1), 0, nil)),
	}
	b := mustBlock(t, 32, regs, []*Memory{mustMem(t, "m", WO, 8, 32)})
	m1, err := Build(b)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := Build(b)
	if err != nil {
		t.Fatal(err)
	}
	dump := func(m *Model) string {
		var sb strings.Builder
		for _, l := range m.Layouts {
			for _, s := range l.Slots {
				sb.WriteString(s.Name)
				if s.Write != nil {
					sb.WriteString(" w:" + fieldNames(s.Write.Fields))
				}
				if s.Read != nil {
					sb.WriteString(" r:" + fieldNames(s.Read.Fields))
				}
				sb.WriteString(" " + s.Clear + "\n")
			}
		}
		for _, rs := range m.Resets() {
			sb.WriteString(rs.Signal() + "=" + rs.Value + "\n")
		}
		return sb.String()
	}
	if dump(m1) != dump(m2) {
		t.Error("Build is not deterministic")
	}
	if got := m1.ClearSignals(); len(got) != 1 || got[0] != "clear_b" {
		t.Errorf("ClearSignals %v", got)
	}
	if got := fieldNames(m1.SelfClearing()); got != "cmd_b" {
		t.Errorf("SelfClearing %s", got)
	}
	if n := len(m1.Resets()); n != 2 {
		t.Errorf("%d resets, want 2", n)
	}
}

func TestResetWords(t *testing.T) {
	regs := []*Register{
		mustReg(t, "ctrl", RW, 1,
			mustField(t, "cr_en", Bits(1), 0, lit("1")),
			mustField(t, "cr_mode", Bits(3), 1, lit("3'b101")),
			mustField(t, "cr_div", Bits(8), 4, lit("8'hA5")),
		),
		mustReg(t, "id", ROM, 2, mustField(t, "rom_id", Bits(16), 0, lit("'1"))),
		mustReg(t, "stat", RO, 1, mustField(t, "sr_x", Bits(4), 0, nil)),
	}
	m, err := Build(mustBlock(t, 32, regs, nil))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := m.ResetWords()
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{0xA5B, 0xFFFF, 0xFFFF, 0}
	if len(ws) != len(want) {
		t.Fatalf("%d words, want %d", len(ws), len(want))
	}
	for i, w := range ws {
		if w.Value != want[i] || w.Slot.Addr != uint64(4*i) {
			t.Errorf("word %d: %#x @%d, want %#x @%d", i, w.Value, w.Slot.Addr, want[i], 4*i)
		}
	}
}

func TestResetWordsParamFill(t *testing.T) {
	regs := []*Register{
		mustReg(t, "ctrl", RW, 1,
			mustField(t, "cr_en", Bits(1), 0, lit("1")),
			mustField(t, "cr_mask", Param("W"), 1, lit("'1")),
		),
		mustReg(t, "lim", RW, 1, mustField(t, "cr_lim", Param("W"), 0, lit("'0"))),
		mustReg(t, "bad", RW, 1, mustField(t, "cr_bad", Param("W"), 0, nil)),
	}
	m, err := Build(mustBlock(t, 32, regs, nil, "W"))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := m.ResetWords()
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 3 || ws[0].Value != 1 || ws[1].Value != 0 {
		t.Errorf("words %+v", ws)
	}
	if got := fieldNames(m.ParamResets()); got != "cr_mask" {
		t.Errorf("ParamResets %s", got)
	}
	regs[2].Fields[0].Reset = lit("'hzz")
	if _, err := m.ResetWords(); !errors.Is(err, ErrLiteral) {
		t.Errorf("bad literal: %v", err)
	}
}
