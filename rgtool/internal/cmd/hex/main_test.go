// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/embeddedgo/regtools/regmap"
	"github.com/embeddedgo/regtools/rgtool/internal/util"
	"github.com/marcinbor85/gohex"
)

const uart = `
uart:
  bus_width: 32
  parameters:
    - DIV_WIDTH_P
  registers:
    - name: ctrl
      access: RW
      bit_fields:
        - field: {name: cr_baud, size: 16, lsb_pos: 0, reset_value: 0x0100}
        - field: {name: cr_en, size: 1, lsb_pos: 16, reset_value: 1}
    - name: div
      access: RW
      bit_fields:
        - field: {name: cr_div, size: DIV_WIDTH_P, lsb_pos: 0, reset_value: "'1"}
`

// chdir changes the working directory to dir until the end of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestRunDefaultNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uart")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "uart.yml"), []byte(uart), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	spec, out := util.InOutFiles("", ".yml", "", "_reset.hex")
	if spec != "uart.yml" || out != "uart_reset.hex" {
		t.Fatalf("default names %s %s", spec, out)
	}
	if err := Run(spec, out, 0x40000000); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "uart_reset.hex"))
	if err != nil {
		t.Fatal(err)
	}
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	got := mem.ToBinary(0x40000000, 8, 0xEE)
	want := []byte{0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("image % X, want % X", got, want)
	}
}

func TestRunBase(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "uart.yml")
	if err := os.WriteFile(spec, []byte(uart), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out", "uart.hex")
	if err := Run(spec, out, math.MaxUint32+1); err == nil {
		t.Error("base above 32 bits accepted")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("image written for a bad base: %v", err)
	}
	if err := Run(spec, out, 0xFFFF0000); err != nil {
		t.Errorf("high base: %v", err)
	}
	if err := Run(spec, out, math.MaxUint32+1-4); err == nil {
		t.Error("image crossing 4 GiB accepted")
	}
}

func TestRunBadSpec(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "bad.yml")
	text := "bad:\n  bus_width: 12\n"
	if err := os.WriteFile(spec, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	err := Run(spec, filepath.Join(dir, "bad.hex"), 0)
	if !errors.Is(err, regmap.ErrStructure) {
		t.Errorf("error %v, want structure error", err)
	}
}
