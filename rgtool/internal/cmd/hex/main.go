// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/embeddedgo/regtools/regspec"
	"github.com/embeddedgo/regtools/rgtool/internal/hex"
	"github.com/embeddedgo/regtools/rgtool/internal/util"
)

const Descr = "write the register reset image in the Intel HEX format"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [SPEC.yml [HEX]]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	base := fs.Uint64("base", 0, "physical address of the register block")
	fs.Parse(args)
	if fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	spec, out := util.InOutFiles(fs.Arg(0), ".yml", fs.Arg(1), "_reset.hex")
	util.FatalErr("", Run(spec, out, *base))
}

// Run writes the reset image of the block described in spec to the out file.
// The block registers are placed at the physical address base.
func Run(spec, out string, base uint64) error {
	if base > math.MaxUint32 {
		return fmt.Errorf("base address 0x%X does not fit in 32 bits", base)
	}
	m, err := regspec.Load(spec)
	if err != nil {
		return err
	}
	for _, f := range m.ParamResets() {
		util.Warn(
			"%s: reset value %s of %s depends on %s, zero in the reset image",
			spec, *f.Reset, f.Name, f.Size.Param,
		)
	}
	var buf bytes.Buffer
	if err := hex.Write(&buf, m, uint32(base)); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}
	return util.WriteFile(out, buf.Bytes())
}
