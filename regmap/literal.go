// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrLiteral = errors.New("bad reset literal")

// ErrParamFill is returned for '1 on a field sized by a parameter. The value
// is known only after elaboration.
var ErrParamFill = fmt.Errorf("%w: '1 fill of a parameter sized field", ErrLiteral)

// ParseLiteral returns the value of a reset literal. It accepts Go integer
// literals and the SystemVerilog forms '0, '1, 'hFF, 8'hFF, 4'b1010, 'd10,
// 3'o7 (underscores allowed). The '1 form needs a numeric field size.
func ParseLiteral(s string, size Size) (uint64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" {
		return 0, ErrLiteral
	}
	i := strings.IndexByte(s, '\'')
	if i < 0 {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, ErrLiteral
		}
		return v, nil
	}
	if i > 0 {
		if _, err := strconv.ParseUint(s[:i], 10, 32); err != nil {
			return 0, ErrLiteral
		}
	}
	s = s[i+1:]
	switch s {
	case "0":
		return 0, nil
	case "1":
		if i > 0 {
			break // 1'1 is not a fill literal
		}
		if size.Symbolic() {
			return 0, ErrParamFill
		}
		if size.Bits >= 64 {
			return ^uint64(0), nil
		}
		return 1<<uint(size.Bits) - 1, nil
	}
	if s == "" {
		return 0, ErrLiteral
	}
	if s[0] == 's' || s[0] == 'S' {
		s = s[1:]
	}
	if s == "" {
		return 0, ErrLiteral
	}
	base := 0
	switch s[0] {
	case 'h', 'H':
		base = 16
	case 'd', 'D':
		base = 10
	case 'b', 'B':
		base = 2
	case 'o', 'O':
		base = 8
	default:
		return 0, ErrLiteral
	}
	v, err := strconv.ParseUint(s[1:], base, 64)
	if err != nil {
		return 0, ErrLiteral
	}
	return v, nil
}
