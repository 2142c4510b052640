// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

var verbose atomic.Bool

// SetVerbose enables or disables the Info messages.
func SetVerbose(v bool) { verbose.Store(v) }

func Info(f string, args ...any) {
	if verbose.Load() {
		fmt.Fprintf(os.Stderr, f+"\n", args...)
	}
}

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

func Fatal(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// FatalErr prints an error description and exits the program if the
// err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	os.Stderr.WriteString(s)
	os.Exit(1)
}

// DirName returns the last element of the path to the current working
// directory.
func DirName() string {
	dir, err := os.Getwd()
	FatalErr("", err)
	dir = filepath.Base(dir)
	if dir == "/" || dir == "." {
		dir = ""
	}
	return dir
}

// InOutFiles infers the name of the input file from the name of the current
// working directory if the inName is an empty string and the name of the
// output file from the input file name if the outName is an empty string.
func InOutFiles(inName, inSuffix, outName, outSuffix string) (string, string) {
	if inName == "" {
		inName = DirName() + inSuffix
	}
	if outName == "" {
		outName = strings.TrimSuffix(inName, filepath.Ext(inName)) + outSuffix
	}
	return inName, outName
}

// WriteFile writes data to the named file creating its directory if
// necessary.
func WriteFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(name, data, 0644)
}
