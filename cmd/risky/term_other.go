//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import (
	"os"
)

// rawTerm is not supported on this platform; the terminal is left alone.
func rawTerm(file *os.File) (restore func() error, err error) {
	restore = func() error { return nil }
	return
}
