//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// rawTerm puts a terminal into raw input mode: no echo, no line
// buffering. Reads return as soon as a byte is available. The returned
// function restores the previous mode. Files that are not terminals are
// left alone.
func rawTerm(file *os.File) (restore func() error, err error) {
	restore = func() error { return nil }

	fd := int(file.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		// Not a terminal.
		err = nil
		return
	}

	saved := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate)
	if err != nil {
		return
	}

	restore = func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, &saved)
	}

	return
}
