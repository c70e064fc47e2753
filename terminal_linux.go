//go:build linux

package main

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// setRawMode switches the terminal to unbuffered, unechoed input and
// returns a function restoring the previous settings. Output processing is
// left on so the screen keeps its line discipline.
func setRawMode(fileDescriptor uintptr) (func(), error) {
	fd := int(fileDescriptor)
	terminalSettings, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, errors.Wrap(err, "reading terminal settings")
	}
	savedTerminalSettings := *terminalSettings
	terminalSettings.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	terminalSettings.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	terminalSettings.Cflag &^= unix.CSIZE | unix.PARENB
	terminalSettings.Cflag |= unix.CS8
	terminalSettings.Cc[unix.VMIN] = 1
	terminalSettings.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, terminalSettings); err != nil {
		return nil, errors.Wrap(err, "entering raw mode")
	}
	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, &savedTerminalSettings)
	}, nil
}
