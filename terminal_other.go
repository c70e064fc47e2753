//go:build !linux

package main

import "github.com/pkg/errors"

func setRawMode(uintptr) (func(), error) {
	return nil, errors.New("raw terminal mode is only supported on linux")
}
