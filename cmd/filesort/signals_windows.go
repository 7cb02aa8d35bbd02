//go:build windows

package main

import "os"

var (
	cancelSignals = []os.Signal{os.Interrupt}
	pauseSignals  []os.Signal
)
