//go:build !windows

// Package console is a no-op outside Windows, where os/signal already
// delivers Ctrl+C reliably.
package console

import "go.uber.org/zap"

// IsRunningFromConsole always reports true outside Windows.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler returns a no-op re-register function.
func SetupConsoleHandler(shutdown chan struct{}, logger *zap.SugaredLogger) func() {
	return func() {}
}
