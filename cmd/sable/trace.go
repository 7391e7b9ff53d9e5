package main

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/cloudcmds/sable/vm"
)

// newTraceObserver returns an observer that logs every instruction the VM
// executes. Tracing is verbose by nature, so the log level is fixed at
// debug.
func newTraceObserver(w io.Writer) vm.Observer {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(zerolog.DebugLevel)
	return vm.ObserverFunc(func(event vm.StepEvent) bool {
		logger.Debug().
			Int("ip", event.IP).
			Str("op", event.OpcodeName).
			Int("line", event.Line).
			Int("stack", event.StackDepth).
			Msg("step")
		return true
	})
}
