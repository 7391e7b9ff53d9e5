package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"github.com/cloudcmds/sable"
)

// runSource compiles and executes the given source, wiring in the trace
// observer when requested.
func runSource(ctx context.Context, source string) error {
	opts := []sable.Option{
		sable.WithStdout(os.Stdout),
	}
	if viper.GetBool("trace") {
		opts = append(opts, sable.WithObserver(newTraceObserver(os.Stderr)))
	}
	return sable.Eval(ctx, source, opts...)
}

func readAllStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}
