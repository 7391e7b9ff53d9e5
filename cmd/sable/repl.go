package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/cloudcmds/sable/vm"
)

// runRepl reads statements line by line and executes them on one persistent
// VM, so globals and interned strings carry over from line to line.
func runRepl(ctx context.Context) error {
	historyPath := getHistoryPath()

	opts := []vm.Option{vm.WithStdout(os.Stdout)}
	if viper.GetBool("trace") {
		opts = append(opts, vm.WithObserver(newTraceObserver(os.Stderr)))
	}
	machine := vm.New(opts...)

	fmt.Printf("sable %s (type 'exit' to quit)\n", version)

	prompt := color.New(color.FgYellow, color.Bold).Sprint(">>> ")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		appendToHistory(historyPath, line)

		if err := machine.Interpret(ctx, line); err != nil {
			printError(err)
		}
	}
}

func getHistoryPath() string {
	if path := viper.GetString("history-file"); path != "" {
		return path
	}
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sable_history")
}

func appendToHistory(path, line string) {
	if path == "" || line == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}
