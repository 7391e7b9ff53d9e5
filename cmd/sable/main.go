package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudcmds/sable/errz"
)

var version = "dev"

// Exit codes follow the BSD sysexits convention.
const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIO      = 74
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		printError(err)
		os.Exit(exitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sable [file]",
		Short:         "A small scripting language on a bytecode VM",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			processGlobalFlags()
			source, provided, err := getSource(cmd, args)
			if err != nil {
				return err
			}
			if !provided {
				if shouldRunRepl(args) {
					return runRepl(cmd.Context())
				}
				if source, err = readAllStdin(); err != nil {
					return err
				}
			}
			return runSource(cmd.Context(), source)
		},
	}

	root.PersistentFlags().StringP("code", "c", "", "Code to evaluate")
	root.PersistentFlags().Bool("stdin", false, "Read code from stdin")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().Bool("trace", false, "Trace instruction execution")
	root.Flags().Bool("no-repl", false, "Disable the REPL")
	viper.BindPFlags(root.PersistentFlags())
	viper.BindPFlag("no-repl", root.Flags().Lookup("no-repl"))

	viper.SetEnvPrefix("sable")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("no-color", "NO_COLOR")
	viper.BindEnv("history-file", "SABLE_HISTORY_FILE")

	root.AddCommand(newDisCommand())
	return root
}

// getSource determines what code is to be executed. There are three
// possibilities: --code <code>, --stdin, or a file path argument.
func getSource(cmd *cobra.Command, args []string) (source string, provided bool, err error) {
	codeFlagSet := cmd.Flags().Lookup("code").Changed
	stdinFlagSet := viper.GetBool("stdin")
	pathSupplied := len(args) > 0

	count := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", false, errors.New("multiple input sources specified")
	}
	if count == 0 {
		return "", false, nil
	}

	switch {
	case stdinFlagSet:
		data, err := readAllStdin()
		if err != nil {
			return "", false, err
		}
		return data, true, nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	default:
		return viper.GetString("code"), true, nil
	}
}

func shouldRunRepl(args []string) bool {
	if viper.GetBool("no-repl") || viper.GetBool("stdin") {
		return false
	}
	if len(args) > 0 {
		return false
	}
	return isTerminalIO()
}

// exitCode maps an error to the process exit status: compile diagnostics,
// runtime failures, and I/O failures each have their own code, and anything
// else is treated as a usage error.
func exitCode(err error) int {
	var pathErr *fs.PathError
	switch {
	case errz.IsCompileError(err):
		return exitCompile
	case errz.IsRuntimeError(err):
		return exitRuntime
	case errors.As(err, &pathErr):
		return exitIO
	default:
		return exitUsage
	}
}

// printError writes the user-facing form of an error to stderr. Compiler
// diagnostics print one line each; everything else prints as a single
// message.
func printError(err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			var serr *errz.StructuredError
			if errors.As(e, &serr) {
				fmt.Fprintln(os.Stderr, red(serr.FriendlyErrorMessage()))
			} else {
				fmt.Fprintln(os.Stderr, red(e.Error()))
			}
		}
		return
	}
	var serr *errz.StructuredError
	if errors.As(err, &serr) {
		fmt.Fprintln(os.Stderr, red(serr.FriendlyErrorMessage()))
		return
	}
	fmt.Fprintln(os.Stderr, red(err.Error()))
}

func red(s string) string {
	return color.RedString("%s", s)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}
