package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cloudcmds/sable"
	"github.com/cloudcmds/sable/dis"
)

func newDisCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble Sable bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			processGlobalFlags()
			source, provided, err := getSource(cmd, args)
			if err != nil {
				return err
			}
			if !provided {
				return cmd.Usage()
			}

			chunk, err := sable.Compile(source)
			if err != nil {
				return err
			}

			name := "code"
			if len(args) > 0 {
				name = filepath.Base(args[0])
			}
			dis.Print(name, dis.Disassemble(chunk), os.Stdout)
			return nil
		},
	}
}
