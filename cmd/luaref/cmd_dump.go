package main

import (
	"fmt"

	"github.com/dhamidi/luaref/format"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

func newDumpCmd(source *sourceOptions) *cobra.Command {
	var (
		dumpFormat string
		filter     string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the resolved class reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, overrides, err := source.loadLibrary(cmd.Context())
			if err != nil {
				return err
			}
			if filter != "" {
				pattern, err := glob.Compile(filter, '.')
				if err != nil {
					return fmt.Errorf("compile filter: %w", err)
				}
				lib = lib.Filter(pattern.Match)
			}

			out := cmd.OutOrStdout()
			var enc format.Encoder
			switch dumpFormat {
			case "json":
				enc = format.NewJSONEncoder(out)
			case "line":
				enc = format.NewLineEncoder(out)
			case "emmylua":
				enc = format.NewEmmyLuaEncoder(out, overrides)
			default:
				return fmt.Errorf("unknown format: %s (expected json, line, or emmylua)", dumpFormat)
			}

			if err := enc.Encode(lib); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			if dumpFormat == "json" {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format (json, line, emmylua)")
	cmd.Flags().StringVar(&filter, "filter", "", "only dump classes and enums matching this glob (e.g. 'ARDOUR.*')")

	return cmd
}
