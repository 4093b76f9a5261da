package main

import (
	"errors"
	"fmt"

	"github.com/dhamidi/luaref/codebase"
	"github.com/dhamidi/luaref/luaref"
	"github.com/spf13/cobra"
)

func newLSPCmd(source *sourceOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && source.input == "" {
				return errors.New("--watch needs --input")
			}

			lib, overrides, err := source.loadLibrary(cmd.Context())
			if err != nil {
				return err
			}

			server := codebase.NewLSPServer(version, lib)
			if watch {
				watcher, err := codebase.NewSnapshotWatcher(server.Codebase(), source.input, func(path string) (*luaref.Library, error) {
					return source.loadFrom(cmd.Context(), path, overrides)
				})
				if err != nil {
					return fmt.Errorf("watch %s: %w", source.input, err)
				}
				watcher.Start()
				defer watcher.Stop()
			}
			return server.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload the library when the --input file changes")

	return cmd
}
