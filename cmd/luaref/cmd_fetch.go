package main

import (
	"github.com/dhamidi/luaref/fetch"
	"github.com/spf13/cobra"
)

func newFetchCmd(source *sourceOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <file>",
		Short: "Save the class reference page for offline use with --input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := fetch.NewFetcher(source.url)
			if err := fetcher.Download(cmd.Context(), args[0]); err != nil {
				return err
			}
			log.Infof("saved %s to %s", fetcher.URL, args[0])
			return nil
		},
	}
}
