package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/dhamidi/luaref/fetch"
	"github.com/dhamidi/luaref/format"
	"github.com/dhamidi/luaref/luaref"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("luaref")

// sourceOptions select the reference page and the documentation overrides.
type sourceOptions struct {
	url          string
	input        string
	classDocs    string
	functionDocs string
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.url, "url", "", "class reference URL (default $"+fetch.EnvURL+" or "+fetch.DefaultURL+")")
	flags.StringVarP(&o.input, "input", "i", "", "read a saved reference page instead of fetching")
	flags.StringVar(&o.classDocs, "class-docs", "", "YAML file with extra class documentation")
	flags.StringVar(&o.functionDocs, "function-docs", "", "YAML file with extra function documentation")
}

// sourceURL is the address named in the generated preamble.
func (o *sourceOptions) sourceURL() string {
	return fetch.NewFetcher(o.url).URL
}

func (o *sourceOptions) loadLibrary(ctx context.Context) (*luaref.Library, *luaref.Overrides, error) {
	overrides, err := luaref.LoadOverrides(o.classDocs, o.functionDocs)
	if err != nil {
		return nil, nil, err
	}

	lib, err := o.loadFrom(ctx, o.input, overrides)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("resolved %d classes and %d enums", len(lib.Classes), len(lib.Enums))
	return lib, overrides, nil
}

func (o *sourceOptions) loadFrom(ctx context.Context, input string, overrides *luaref.Overrides) (*luaref.Library, error) {
	var (
		doc *goquery.Document
		err error
	)
	if input != "" {
		doc, err = fetch.ReadFile(input)
	} else {
		doc, err = fetch.NewFetcher(o.url).Fetch(ctx)
	}
	if err != nil {
		return nil, err
	}

	lib, err := luaref.Load(doc, overrides)
	if err != nil {
		return nil, fmt.Errorf("extract reference: %w", err)
	}
	return lib, nil
}

func newRootCmd() *cobra.Command {
	var (
		source    sourceOptions
		license   string
		verbosity int
		logFile   string
	)

	cmd := &cobra.Command{
		Use:          "luaref <output-file>",
		Short:        "Generate EmmyLua annotations for Ardour's Lua bindings",
		Version:      version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				cmd.Println("Please, specify output file")
				return cmd.Usage()
			}

			licenseText := format.DefaultLicense
			if license != "" {
				data, err := os.ReadFile(license)
				if err != nil {
					return fmt.Errorf("read license: %w", err)
				}
				licenseText = string(data)
			}

			lib, overrides, err := source.loadLibrary(cmd.Context())
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := format.WritePreamble(&buf, licenseText, source.sourceURL()); err != nil {
				return err
			}
			if err := format.NewEmmyLuaEncoder(&buf, overrides).Encode(lib); err != nil {
				return fmt.Errorf("emit annotations: %w", err)
			}

			if err := os.WriteFile(args[0], buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			log.Infof("wrote %s", args[0])
			return nil
		},
	}

	source.register(cmd)
	cmd.Flags().StringVar(&license, "license", "", "license text file for the generated header")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(newDumpCmd(&source))
	cmd.AddCommand(newFetchCmd(&source))
	cmd.AddCommand(newLSPCmd(&source))

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
