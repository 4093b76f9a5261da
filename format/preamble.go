package format

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
)

//go:embed license.txt
var DefaultLicense string

// WritePreamble writes the license block and the provenance comment that
// head every generated stub file.
func WritePreamble(w io.Writer, license, sourceURL string) error {
	_, err := fmt.Fprintf(w,
		"--[[\n\n%s\n--]]\n\n-- This is an AUTOMATICALLY generated file by web-scraping\n-- %s\n\n",
		strings.TrimRight(license, "\n"), sourceURL)
	return err
}
