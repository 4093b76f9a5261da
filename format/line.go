package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/luaref/luaref"
)

// LineEncoder writes one tab-separated record per class, enum, field and
// function, for grepping and diffing scrapes.
type LineEncoder struct {
	w   io.Writer
	lib *luaref.Library
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(lib *luaref.Library) error {
	e.lib = lib
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder

	for _, enum := range e.lib.Enums {
		fmt.Fprintf(&sb, "enum\t%s\t%s\n", enum.Type, strings.Join(enum.Values, ","))
	}

	for _, c := range e.lib.Classes {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", c.Kind, c.Name, orDash(c.BaseClass))

		for _, f := range c.Fields {
			fmt.Fprintf(&sb, "field\t%s\t%s\n", f.Name, f.Type)
		}

		for _, fn := range c.Functions {
			fullName, err := luaref.QualifiedName(c, fn.Name, fn.IsConstructor)
			if err != nil {
				return nil, err
			}
			ret := fn.ReturnType
			if fn.IsConstructor {
				ret = "constructor"
			}
			fmt.Fprintf(&sb, "function\t%s\t%s\t%s\n",
				fullName,
				orDash(ret),
				e.argumentsStr(fn.Arguments),
			)
		}
	}

	return []byte(sb.String()), nil
}

func (e *LineEncoder) argumentsStr(args []luaref.FieldModel) string {
	if len(args) == 0 {
		return "-"
	}
	var parts []string
	for _, a := range args {
		if a.Name != "" {
			parts = append(parts, a.Type+" "+a.Name)
		} else {
			parts = append(parts, a.Type)
		}
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
