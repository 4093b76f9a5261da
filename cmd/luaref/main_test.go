package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/luaref/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../luaref/testdata/reference.html"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(fetch.EnvURL, "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRoot_WrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{
		{"--input", fixture},
		{"--input", fixture, "a.lua", "b.lua"},
	} {
		dir := t.TempDir()
		t.Chdir(dir)

		out, err := run(t, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Please, specify output file")
		assert.Contains(t, out, "Usage:")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "nothing is written")
	}
}

func TestRoot_Generate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "ardour.lua")

	_, err := run(t, "--input", fixture, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "--[[\n\nMIT License\n"), "license header first")
	assert.Contains(t, text, "\n--]]\n\n-- This is an AUTOMATICALLY generated file by web-scraping\n-- "+fetch.DefaultURL+"\n\n---@class ARDOUR\nARDOUR = {\n")
	assert.Contains(t, text, "function ARDOUR.Foo:bar(end_) end\n")
	assert.Contains(t, text, "---@class Session\nSession = {}\n")
}

func TestRoot_GenerateWithOptions(t *testing.T) {
	dir := t.TempDir()
	license := writeFile(t, dir, "LICENSE", "Custom terms.\n")
	classDocs := writeFile(t, dir, "classes.yaml", "ARDOUR.Foo: Written by hand.\n")
	functionDocs := writeFile(t, dir, "functions.yaml", strings.Join([]string{
		`"ARDOUR.Foo:bar": Beware.`,
		`"ARDOUR.Foo:route_by_name:0": "name:the route name"`,
	}, "\n"))
	output := filepath.Join(dir, "ardour.lua")

	_, err := run(t,
		"--input", fixture,
		"--url", "https://example.org/ref/",
		"--license", license,
		"--class-docs", classDocs,
		"--function-docs", functionDocs,
		output,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "--[[\n\nCustom terms.\n--]]\n"))
	assert.Contains(t, text, "-- https://example.org/ref/\n")
	assert.Contains(t, text, "--- User comments:\n---Written by hand.\n---@class ARDOUR.Foo : ARDOUR.Base\n")
	assert.Contains(t, text, "--- User comments:\n---Beware.\n")
	assert.Contains(t, text, "---@param name string @(C type: std::string) the route name\n")
	assert.Contains(t, text, "function ARDOUR.Foo:route_by_name(name, session2) end\n")
}

func TestRoot_GenerateErrors(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "ardour.lua")

	t.Run("missing input", func(t *testing.T) {
		_, err := run(t, "--input", filepath.Join(dir, "missing.html"), output)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unexpected markup", func(t *testing.T) {
		page := writeFile(t, dir, "empty.html", "<html><body><p>moved</p></body></html>")
		_, err := run(t, "--input", page, output)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extract reference")
	})

	t.Run("broken overrides", func(t *testing.T) {
		docs := writeFile(t, dir, "broken.yaml", "- not\n- a map\n")
		_, err := run(t, "--input", fixture, "--class-docs", docs, output)
		assert.Error(t, err)
	})

	_, err := os.Stat(output)
	assert.ErrorIs(t, err, os.ErrNotExist, "failed runs write nothing")
}

func TestDump(t *testing.T) {
	t.Run("line", func(t *testing.T) {
		out, err := run(t, "--input", fixture, "dump")
		require.NoError(t, err)
		assert.Contains(t, out, "enum\tARDOUR.Foo.Mode\tA,B\n")
		assert.Contains(t, out, "class\tARDOUR.Foo\tARDOUR.Base\n")
		assert.Contains(t, out, "function\tARDOUR.Foo:bar\tbool\tint end_\n")
		assert.Contains(t, out, "function\tARDOUR.Route\tconstructor\t-\n")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "--input", fixture, "dump", "--format", "json")
		require.NoError(t, err)

		var data struct {
			GlobalRoots []string `json:"globalRoots"`
			Classes     []struct {
				Name   string `json:"name"`
				Kind   string `json:"kind"`
				Parent string `json:"parent"`
			} `json:"classes"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &data))
		require.Len(t, data.Classes, 5)
		assert.Equal(t, "ARDOUR", data.Classes[0].Name)
		assert.Equal(t, "namespace", data.Classes[0].Kind)
		assert.Equal(t, "ARDOUR", data.Classes[2].Parent)
		assert.Contains(t, data.GlobalRoots, "ARDOUR.Foo")
	})

	t.Run("emmylua", func(t *testing.T) {
		out, err := run(t, "--input", fixture, "dump", "-f", "emmylua")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "---@class ARDOUR\n"))
	})

	t.Run("filter", func(t *testing.T) {
		out, err := run(t, "--input", fixture, "dump", "--filter", "ARDOUR.*")
		require.NoError(t, err)
		assert.Contains(t, out, "class\tARDOUR.Foo\tARDOUR.Base\n")
		assert.Contains(t, out, "pointerclass\tARDOUR.Route\t-\n")
		assert.NotContains(t, out, "namespace\tARDOUR\t")
		assert.NotContains(t, out, "\tSession\t")
		assert.NotContains(t, out, "ARDOUR.Foo.Mode", "* does not cross a dot")
	})

	t.Run("bad filter", func(t *testing.T) {
		_, err := run(t, "--input", fixture, "dump", "--filter", "[")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compile filter")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "--input", fixture, "dump", "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format: xml")
	})
}

func TestLSP_WatchNeedsInput(t *testing.T) {
	_, err := run(t, "lsp", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs --input")
}
