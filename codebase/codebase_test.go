package codebase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dhamidi/luaref/luaref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(path string) (*luaref.Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := luaref.ParseDocument(f)
	if err != nil {
		return nil, err
	}
	return luaref.Load(doc, nil)
}

func newCodebase(t *testing.T) *Codebase {
	t.Helper()
	lib, err := loadFixture("../luaref/testdata/reference.html")
	require.NoError(t, err)
	return New(lib)
}

func labels(items []CompletionItem) []string {
	var result []string
	for _, item := range items {
		result = append(result, item.Label)
	}
	return result
}

// complete opens a one-line script and completes at the end of it.
func complete(t *testing.T, c *Codebase, script string) []CompletionItem {
	t.Helper()
	path := "/tmp/luaref_test/script.lua"
	c.UpdateFile(path, []byte("local x = 1\n"+script+"\n"))
	trigger := findTriggerPosition(c.GetFile(path).Content, 2, len(script))
	require.GreaterOrEqual(t, trigger, 0)
	return c.CompletionsAtPoint(path, 2, trigger)
}

func TestCompletionsAtPoint(t *testing.T) {
	c := newCodebase(t)

	t.Run("namespace members", func(t *testing.T) {
		items := complete(t, c, "ARDOUR.")
		assert.Equal(t, []string{"Foo", "Opaque", "Route", "version"}, labels(items))

		version := items[3]
		assert.Equal(t, CompletionKindFunction, version.Kind)
		assert.Equal(t, "function ARDOUR.version(): string", version.Detail)
		assert.Equal(t, "version()", version.InsertText)
	})

	t.Run("class members", func(t *testing.T) {
		items := complete(t, c, "ARDOUR.Foo.")
		assert.Equal(t, []string{"Large", "Mode", "Small", "x"}, labels(items))

		kinds := map[string]CompletionKind{}
		for _, item := range items {
			kinds[item.Label] = item.Kind
		}
		assert.Equal(t, CompletionKindEnum, kinds["Mode"])
		assert.Equal(t, CompletionKindConstant, kinds["Large"])
		assert.Equal(t, CompletionKindField, kinds["x"])
	})

	t.Run("methods", func(t *testing.T) {
		items := complete(t, c, "ARDOUR.Foo:")
		assert.Equal(t, []string{"bar", "route_by_name", "set_range"}, labels(items))

		bar := items[0]
		assert.Equal(t, CompletionKindMethod, bar.Kind)
		assert.Equal(t, "function ARDOUR.Foo:bar(end_: number): boolean", bar.Detail)
		assert.Equal(t, "bar(${1:end_})", bar.InsertText)
		assert.Equal(t, "Set the bar.", bar.Documentation)
	})

	t.Run("global alias", func(t *testing.T) {
		items := complete(t, c, "local n = Session:")
		assert.Equal(t, []string{"name"}, labels(items))
	})

	t.Run("namespace has no methods", func(t *testing.T) {
		assert.Empty(t, complete(t, c, "ARDOUR:"))
	})

	t.Run("unknown prefix", func(t *testing.T) {
		assert.Empty(t, complete(t, c, "Nope."))
	})
}

func TestCompletionsAtPoint_BaseClassMethods(t *testing.T) {
	lib, err := luaref.Resolve([]*luaref.ClassModel{
		{Name: "A.Base", Kind: luaref.ClassKindClass, Functions: []luaref.FunctionModel{
			{Name: "name", ReturnType: "std::string"},
			{Name: "shared", ReturnType: "void"},
		}},
		{Name: "A.Derived", Kind: luaref.ClassKindClass, BaseClass: "A.Base", Functions: []luaref.FunctionModel{
			{Name: "A.Derived", IsConstructor: true},
			{Name: "shared", ReturnType: "void"},
		}},
	}, nil)
	require.NoError(t, err)

	items := complete(t, New(lib), "A.Derived:")
	assert.Equal(t, []string{"shared", "name"}, labels(items))
	assert.Equal(t, "function A.Derived:shared()", items[0].Detail)
}

func TestHover(t *testing.T) {
	c := newCodebase(t)
	path := "/tmp/luaref_test/hover.lua"
	line := "local ok = ARDOUR.Foo:bar(1) + ARDOUR.Foo.x"
	c.UpdateFile(path, []byte(line))

	t.Run("function", func(t *testing.T) {
		text := c.Hover(path, 1, strings.Index(line, "bar")+1)
		assert.Contains(t, text, "function ARDOUR.Foo:bar(end_: number): boolean")
		assert.Contains(t, text, "Set the bar.")
		assert.Contains(t, text, "`end_`: last bar")
		assert.Contains(t, text, "Returns true on success")
	})

	t.Run("class", func(t *testing.T) {
		text := c.Hover(path, 1, strings.Index(line, "Foo"))
		assert.Contains(t, text, "---@class ARDOUR.Foo : ARDOUR.Base")
		assert.Contains(t, text, "A foo keeps track of bars.")
	})

	t.Run("field", func(t *testing.T) {
		text := c.Hover(path, 1, len(line)-1)
		assert.Contains(t, text, "ARDOUR.Foo.x: number")
		assert.Contains(t, text, "Horizontal position.")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Empty(t, c.Hover(path, 1, 1))
		assert.Empty(t, c.Hover(path, 3, 0))
		assert.Empty(t, c.Hover("/missing.lua", 1, 0))
	})
}

func TestFindTriggerPosition(t *testing.T) {
	content := []byte("x = ARDOUR.Foo:ba\ny = (")

	assert.Equal(t, 14, findTriggerPosition(content, 1, 17))
	assert.Equal(t, 10, findTriggerPosition(content, 1, 14))
	assert.Equal(t, -1, findTriggerPosition(content, 2, 5))
	assert.Equal(t, -1, findTriggerPosition(content, 3, 0))
}

func TestUriToPath(t *testing.T) {
	path, err := uriToPath("file:///home/user/scripts/a%20b.lua")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/scripts/a b.lua", path)

	path, err = uriToPath("untitled:1")
	require.NoError(t, err)
	assert.Equal(t, "untitled:1", path)
}

func TestSnapshotWatcher(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "reference.html")
	data, err := os.ReadFile("../luaref/testdata/reference.html")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(snapshot, data, 0644))

	c := New(nil)
	w, err := NewSnapshotWatcher(c, snapshot, loadFixture)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.False(t, w.scan(), "unchanged snapshot is not reloaded")
	assert.Nil(t, c.Library())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(snapshot, later, later))
	assert.True(t, w.scan())
	require.NotNil(t, c.Library())
	assert.NotNil(t, c.Library().Class("ARDOUR.Foo"))

	failing, err := NewSnapshotWatcher(c, snapshot, func(string) (*luaref.Library, error) {
		return nil, errors.New("broken")
	})
	require.NoError(t, err)
	defer failing.watcher.Close()

	failing.modTime = time.Time{}
	assert.False(t, failing.scan())
	assert.NotNil(t, c.Library(), "failed reload keeps the previous library")
}

func TestSnapshotWatcher_Events(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "reference.html")
	require.NoError(t, os.WriteFile(snapshot, []byte("<html></html>"), 0644))

	c := New(nil)
	w, err := NewSnapshotWatcher(c, snapshot, loadFixture)
	require.NoError(t, err)
	w.modTime = time.Time{}
	w.Start()
	defer w.Stop()

	data, err := os.ReadFile("../luaref/testdata/reference.html")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(snapshot, data, 0644))

	assert.Eventually(t, func() bool {
		return c.Library() != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestNewSnapshotWatcher_MissingDirectory(t *testing.T) {
	_, err := NewSnapshotWatcher(New(nil), filepath.Join(t.TempDir(), "nope", "reference.html"), loadFixture)
	assert.Error(t, err)
}
