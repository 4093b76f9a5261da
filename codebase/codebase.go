// Package codebase serves editor features for Lua scripts against a resolved
// Lua binding reference.
package codebase

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dhamidi/luaref/format"
	"github.com/dhamidi/luaref/luaref"
)

// Codebase holds the open Lua documents and the library they are completed
// against.
type Codebase struct {
	mu    sync.RWMutex
	lib   *luaref.Library
	files map[string]*FileInfo
}

type FileInfo struct {
	Path    string
	Content []byte
}

func New(lib *luaref.Library) *Codebase {
	return &Codebase{
		lib:   lib,
		files: make(map[string]*FileInfo),
	}
}

func (c *Codebase) Library() *luaref.Library {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lib
}

// SetLibrary swaps the library, e.g. after the reference snapshot changed.
func (c *Codebase) SetLibrary(lib *luaref.Library) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lib = lib
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

func (c *Codebase) UpdateFile(path string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = &FileInfo{Path: path, Content: content}
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

type CompletionKind int

const (
	CompletionKindMethod CompletionKind = iota
	CompletionKindFunction
	CompletionKindField
	CompletionKindClass
	CompletionKindEnum
	CompletionKindConstant
)

type CompletionItem struct {
	Label         string
	Kind          CompletionKind
	Detail        string
	Documentation string
	InsertText    string
}

// CompletionsAtPoint lists the members reachable from the qualified name
// that ends right before the trigger character at column (zero-based) of
// line (one-based). After ":" only instance methods are offered, after "."
// nested classes, enums, constants, fields and namespace functions.
func (c *Codebase) CompletionsAtPoint(path string, line, column int) []CompletionItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil || c.lib == nil {
		return nil
	}
	lineContent, ok := lineAt(f.Content, line)
	if !ok || column < 0 || column >= len(lineContent) {
		return nil
	}

	trigger := lineContent[column]
	prefix := qualifiedNameBefore(lineContent, column)
	if prefix == "" {
		return nil
	}

	switch trigger {
	case ':':
		return c.methodCompletions(prefix)
	case '.':
		return c.memberCompletions(prefix)
	}
	return nil
}

func (c *Codebase) methodCompletions(prefix string) []CompletionItem {
	class := c.lib.Class(prefix)
	if class == nil || class.IsNamespace() {
		return nil
	}

	var items []CompletionItem
	seen := make(map[string]bool)
	for _, cls := range c.classChain(class) {
		for _, fn := range cls.Functions {
			if fn.IsConstructor || seen[fn.Name] {
				continue
			}
			seen[fn.Name] = true
			items = append(items, functionCompletion(cls, fn, CompletionKindMethod))
		}
	}
	return items
}

func (c *Codebase) memberCompletions(prefix string) []CompletionItem {
	var items []CompletionItem

	for _, cls := range c.lib.Classes {
		if luaref.Namespace(cls.Name) == prefix {
			items = append(items, CompletionItem{
				Label:         cls.SimpleName(),
				Kind:          CompletionKindClass,
				Detail:        string(cls.Kind),
				Documentation: cls.Doc,
				InsertText:    cls.SimpleName(),
			})
		}
	}

	for _, enum := range c.lib.Enums {
		if luaref.Namespace(enum.Type) == prefix && c.lib.Class(enum.Type) == nil {
			items = append(items, CompletionItem{
				Label:      enum.Type[len(prefix)+1:],
				Kind:       CompletionKindEnum,
				Detail:     "enum",
				InsertText: enum.Type[len(prefix)+1:],
			})
		}
		for _, v := range enum.Values {
			if luaref.Namespace(v) == prefix {
				items = append(items, CompletionItem{
					Label:      v[len(prefix)+1:],
					Kind:       CompletionKindConstant,
					Detail:     enum.Type,
					InsertText: v[len(prefix)+1:],
				})
			}
		}
	}

	if class := c.lib.Class(prefix); class != nil {
		for _, f := range class.Fields {
			luaType, _ := luaref.MapType(f.Type)
			items = append(items, CompletionItem{
				Label:         f.Name,
				Kind:          CompletionKindField,
				Detail:        luaType,
				Documentation: f.Doc,
				InsertText:    f.Name,
			})
		}
		if class.IsNamespace() {
			for _, fn := range class.Functions {
				items = append(items, functionCompletion(class, fn, CompletionKindFunction))
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Label < items[j].Label
	})
	return items
}

// classChain returns class followed by its known base classes.
func (c *Codebase) classChain(class *luaref.ClassModel) []*luaref.ClassModel {
	chain := []*luaref.ClassModel{class}
	seen := map[string]bool{class.Name: true}
	for base := c.lib.Class(class.BaseClass); base != nil && !seen[base.Name]; base = c.lib.Class(base.BaseClass) {
		seen[base.Name] = true
		chain = append(chain, base)
	}
	return chain
}

// Hover returns markdown documentation for the qualified name under the
// cursor, or "" when the name is unknown.
func (c *Codebase) Hover(path string, line, column int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.files[path]
	if f == nil || c.lib == nil {
		return ""
	}
	lineContent, ok := lineAt(f.Content, line)
	if !ok {
		return ""
	}
	word := qualifiedNameAt(lineContent, column)
	if word == "" {
		return ""
	}

	class, member := c.lib.Lookup(word)
	if class == nil {
		return ""
	}
	if member == "" {
		return classHover(class)
	}
	for _, cls := range c.classChain(class) {
		if fn := cls.FindFunction(member); fn != nil {
			return functionHover(cls, *fn)
		}
		for _, field := range cls.Fields {
			if field.Name == member {
				return fieldHover(cls, field)
			}
		}
	}
	return ""
}

func classHover(class *luaref.ClassModel) string {
	var sb strings.Builder
	sb.WriteString("```lua\n---@class " + class.Name)
	if class.BaseClass != "" {
		sb.WriteString(" : " + class.BaseClass)
	}
	sb.WriteString("\n```\n")
	if class.Doc != "" {
		sb.WriteString("\n" + class.Doc + "\n")
	}
	return sb.String()
}

func functionHover(class *luaref.ClassModel, fn luaref.FunctionModel) string {
	var sb strings.Builder
	sb.WriteString("```lua\n" + formatFunctionSignature(class, fn) + "\n```\n")
	if fn.Doc != "" {
		sb.WriteString("\n" + fn.Doc + "\n")
	}
	names := format.ParamNames(fn)
	for i, arg := range fn.Arguments {
		if arg.Doc != "" {
			sb.WriteString("\n`" + names[i] + "`: " + arg.Doc + "\n")
		}
	}
	if fn.ReturnDoc != "" {
		sb.WriteString("\nReturns " + fn.ReturnDoc + "\n")
	}
	return sb.String()
}

func fieldHover(class *luaref.ClassModel, field luaref.FieldModel) string {
	luaType, _ := luaref.MapType(field.Type)
	text := "```lua\n" + class.Name + "." + field.Name + ": " + luaType + "\n```\n"
	if field.Doc != "" {
		text += "\n" + field.Doc + "\n"
	}
	return text
}

func functionCompletion(class *luaref.ClassModel, fn luaref.FunctionModel, kind CompletionKind) CompletionItem {
	return CompletionItem{
		Label:         fn.Name,
		Kind:          kind,
		Detail:        formatFunctionSignature(class, fn),
		Documentation: fn.Doc,
		InsertText:    formatFunctionInsert(fn),
	}
}

func formatFunctionSignature(class *luaref.ClassModel, fn luaref.FunctionModel) string {
	fullName, err := luaref.QualifiedName(class, fn.Name, fn.IsConstructor)
	if err != nil {
		fullName = fn.Name
	}
	names := format.ParamNames(fn)
	var params []string
	for i, arg := range fn.Arguments {
		luaType, _ := luaref.MapType(arg.Type)
		params = append(params, names[i]+": "+luaType)
	}
	signature := "function " + fullName + "(" + strings.Join(params, ", ") + ")"

	switch {
	case fn.IsConstructor:
		signature += ": " + class.Name
	case fn.ReturnType != "void" && fn.ReturnType != "...":
		luaType, _ := luaref.MapType(fn.ReturnType)
		signature += ": " + luaType
	}
	return signature
}

func formatFunctionInsert(fn luaref.FunctionModel) string {
	if len(fn.Arguments) == 0 {
		return fn.Name + "()"
	}
	var placeholders []string
	for i, name := range format.ParamNames(fn) {
		placeholders = append(placeholders, "${"+strconv.Itoa(i+1)+":"+name+"}")
	}
	return fn.Name + "(" + strings.Join(placeholders, ", ") + ")"
}

func lineAt(content []byte, line int) (string, bool) {
	lines := strings.Split(string(content), "\n")
	if line <= 0 || line > len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[line-1], "\r"), true
}

func isNameByte(b byte) bool {
	return b == '_' || b == '.' || b == ':' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// qualifiedNameBefore returns the dotted name ending right before column.
func qualifiedNameBefore(line string, column int) string {
	start := column
	for start > 0 && isNameByte(line[start-1]) {
		start--
	}
	return strings.Trim(line[start:column], ".:")
}

// qualifiedNameAt returns the dotted name around column, up to the end of
// the segment under the cursor.
func qualifiedNameAt(line string, column int) string {
	if column < 0 || column > len(line) {
		return ""
	}
	end := column
	for end < len(line) && isNameByte(line[end]) && line[end] != '.' && line[end] != ':' {
		end++
	}
	return qualifiedNameBefore(line, end)
}
