package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/dhamidi/luaref/luaref"
	"github.com/iancoleman/strcase"
)

// EmmyLuaEncoder writes a library as EmmyLua annotations: global namespace
// tables first, then enums in discovery order, then classes with their
// fields and function stubs.
type EmmyLuaEncoder struct {
	w         io.Writer
	lib       *luaref.Library
	overrides *luaref.Overrides
}

// NewEmmyLuaEncoder returns an encoder that merges the class and function
// docs of overrides into the output. overrides may be nil.
func NewEmmyLuaEncoder(w io.Writer, overrides *luaref.Overrides) *EmmyLuaEncoder {
	return &EmmyLuaEncoder{w: w, overrides: overrides}
}

func (e *EmmyLuaEncoder) Encode(lib *luaref.Library) error {
	e.lib = lib
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *EmmyLuaEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	lib := e.lib

	writeGlobals(&sb, nil, buildGlobalTree(lib.GlobalRoots()))

	for _, enum := range lib.Enums {
		if lib.Class(enum.Type) == nil {
			writeEnum(&sb, enum)
		} else {
			writeConstants(&sb, enum)
		}
	}

	for _, class := range lib.Classes {
		if err := e.writeClass(&sb, class); err != nil {
			return nil, err
		}
	}

	return []byte(sb.String()), nil
}

type globalTree map[string]globalTree

func buildGlobalTree(roots []string) globalTree {
	tree := globalTree{}
	for _, root := range roots {
		node := tree
		for _, segment := range strings.Split(root, ".") {
			child, ok := node[segment]
			if !ok {
				child = globalTree{}
				node[segment] = child
			}
			node = child
		}
	}
	return tree
}

func writeGlobals(sb *strings.Builder, prefix []string, tree globalTree) {
	indent := strings.Repeat("\t", len(prefix))

	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		path := append(append([]string(nil), prefix...), key)
		fmt.Fprintf(sb, "%s---@class %s\n", indent, strings.Join(path, "."))
		fmt.Fprintf(sb, "%s%s = {\n", indent, key)
		writeGlobals(sb, path, tree[key])
		sb.WriteString(indent + "}")
		if len(prefix) > 0 && i < len(keys)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
}

func writeEnum(sb *strings.Builder, enum *luaref.EnumModel) {
	sb.WriteString("---This is an enum which can take one of the following values:\n")
	for _, v := range enum.Values {
		fmt.Fprintf(sb, "--- * **%s**\n", v)
	}
	for _, v := range enum.Values {
		fmt.Fprintf(sb, "---@see %s\n", v)
	}
	fmt.Fprintf(sb, "---@class %s\n", enum.Type)
	fmt.Fprintf(sb, "%s = {}\n\n", enum.Type)

	for _, v := range enum.Values {
		sb.WriteString("---This is an enum value of the following enum:\n")
		fmt.Fprintf(sb, "--- **%s**\n", enum.Type)
		fmt.Fprintf(sb, "---@see %s\n", enum.Type)
		fmt.Fprintf(sb, "---@type %s\n", enum.Type)
		fmt.Fprintf(sb, "%s = {}\n\n", v)
	}
}

// writeConstants handles enums named after a class; the class block
// provides the type declaration.
func writeConstants(sb *strings.Builder, enum *luaref.EnumModel) {
	for _, v := range enum.Values {
		sb.WriteString("---This is a constant/enum.\n")
		fmt.Fprintf(sb, "---@see %s\n", enum.Type)
		fmt.Fprintf(sb, "%s = {}\n\n", v)
	}
}

func (e *EmmyLuaEncoder) writeClass(sb *strings.Builder, class *luaref.ClassModel) error {
	extra, ok := e.overrides.ClassDoc(class.Name)
	writeDoc(sb, class.Doc, extra, ok)

	sb.WriteString("---@class " + class.Name)
	if class.BaseClass != "" {
		sb.WriteString(" : " + class.BaseClass)
	}
	sb.WriteString("\n")

	for _, f := range class.Fields {
		luaType, comment := luaref.MapType(f.Type)
		fmt.Fprintf(sb, "---@field %s %s%s\n", f.Name, luaType, annotationComment(joinText(comment, oneLine(f.Doc))))
	}

	if !luaref.IsGlobalVariable(class.Name) && !strings.Contains(class.Name, ".") {
		sb.WriteString("local ")
	}
	sb.WriteString(class.Name + " = {}\n")

	for _, fn := range class.Functions {
		if err := e.writeFunction(sb, class, fn); err != nil {
			return err
		}
	}

	sb.WriteString("\n")
	return nil
}

func (e *EmmyLuaEncoder) writeFunction(sb *strings.Builder, class *luaref.ClassModel, fn luaref.FunctionModel) error {
	fullName, err := luaref.QualifiedName(class, fn.Name, fn.IsConstructor)
	if err != nil {
		return err
	}

	extra, ok := e.overrides.FunctionDoc(fullName)
	writeDoc(sb, fn.Doc, extra, ok)

	names := ParamNames(fn)
	for i, arg := range fn.Arguments {
		luaType, comment := luaref.MapType(arg.Type)
		fmt.Fprintf(sb, "---@param %s %s%s\n", names[i], luaType, annotationComment(joinText(comment, oneLine(arg.Doc))))
	}

	if fn.IsConstructor || (fn.ReturnType != "void" && fn.ReturnType != "...") {
		luaType, comment := class.Name, luaref.ConstructorComment
		if !fn.IsConstructor {
			luaType, comment = luaref.MapType(fn.ReturnType)
		}
		fmt.Fprintf(sb, "---@return %s%s\n", luaType, annotationComment(joinText(comment, oneLine(fn.ReturnDoc))))
	}

	fmt.Fprintf(sb, "function %s(%s) end\n\n", fullName, strings.Join(names, ", "))
	return nil
}

// ParamNames returns the Lua parameter names of fn, falling back to a name
// derived from the argument type where the reference has none.
func ParamNames(fn luaref.FunctionModel) []string {
	names := make([]string, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		names[i] = arg.Name
		if names[i] == "" {
			names[i] = FallbackParamName(arg.Type, i)
		}
	}
	return names
}

var separators = strings.NewReplacer("::", ".", ":", ".")

// FallbackParamName builds a parameter name from a type token and the
// zero-based argument index: "int" at 0 gives "int1", "ARDOUR::Route&" at 1
// gives "route2".
func FallbackParamName(token string, index int) string {
	name := strings.TrimSpace(token)
	if i := strings.IndexByte(name, '{'); i != -1 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimRight(name, "&* ")
	name = separators.Replace(name)
	name = name[strings.LastIndex(name, ".")+1:]
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	name = strcase.ToLowerCamel(name)
	if name == "" || !unicode.IsLetter(rune(name[0])) {
		name = "arg"
	}
	return name + strconv.Itoa(index+1)
}

func writeDoc(sb *strings.Builder, doc, extra string, hasExtra bool) {
	if strings.TrimSpace(doc) != "" {
		for _, line := range lines(doc) {
			sb.WriteString("---" + line + "\n")
		}
	}
	if hasExtra {
		sb.WriteString("---\n--- User comments:\n")
		for _, line := range lines(extra) {
			sb.WriteString("---" + line + "\n")
		}
	}
}

func annotationComment(comment string) string {
	if strings.TrimSpace(comment) == "" {
		return ""
	}
	return " @" + comment
}

func lines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func oneLine(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(lines(s), " ")
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
