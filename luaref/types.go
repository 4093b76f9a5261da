package luaref

import (
	"strings"
	"unicode"
)

// GlobalVariables are the entry points Ardour exposes as Lua globals.
var GlobalVariables = map[string]string{
	"ARDOUR.Session":  "Session",
	"ArdourUI.Editor": "Editor",
}

// IsGlobalVariable reports whether name is one of the aliased globals.
func IsGlobalVariable(name string) bool {
	for _, global := range GlobalVariables {
		if global == name {
			return true
		}
	}
	return false
}

const (
	ConstructorComment = "(This is a constructor)"
	iteratorComment    = "(LuaIter - an iterator for the collection)"
	tableComment       = "(LuaTable)"
)

type typeRule struct {
	match   func(token string) bool
	luaType string
}

func oneOf(tokens ...string) func(string) bool {
	return func(token string) bool {
		for _, t := range tokens {
			if token == t {
				return true
			}
		}
		return false
	}
}

func tableType(name string) func(string) bool {
	return func(token string) bool {
		return token == name || strings.HasPrefix(token, name+" {")
	}
}

// typeRules is evaluated in order; the first match wins.
var typeRules = []typeRule{
	{oneOf("bool", "bool&"), "boolean"},
	{oneOf("std::string", "char*", "unsigned char*", "char", "unsigned char"), "string"},
	{oneOf(
		"short", "short&", "unsigned short", "unsigned short&",
		"int", "int&", "unsigned int", "unsigned int&",
		"long", "long&", "unsigned long", "unsigned long&",
		"float", "float&", "double", "double&",
	), "number"},
	{func(token string) bool {
		return token == "" || token == "--lua--" || unicode.IsDigit(rune(token[0]))
	}, "unknown"},
	{oneOf("void*"), "userdata"},
	{oneOf("Lua-Function", "LuaIter"), "function"},
	{tableType("LuaTable"), "table"},
	{tableType("LuaMetaTable"), "table"},
}

// MapType converts a C++ type token of the reference into an EmmyLua type
// and the comment that explains lossy conversions.
func MapType(token string) (luaType, comment string) {
	luaType = luaTypeOf(strings.TrimSpace(token))
	return luaType, TypeComment(token, luaType)
}

func luaTypeOf(token string) string {
	for _, rule := range typeRules {
		if rule.match(token) {
			return rule.luaType
		}
	}
	return remapGlobal(normalizeSeparators(token))
}

// TypeComment describes how luaType was derived from token.
func TypeComment(token, luaType string) string {
	switch {
	case token == "LuaIter":
		return iteratorComment
	case token == "LuaTable":
		return tableComment
	case token == luaType:
		return ""
	default:
		return "(C type: " + token + ")"
	}
}

func normalizeSeparators(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "::", "."), ":", ".")
}

func remapGlobal(name string) string {
	if global, ok := GlobalVariables[name]; ok {
		return global
	}
	return name
}
