package luaref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		token   string
		luaType string
		comment string
	}{
		{"bool", "boolean", "(C type: bool)"},
		{"bool&", "boolean", "(C type: bool&)"},
		{"std::string", "string", "(C type: std::string)"},
		{"char*", "string", "(C type: char*)"},
		{"unsigned char", "string", "(C type: unsigned char)"},
		{"int", "number", "(C type: int)"},
		{"unsigned long&", "number", "(C type: unsigned long&)"},
		{"double", "number", "(C type: double)"},
		{"--lua--", "unknown", "(C type: --lua--)"},
		{"4", "unknown", "(C type: 4)"},
		{"void*", "userdata", "(C type: void*)"},
		{"Lua-Function", "function", "(C type: Lua-Function)"},
		{"LuaIter", "function", "(LuaIter - an iterator for the collection)"},
		{"LuaTable", "table", "(LuaTable)"},
		{"LuaTable {Region}", "table", "(C type: LuaTable {Region})"},
		{"LuaMetaTable", "table", "(C type: LuaMetaTable)"},
		{"ARDOUR::Route", "ARDOUR.Route", "(C type: ARDOUR::Route)"},
		{"ARDOUR:Route", "ARDOUR.Route", "(C type: ARDOUR:Route)"},
		{"ARDOUR.Route", "ARDOUR.Route", ""},
		{"ARDOUR.Session", "Session", "(C type: ARDOUR.Session)"},
		{"ArdourUI::Editor", "Editor", "(C type: ArdourUI::Editor)"},
		{"void", "void", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			luaType, comment := MapType(tt.token)
			assert.Equal(t, tt.luaType, luaType)
			assert.Equal(t, tt.comment, comment)

			again, againComment := MapType(tt.token)
			assert.Equal(t, luaType, again)
			assert.Equal(t, comment, againComment)
		})
	}
}

func TestMapType_TrimsToken(t *testing.T) {
	luaType, _ := MapType("  int& ")
	assert.Equal(t, "number", luaType)
}

func TestMapType_CaseSensitive(t *testing.T) {
	luaType, _ := MapType("Bool")
	assert.Equal(t, "Bool", luaType)
}

func TestIsGlobalVariable(t *testing.T) {
	assert.True(t, IsGlobalVariable("Session"))
	assert.True(t, IsGlobalVariable("Editor"))
	assert.False(t, IsGlobalVariable("ARDOUR.Session"))
	assert.False(t, IsGlobalVariable("Route"))
}
