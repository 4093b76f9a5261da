package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/luaref/luaref"
)

type JSONEncoder struct {
	w   io.Writer
	lib *luaref.Library
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(lib *luaref.Library) error {
	e.lib = lib
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := e.buildLibraryData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonLibrary struct {
	GlobalRoots []string    `json:"globalRoots,omitempty"`
	Enums       []jsonEnum  `json:"enums,omitempty"`
	Classes     []jsonClass `json:"classes"`
}

type jsonEnum struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
	Parent string   `json:"parent,omitempty"`
}

type jsonClass struct {
	Name          string         `json:"name"`
	Kind          string         `json:"kind"`
	BaseClass     string         `json:"baseClass,omitempty"`
	Parent        string         `json:"parent,omitempty"`
	Doc           string         `json:"doc,omitempty"`
	NestedClasses []string       `json:"nestedClasses,omitempty"`
	NestedEnums   []string       `json:"nestedEnums,omitempty"`
	Fields        []jsonField    `json:"fields,omitempty"`
	Functions     []jsonFunction `json:"functions,omitempty"`
}

type jsonField struct {
	Name    string `json:"name,omitempty"`
	Type    string `json:"type"`
	LuaType string `json:"luaType"`
	Doc     string `json:"doc,omitempty"`
}

type jsonFunction struct {
	Name        string      `json:"name"`
	Constructor bool        `json:"constructor,omitempty"`
	ReturnType  string      `json:"returnType,omitempty"`
	Arguments   []jsonField `json:"arguments,omitempty"`
	Doc         string      `json:"doc,omitempty"`
	ReturnDoc   string      `json:"returnDoc,omitempty"`
}

func (e *JSONEncoder) buildLibraryData() jsonLibrary {
	lib := e.lib
	data := jsonLibrary{
		GlobalRoots: lib.GlobalRoots(),
		Classes:     make([]jsonClass, len(lib.Classes)),
	}
	for _, enum := range lib.Enums {
		data.Enums = append(data.Enums, jsonEnum{
			Type:   enum.Type,
			Values: enum.Values,
			Parent: parentName(enum.Parent),
		})
	}
	for i, c := range lib.Classes {
		data.Classes[i] = buildClass(c)
	}
	return data
}

func buildClass(c *luaref.ClassModel) jsonClass {
	data := jsonClass{
		Name:      c.Name,
		Kind:      string(c.Kind),
		BaseClass: c.BaseClass,
		Parent:    parentName(c.Parent),
		Doc:       c.Doc,
		Fields:    buildFields(c.Fields),
	}
	for _, nested := range c.NestedClasses {
		data.NestedClasses = append(data.NestedClasses, nested.Name)
	}
	for _, nested := range c.NestedEnums {
		data.NestedEnums = append(data.NestedEnums, nested.Type)
	}
	for _, fn := range c.Functions {
		data.Functions = append(data.Functions, jsonFunction{
			Name:        fn.Name,
			Constructor: fn.IsConstructor,
			ReturnType:  fn.ReturnType,
			Arguments:   buildFields(fn.Arguments),
			Doc:         fn.Doc,
			ReturnDoc:   fn.ReturnDoc,
		})
	}
	return data
}

func buildFields(fields []luaref.FieldModel) []jsonField {
	if len(fields) == 0 {
		return nil
	}
	result := make([]jsonField, len(fields))
	for i, f := range fields {
		luaType, _ := luaref.MapType(f.Type)
		result[i] = jsonField{
			Name:    f.Name,
			Type:    f.Type,
			LuaType: luaType,
			Doc:     f.Doc,
		}
	}
	return result
}

func parentName(c *luaref.ClassModel) string {
	if c == nil {
		return ""
	}
	return c.Name
}
