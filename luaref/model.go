// Package luaref extracts the Lua binding reference of Ardour from its HTML
// class reference and resolves it into a linked class/enum hierarchy.
package luaref

import (
	"errors"
	"strings"
)

// ErrStructure is wrapped by every error caused by markup that no longer
// matches the layout of the reference page.
var ErrStructure = errors.New("unexpected reference markup")

type ClassKind string

const (
	ClassKindNamespace    ClassKind = "namespace"
	ClassKindClass        ClassKind = "class"
	ClassKindPointerClass ClassKind = "pointerclass"
	ClassKindOpaqueObject ClassKind = "opaque"
	ClassKindArray        ClassKind = "array"
)

// classKinds lists the kinds in marker detection order.
var classKinds = []ClassKind{
	ClassKindNamespace,
	ClassKindClass,
	ClassKindPointerClass,
	ClassKindOpaqueObject,
	ClassKindArray,
}

// Marker returns the CSS class that tags a definition heading of this kind.
func (k ClassKind) Marker() string {
	if k == ClassKindNamespace {
		return "freeclass"
	}
	return string(k)
}

type ClassModel struct {
	Name      string
	Kind      ClassKind
	BaseClass string
	Fields    []FieldModel
	Functions []FunctionModel
	Doc       string

	// Parent is the class whose name is this class's namespace. It is set by
	// Resolve and never owns the child.
	Parent        *ClassModel
	NestedClasses []*ClassModel
	NestedEnums   []*EnumModel
}

func (c *ClassModel) IsNamespace() bool {
	return c.Kind == ClassKindNamespace
}

// SimpleName is the last dotted segment of the name.
func (c *ClassModel) SimpleName() string {
	return c.Name[strings.LastIndex(c.Name, ".")+1:]
}

// FindFunction returns the first function with the given name.
func (c *ClassModel) FindFunction(name string) *FunctionModel {
	for i := range c.Functions {
		if c.Functions[i].Name == name {
			return &c.Functions[i]
		}
	}
	return nil
}

type EnumModel struct {
	Type   string
	Values []string
	Parent *ClassModel
}

type FieldModel struct {
	// Name is empty for parameters the reference leaves unnamed.
	Name string
	Type string
	Doc  string
}

type FunctionModel struct {
	Name          string
	ReturnType    string
	IsConstructor bool
	Arguments     []FieldModel
	Doc           string
	ReturnDoc     string
}

// ArgumentTypes returns the raw source types of the arguments in order.
func (f FunctionModel) ArgumentTypes() []string {
	types := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		types[i] = a.Type
	}
	return types
}

// SameSignature reports whether two functions share name, return type and
// argument types. Docs and parameter names are not compared.
func (f FunctionModel) SameSignature(other FunctionModel) bool {
	if f.Name != other.Name || f.IsConstructor != other.IsConstructor {
		return false
	}
	if !f.IsConstructor && f.ReturnType != other.ReturnType {
		return false
	}
	if len(f.Arguments) != len(other.Arguments) {
		return false
	}
	for i := range f.Arguments {
		if f.Arguments[i].Type != other.Arguments[i].Type {
			return false
		}
	}
	return true
}

// QualifiedName is the name a function is declared under in Lua: the class
// itself for constructors, Class.fn for namespaces, Class:fn for instances and
// the bare name without an owner.
func QualifiedName(owner *ClassModel, function string, constructor bool) (string, error) {
	if constructor {
		if owner == nil || owner.IsNamespace() {
			return "", errorf("constructor %s outside an instance class", function)
		}
		return owner.Name, nil
	}
	if owner == nil {
		return function, nil
	}
	if owner.IsNamespace() {
		return owner.Name + "." + function, nil
	}
	return owner.Name + ":" + function, nil
}

// Namespace returns the dotted name without its last segment, or "" when the
// name has no dot.
func Namespace(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return ""
	}
	return name[:idx]
}
