package luaref

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Library is a resolved reference: classes linked to their namespaces and
// enums attached to their owning classes.
type Library struct {
	// Classes are ordered by name length; ties keep discovery order.
	Classes []*ClassModel
	// Enums keep discovery order.
	Enums []*EnumModel

	classes map[string]*ClassModel
}

// Class looks a class up by its dotted name.
func (l *Library) Class(name string) *ClassModel {
	return l.classes[name]
}

// RootClasses returns the classes without a parent, in resolution order.
func (l *Library) RootClasses() []*ClassModel {
	var roots []*ClassModel
	for _, c := range l.Classes {
		if c.Parent == nil {
			roots = append(roots, c)
		}
	}
	return roots
}

// GlobalRoots returns the dotted names that need a global table: the
// namespaces of every enum type and constant, the names of parentless
// namespace classes and the namespaces of other parentless classes.
func (l *Library) GlobalRoots() []string {
	var roots []string
	add := func(name string) {
		if name != "" {
			roots = append(roots, name)
		}
	}
	for _, enum := range l.Enums {
		add(Namespace(enum.Type))
		for _, v := range enum.Values {
			add(Namespace(v))
		}
	}
	for _, c := range l.RootClasses() {
		if c.IsNamespace() {
			add(c.Name)
		} else {
			add(Namespace(c.Name))
		}
	}
	return roots
}

// Resolve links classes and enums into a Library. Classes are processed
// shortest name first so a namespace is always registered before its
// members. The slices are not copied; the models are linked in place.
func Resolve(classes []*ClassModel, enums []*EnumModel) (*Library, error) {
	sorted := make([]*ClassModel, len(classes))
	copy(sorted, classes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Name) < len(sorted[j].Name)
	})

	lib := &Library{
		Classes: sorted,
		Enums:   enums,
		classes: make(map[string]*ClassModel, len(sorted)),
	}

	for _, class := range sorted {
		if parent := lib.classes[Namespace(class.Name)]; parent != nil {
			parent.NestedClasses = append(parent.NestedClasses, class)
			class.Parent = parent
		}
		if _, exists := lib.classes[class.Name]; exists {
			return nil, errorf("duplicate class %s", class.Name)
		}
		lib.classes[class.Name] = class
	}

	for _, enum := range enums {
		if parent := lib.classes[Namespace(enum.Type)]; parent != nil {
			parent.NestedEnums = append(parent.NestedEnums, enum)
			enum.Parent = parent
		}
	}

	return lib, nil
}

// Load extracts and resolves a reference page in one step.
func Load(doc *goquery.Document, overrides *Overrides) (*Library, error) {
	extraction, err := Extract(doc, overrides)
	if err != nil {
		return nil, err
	}
	return Resolve(extraction.Classes, extraction.Enums)
}

// Lookup resolves a dotted or colon-qualified member path such as
// "ARDOUR.Route:name" to its class and, when present, the member name.
func (l *Library) Lookup(path string) (*ClassModel, string) {
	if c := l.Class(path); c != nil {
		return c, ""
	}
	if idx := strings.LastIndexAny(path, ".:"); idx != -1 {
		if c := l.Class(path[:idx]); c != nil {
			return c, path[idx+1:]
		}
	}
	return nil, ""
}

// Filter returns a view of the library holding the classes and enums whose
// names satisfy keep. The models are shared, so nesting links may point
// outside the view.
func (l *Library) Filter(keep func(name string) bool) *Library {
	view := &Library{classes: make(map[string]*ClassModel)}
	for _, c := range l.Classes {
		if keep(c.Name) {
			view.Classes = append(view.Classes, c)
			view.classes[c.Name] = c
		}
	}
	for _, e := range l.Enums {
		if keep(e.Type) {
			view.Enums = append(view.Enums, e)
		}
	}
	return view
}
