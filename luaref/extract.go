package luaref

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tliron/commonlog"
	"golang.org/x/net/html"
)

var log = commonlog.GetLogger("luaref.extract")

const (
	longPointerSuffix  = "<long>*"
	dataMembersHeading = "Data Members"
	enumSectionHeading = "Enum/Constants"
	paramNamePrefix    = "param-name-index-"
	paramDescrPrefix   = "param-descr-index-"
	nilPointerTitle    = "Nil Pointer Constructor"
)

// Extraction holds the entities of a reference page in discovery order,
// before any hierarchy is resolved.
type Extraction struct {
	Classes []*ClassModel
	Enums   []*EnumModel
}

// ParseDocument parses an HTML reference page.
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Extract collects classes and enums from the #luaref container of doc.
// Overrides contribute parameter names and docs; nil means none.
func Extract(doc *goquery.Document, overrides *Overrides) (*Extraction, error) {
	children := doc.Find("#luaref").Children()
	if children.Length() == 0 {
		return nil, errorf("no #luaref container")
	}

	e := &extractor{overrides: overrides}
	result := &Extraction{}

	for i := range children.Nodes {
		el := children.Eq(i)
		if goquery.NodeName(el) != "h3" || !hasKindMarker(el) {
			continue
		}
		class, err := e.class(el)
		if err != nil {
			return nil, err
		}
		result.Classes = append(result.Classes, class)
	}

	enums, err := e.enums(children)
	if err != nil {
		return nil, err
	}
	result.Enums = enums

	log.Infof("extracted %d classes and %d enums", len(result.Classes), len(result.Enums))
	return result, nil
}

type extractor struct {
	overrides *Overrides
}

func hasKindMarker(el *goquery.Selection) bool {
	_, ok := kindOf(el)
	return ok
}

func kindOf(el *goquery.Selection) (ClassKind, bool) {
	for _, kind := range classKinds {
		if el.HasClass(kind.Marker()) {
			return kind, true
		}
	}
	return "", false
}

// withinSection finds siblings up to the next class heading.
func withinSection(find Predicate) SiblingScan {
	return SiblingScan{Find: find, Stop: isTag("h3")}
}

func (e *extractor) class(el *goquery.Selection) (*ClassModel, error) {
	id, _ := el.Attr("id")
	kind, ok := kindOf(el)
	if !ok {
		return nil, errorf("%q has no class kind marker", id)
	}
	name, err := classNameFromID(id)
	if err != nil {
		return nil, err
	}

	class := &ClassModel{Name: name, Kind: kind}

	if kind != ClassKindOpaqueObject {
		if class.BaseClass, err = baseClass(el); err != nil {
			return nil, err
		}

		members, ok := withinSection(hasClass("classmembers")).First(el)
		if !ok {
			return nil, errorf("can't find class members for %s", id)
		}
		if class.Functions, err = e.functions(class, members); err != nil {
			return nil, err
		}
		if class.Fields, err = fields(members); err != nil {
			return nil, err
		}
	}

	if dox, ok := withinSection(hasClass("classdox")).First(el); ok {
		class.Doc = text(dox)
	}

	return class, nil
}

func classNameFromID(id string) (string, error) {
	if id == "" {
		return "", errorf("class heading without id")
	}
	name := idToType(strings.TrimSuffix(id, longPointerSuffix))
	return remapGlobal(name), nil
}

func idToType(id string) string {
	return normalizeSeparators(id[strings.LastIndex(id, " ")+1:])
}

func baseClass(classEl *goquery.Selection) (string, error) {
	info, ok := withinSection(hasClass("classinfo")).First(classEl)
	if !ok {
		return "", nil
	}
	texts := directText(info)
	if len(texts) != 1 {
		return "", errorf("expected a single text in classinfo, got %d", len(texts))
	}
	if texts[0] != "is-a:" {
		return "", errorf("expected 'is-a:' but was %q", texts[0])
	}
	links := info.Find("a")
	if links.Length() != 1 {
		return "", errorf("expected one base class link, got %d", links.Length())
	}
	return strings.ReplaceAll(text(links), ":", "."), nil
}

func isMemberRow(row *goquery.Selection) bool {
	cells := row.Children()
	return cells.Length() > 1 &&
		cells.Eq(0).HasClass("def") &&
		cells.Eq(1).HasClass("decl")
}

func isFunctionRow(row *goquery.Selection) bool {
	return isMemberRow(row) && row.Children().Eq(1).Children().First().HasClass("functionname")
}

func isDataMembersHeading(row *goquery.Selection) bool {
	return text(row) == dataMembersHeading
}

func fields(members *goquery.Selection) ([]FieldModel, error) {
	scan := SiblingScan{Find: isMemberRow, Start: isDataMembersHeading}

	var result []FieldModel
	for row := range scan.ScanAll(members.Find("tr")) {
		cells := row.Children()
		doc, err := memberDoc(row)
		if err != nil {
			return nil, err
		}
		result = append(result, FieldModel{
			Name: text(cells.Eq(1).Children().First()),
			Type: text(cells.Eq(0).Children().First()),
			Doc:  doc,
		})
	}
	return result, nil
}

func (e *extractor) functions(class *ClassModel, members *goquery.Selection) ([]FunctionModel, error) {
	var result []FunctionModel
	rows := members.Find("tr")
	for i := range rows.Nodes {
		row := rows.Eq(i)
		if isDataMembersHeading(row) {
			break
		}
		if !isFunctionRow(row) {
			continue
		}
		fn, err := e.function(class, row)
		if err != nil {
			return nil, err
		}
		if !hasSignature(result, fn) {
			result = append(result, fn)
		}
	}
	return result, nil
}

func hasSignature(functions []FunctionModel, fn FunctionModel) bool {
	for _, f := range functions {
		if f.SameSignature(fn) {
			return true
		}
	}
	return false
}

func (e *extractor) function(class *ClassModel, row *goquery.Selection) (FunctionModel, error) {
	cells := row.Children()
	def, decl := cells.Eq(0), cells.Eq(1)

	fn := FunctionModel{
		Name:          text(decl.Children().First()),
		IsConstructor: isConstructor(def),
	}
	if !fn.IsConstructor {
		fn.ReturnType = typeToken(def.Children().First())
	}

	fullName, err := QualifiedName(class, fn.Name, fn.IsConstructor)
	if err != nil {
		return fn, err
	}

	fn.Arguments = e.arguments(fullName, row)
	if fn.Doc, err = memberDoc(row); err != nil {
		return fn, err
	}
	if fn.ReturnDoc, err = e.returnDoc(fullName, row); err != nil {
		return fn, err
	}
	return fn, nil
}

func isConstructor(def *goquery.Selection) bool {
	title, _ := def.Attr("title")
	t := text(def)
	return title == nilPointerTitle || t == "ℵ" || t == "ℂ"
}

// typeToken reads a type from a cell: links to a class carry the class id in
// their href, anything else is plain text.
func typeToken(el *goquery.Selection) string {
	if goquery.NodeName(el) == "a" {
		if href, _ := el.Attr("href"); len(href) > 1 && href[0] == '#' {
			return idToType(href[1:])
		}
	}
	return text(el)
}

type paramInfo struct {
	name string
	doc  string
}

func (e *extractor) arguments(fullName string, row *goquery.Selection) []FieldModel {
	info := parameterInfo(row)

	var types []string
	row.Children().Eq(1).Find(".functionargs > a, .functionargs > span").Each(func(_ int, el *goquery.Selection) {
		// a few signatures list several types in one element
		for _, t := range strings.Split(typeToken(el), ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	})

	args := make([]FieldModel, len(types))
	for i, t := range types {
		args[i].Type = t
		if p, ok := info[i]; ok {
			args[i].Name = p.name
			args[i].Doc = p.doc
		}
		if extra, ok := e.overrides.ParamDoc(fullName, i); ok {
			name, doc, found := strings.Cut(extra, ":")
			if !found {
				doc = extra
			} else if args[i].Name == "" {
				args[i].Name = luaIdentifier(strings.TrimSpace(name))
			}
			args[i].Doc = joinDoc(args[i].Doc, doc)
		}
	}
	return args
}

func parameterInfo(row *goquery.Selection) map[int]*paramInfo {
	result := make(map[int]*paramInfo)
	entry := func(idx int) *paramInfo {
		if result[idx] == nil {
			result[idx] = &paramInfo{}
		}
		return result[idx]
	}

	row.Next().Find(".doc > .dox > dl").Children().Each(func(_ int, el *goquery.Selection) {
		for _, class := range classNames(el) {
			var prefix string
			switch {
			case strings.HasPrefix(class, paramNamePrefix):
				prefix = paramNamePrefix
			case strings.HasPrefix(class, paramDescrPrefix):
				prefix = paramDescrPrefix
			default:
				continue
			}
			idx, err := strconv.Atoi(class[len(prefix):])
			if err != nil {
				log.Warningf("failed to get param index from %q (text: %q)", class, text(el))
				continue
			}
			if prefix == paramNamePrefix {
				entry(idx).name = luaIdentifier(text(el))
			} else {
				entry(idx).doc = text(el)
			}
		}
	})
	return result
}

func memberDoc(row *goquery.Selection) (string, error) {
	dox := row.Next().Find(".doc > .dox")
	switch dox.Length() {
	case 0:
		return "", nil
	case 1:
	default:
		return "", errorf("expected one documentation block, got %d", dox.Length())
	}

	var parts []string
	dox.Children().Each(func(_ int, el *goquery.Selection) {
		if isParamList(el) || (el.HasClass("result-discussion") && returnSectionProblem(el) == "") {
			return
		}
		if t := text(el); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " "), nil
}

func isParamList(el *goquery.Selection) bool {
	return goquery.NodeName(el) == "dl" && el.Children().First().HasClass(paramNamePrefix+"0")
}

// returnSectionProblem names the first element of a result discussion that
// does not have the expected shape, or returns "".
func returnSectionProblem(el *goquery.Selection) string {
	children := el.Children()
	if children.Length() != 1 {
		return "result-discussion"
	}
	para := children.First()
	if !para.HasClass("para-returns") {
		return "para-returns"
	}
	if !para.Children().First().HasClass("word-returns") {
		return "word-returns"
	}
	return ""
}

func (e *extractor) returnDoc(fullName string, row *goquery.Selection) (string, error) {
	var doc string

	sections := row.Next().Find(".doc > .dox > .result-discussion")
	switch sections.Length() {
	case 0:
	case 1:
		if problem := returnSectionProblem(sections); problem != "" {
			log.Warningf("%s: return comment structure unknown (%s)", fullName, problem)
			break
		}
		para := sections.Children().First()
		doc = strings.TrimSpace(strings.TrimPrefix(text(para), text(para.Children().First())))
	default:
		return "", errorf("%s: expected one result discussion, got %d", fullName, sections.Length())
	}

	if extra, ok := e.overrides.ReturnDoc(fullName); ok {
		doc = joinDoc(doc, extra)
	}
	return doc, nil
}

func (e *extractor) enums(children *goquery.Selection) ([]*EnumModel, error) {
	scan := SiblingScan{
		Find: func(el *goquery.Selection) bool {
			return goquery.NodeName(el) == "h3" && el.HasClass("enum")
		},
		Start: func(el *goquery.Selection) bool {
			return goquery.NodeName(el) == "h2" && text(el) == enumSectionHeading
		},
	}

	var result []*EnumModel
	for heading := range scan.ScanAll(children) {
		id, _ := heading.Attr("id")
		list := heading.Next()
		if goquery.NodeName(list) != "ul" || !list.HasClass("enum") {
			return nil, errorf("enum %s is not followed by a constant list", id)
		}

		enum := &EnumModel{Type: normalizeSeparators(strings.TrimSuffix(id, longPointerSuffix))}
		items := list.Children()
		for i := range items.Nodes {
			item := items.Eq(i)
			if goquery.NodeName(item) != "li" || !item.HasClass("const") {
				return nil, errorf("enum %s has a malformed constant", id)
			}
			enum.Values = append(enum.Values, TrimEnumValue(text(item)))
		}
		result = append(result, enum)
	}
	return result, nil
}

// TrimEnumValue strips the list separator the reference leaves on constants.
func TrimEnumValue(name string) string {
	return strings.TrimSuffix(name, ",")
}

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// luaIdentifier keeps parameter names from colliding with Lua keywords.
func luaIdentifier(name string) string {
	if luaKeywords[name] {
		return name + "_"
	}
	return name
}

// text is the whitespace-normalised text content of el.
func text(el *goquery.Selection) string {
	return strings.Join(strings.Fields(el.Text()), " ")
}

// directText returns the non-blank text nodes directly under el.
func directText(el *goquery.Selection) []string {
	var result []string
	for _, n := range el.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				continue
			}
			if t := strings.Join(strings.Fields(c.Data), " "); t != "" {
				result = append(result, t)
			}
		}
	}
	return result
}

func classNames(el *goquery.Selection) []string {
	class, _ := el.Attr("class")
	return strings.Fields(class)
}

func joinDoc(doc, extra string) string {
	if doc == "" {
		return extra
	}
	if extra == "" {
		return doc
	}
	return doc + " " + extra
}
