package luaref

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Overrides supply user-written documentation that is merged into the
// scraped text. Class docs are keyed by class name. Function docs are keyed
// by the qualified function name, by "<name>:<index>" for a parameter
// ("paramName:description") and by "<name>:return" for the return value.
type Overrides struct {
	Classes   map[string]string
	Functions map[string]string
}

func (o *Overrides) ClassDoc(class string) (string, bool) {
	if o == nil {
		return "", false
	}
	doc, ok := o.Classes[class]
	return doc, ok
}

func (o *Overrides) FunctionDoc(function string) (string, bool) {
	if o == nil {
		return "", false
	}
	doc, ok := o.Functions[function]
	return doc, ok
}

func (o *Overrides) ParamDoc(function string, index int) (string, bool) {
	return o.FunctionDoc(function + ":" + strconv.Itoa(index))
}

func (o *Overrides) ReturnDoc(function string) (string, bool) {
	return o.FunctionDoc(function + ":return")
}

// LoadOverrides reads the class and function override files. An empty path
// leaves the corresponding table empty.
func LoadOverrides(classPath, functionPath string) (*Overrides, error) {
	classes, err := loadDocTable(classPath)
	if err != nil {
		return nil, fmt.Errorf("load class docs: %w", err)
	}
	functions, err := loadDocTable(functionPath)
	if err != nil {
		return nil, fmt.Errorf("load function docs: %w", err)
	}
	return &Overrides{Classes: classes, Functions: functions}, nil
}

func loadDocTable(path string) (map[string]string, error) {
	table := make(map[string]string)
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}
