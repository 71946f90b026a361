package gen

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed template/quarkus/*.tmpl
var templateDir embed.FS

type (
	// Template wraps the standard template.Template to provide
	// additional functionality for pumlgen templates.
	Template struct {
		*template.Template
		FuncMap template.FuncMap
	}

	// TypeTemplate specifies a template that is executed for each type.
	TypeTemplate struct {
		Name   string             // template name.
		Format func(*Type) string // file name format.
		Cond   func(*Type) bool   // execute template only if the condition is met.
	}

	// GraphTemplate specifies a template that is executed once for the
	// whole graph.
	GraphTemplate struct {
		Name   string            // template name.
		Format string            // file name.
		Skip   func(*Graph) bool // skip condition.
	}
)

var (
	// Templates holds the per-type templates of the quarkus target.
	Templates = []TypeTemplate{
		{
			Name:   "entity",
			Format: func(t *Type) string { return t.JavaPath("entities", t.Name) },
		},
		{
			Name:   "repository",
			Format: func(t *Type) string { return t.JavaPath("repositories", t.Name+"Repository") },
			Cond:   func(t *Type) bool { return !t.Abstract },
		},
		{
			Name:   "resource",
			Format: func(t *Type) string { return t.JavaPath("resources", t.Name+"Resource") },
			Cond:   func(t *Type) bool { return !t.Abstract },
		},
	}
	// GraphTemplates holds the project-level templates of the quarkus target.
	GraphTemplates = []GraphTemplate{
		{Name: "pom", Format: "pom.xml"},
		{Name: "application", Format: "src/main/resources/application.properties"},
		{Name: "readme", Format: "README.md"},
	}
)

// Funcs are the functions available to all templates.
var Funcs = template.FuncMap{
	"snake":      Snake,
	"pascal":     Pascal,
	"camel":      Camel,
	"plural":     Plural,
	"singular":   Singular,
	"upperFirst": upperFirst,
	"lower":      strings.ToLower,
	"upper":      strings.ToUpper,
	"join":       strings.Join,
	"comment":    comment,
	"jdbc":       jdbcKind,
}

// NewTemplate creates an empty template with the standard codegen functions.
func NewTemplate(name string) *Template {
	t := &Template{Template: template.New(name)}
	return t.Funcs(Funcs)
}

// Funcs merges the given funcMap with the template functions.
func (t *Template) Funcs(funcMap template.FuncMap) *Template {
	t.Template.Funcs(funcMap)
	if t.FuncMap == nil {
		t.FuncMap = template.FuncMap{}
	}
	for name, f := range funcMap {
		if _, ok := t.FuncMap[name]; !ok {
			t.FuncMap[name] = f
		}
	}
	return t
}

// ParseDir parses all *.tmpl files in dir. Definitions replace earlier
// ones with the same name.
func (t *Template) ParseDir(dir string) (*Template, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", f, err)
		}
		if _, err := t.Parse(string(b)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", f, err)
		}
	}
	return t, nil
}

// Extras returns the names of templates that are not part of the
// built-in set and name an output file, such as "internal/model.go".
// They are executed once with the graph.
func (t *Template) Extras() []string {
	builtin := make(map[string]bool)
	for _, tt := range Templates {
		builtin[tt.Name] = true
	}
	for _, gt := range GraphTemplates {
		builtin[gt.Name] = true
	}
	var names []string
	for _, tmpl := range t.Templates() {
		name := tmpl.Name()
		if builtin[name] || !strings.Contains(name, ".") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// QuarkusTemplates returns the built-in project templates, overridden by
// the *.tmpl files of dir when dir is not empty.
func QuarkusTemplates(dir string) (*Template, error) {
	t, err := NewTemplate("quarkus").ParseFS(templateDir, "template/quarkus/*.tmpl")
	if err != nil {
		return nil, err
	}
	tmpl := &Template{Template: t, FuncMap: Funcs}
	if dir == "" {
		return tmpl, nil
	}
	return tmpl.ParseDir(dir)
}

// MustParse is a helper that wraps a call to a function returning
// (*Template, error) and panics if the error is non-nil.
func MustParse(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

// comment prefixes every line of s with "// ".
func comment(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("// "+l, " ")
	}
	return strings.Join(lines, "\n")
}

// jdbcKind maps a dialect to its Quarkus datasource kind.
func jdbcKind(dialect string) string {
	switch dialect {
	case "mysql":
		return "mysql"
	case "sqlite":
		return "h2"
	default:
		return "postgresql"
	}
}
