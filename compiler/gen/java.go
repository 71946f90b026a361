package gen

import (
	"fmt"
	"strings"

	"github.com/syssam/pumlgen/schema/field"
)

// Java primitive type names, keyed by lower-case declared type.
var javaTypes = map[string]string{
	"string":        "String",
	"int":           "Integer",
	"integer":       "Integer",
	"long":          "Long",
	"double":        "Double",
	"float":         "Float",
	"boolean":       "Boolean",
	"bool":          "Boolean",
	"date":          "LocalDate",
	"localdate":     "LocalDate",
	"datetime":      "LocalDateTime",
	"localdatetime": "LocalDateTime",
	"decimal":       "BigDecimal",
	"bigdecimal":    "BigDecimal",
	"uuid":          "UUID",
}

// JavaType returns the Java type of the field. Untyped attributes become
// String and array suffixes become List.
func (f *Field) JavaType() string {
	switch {
	case f.IsID():
		return "Long"
	case f.Type == field.TypeUnspecified:
		return "String"
	case f.Collection && strings.HasSuffix(f.Type, "]"):
		return "List<" + javaName(f.Elem) + ">"
	case f.Collection:
		open := strings.IndexByte(f.Type, '<')
		return strings.TrimSpace(f.Type[:open]) + "<" + javaName(f.Elem) + ">"
	}
	return javaName(f.Type)
}

func javaName(t string) string {
	if j, ok := javaTypes[strings.ToLower(t)]; ok {
		return j
	}
	return t
}

// Getter returns the Java getter name of the field.
func (f *Field) Getter() string { return "get" + upperFirst(f.Name) }

// Setter returns the Java setter name of the field.
func (f *Field) Setter() string { return "set" + upperFirst(f.Name) }

// Var returns a Java-safe variable name for the field.
func (f *Field) Var() string { return receiver(f.Name) }

// JavaType returns the Java type of the edge field.
func (e *Edge) JavaType() string {
	if e.Unique {
		return e.Type.Name
	}
	return "Set<" + e.Type.Name + ">"
}

// Initializer returns the Java field initializer of collection edges.
func (e *Edge) Initializer() string {
	if e.Unique {
		return ""
	}
	return " = new HashSet<>()"
}

// Getter returns the Java getter name of the edge.
func (e *Edge) Getter() string { return "get" + upperFirst(e.Name) }

// Setter returns the Java setter name of the edge.
func (e *Edge) Setter() string { return "set" + upperFirst(e.Name) }

// JPA returns the persistence annotations of the edge field, one per line.
func (e *Edge) JPA() []string {
	var (
		mappedBy = fmt.Sprintf("mappedBy = %q", e.Ref.Name)
		cascade  = "cascade = CascadeType.ALL"
		orphans  = cascade + ", orphanRemoval = true"
	)
	annotate := func(name string, attrs ...string) string {
		var set []string
		for _, a := range attrs {
			if a != "" {
				set = append(set, a)
			}
		}
		if len(set) == 0 {
			return "@" + name
		}
		return "@" + name + "(" + strings.Join(set, ", ") + ")"
	}
	ifCascade := func(s string) string {
		if e.Cascade() {
			return s
		}
		return ""
	}
	joinColumn := fmt.Sprintf("@JoinColumn(name = %q)", e.Column())
	switch e.Rel {
	case M2O:
		return []string{annotate("ManyToOne", ifCascade(cascade)), joinColumn}
	case O2M:
		return []string{annotate("OneToMany", mappedBy, ifCascade(orphans))}
	case O2O:
		if e.OwnFK() {
			return []string{annotate("OneToOne", ifCascade(orphans)), joinColumn}
		}
		return []string{annotate("OneToOne", mappedBy, ifCascade(orphans))}
	case M2M:
		if !e.JoinOwner() {
			return []string{annotate("ManyToMany", mappedBy, ifCascade(cascade))}
		}
		src, dst := e.Relation.JoinColumns()
		return []string{
			annotate("ManyToMany", ifCascade(cascade)),
			fmt.Sprintf("@JoinTable(name = %q, joinColumns = @JoinColumn(name = %q), inverseJoinColumns = @JoinColumn(name = %q))",
				e.Relation.JoinTable(), src, dst),
		}
	}
	return nil
}

// AddSync returns the Java statement keeping the other side of a
// bidirectional collection in sync when v is added.
func (e *Edge) AddSync(v string) string {
	if e.Ref.Unique {
		return fmt.Sprintf("%s.%s(this);", v, e.Ref.Setter())
	}
	return fmt.Sprintf("%s.%s().add(this);", v, e.Ref.Getter())
}

// RemoveSync is the counterpart of AddSync for removals.
func (e *Edge) RemoveSync(v string) string {
	if e.Ref.Unique {
		return fmt.Sprintf("%s.%s(null);", v, e.Ref.Setter())
	}
	return fmt.Sprintf("%s.%s().remove(this);", v, e.Ref.Getter())
}

// NeedsID reports whether the entity declares the generated identifier.
// Subclasses inherit it from the root of their hierarchy.
func (t *Type) NeedsID() bool { return t.Parent == nil }

// Path returns the REST resource path of the type.
func (t *Type) Path() string { return Camel(Plural(t.Name)) }

// Var returns a Java-safe variable name for the type.
func (t *Type) Var() string { return receiver(t.Name) }

// JavaPath returns the source path of a Java class in the given
// sub-package of the configured base package.
func (c *Config) JavaPath(sub, class string) string {
	parts := []string{"src", "main", "java"}
	if c.Package != "" {
		parts = append(parts, strings.Split(c.Package, ".")...)
	}
	if sub != "" {
		parts = append(parts, sub)
	}
	return strings.Join(append(parts, class+".java"), "/")
}

// GroupID returns the Maven group of the project.
func (c *Config) GroupID() string { return c.Package }

// ArtifactID returns the Maven artifact of the project.
func (c *Config) ArtifactID() string {
	if i := strings.LastIndexByte(c.Package, '.'); i >= 0 {
		return strings.ReplaceAll(Snake(c.Package[i+1:]), "_", "-")
	}
	return strings.ReplaceAll(Snake(c.Package), "_", "-")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
