package field

import "strings"

// Type is the generator-side classification of a raw declared type. The
// parser never interprets type text; generators call Classify to pick a
// target-language type.
type Type uint8

// Classified types.
const (
	TypeOther Type = iota
	TypeString
	TypeInt
	TypeInt64
	TypeFloat64
	TypeBool
	TypeTime
	TypeUUID
	TypeBytes
	TypeUnknown
)

var typeNames = [...]string{
	TypeOther:   "other",
	TypeString:  "string",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeUUID:    "uuid",
	TypeBytes:   "[]byte",
	TypeUnknown: "unknown",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// Numeric reports whether the type is a number.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeFloat64
}

var primitives = map[string]Type{
	"string":        TypeString,
	"str":           TypeString,
	"text":          TypeString,
	"char":          TypeString,
	"varchar":       TypeString,
	"int":           TypeInt,
	"integer":       TypeInt,
	"short":         TypeInt,
	"byte":          TypeInt,
	"int32":         TypeInt,
	"long":          TypeInt64,
	"int64":         TypeInt64,
	"bigint":        TypeInt64,
	"double":        TypeFloat64,
	"float":         TypeFloat64,
	"float64":       TypeFloat64,
	"decimal":       TypeFloat64,
	"bigdecimal":    TypeFloat64,
	"number":        TypeFloat64,
	"real":          TypeFloat64,
	"bool":          TypeBool,
	"boolean":       TypeBool,
	"date":          TypeTime,
	"datetime":      TypeTime,
	"time":          TypeTime,
	"timestamp":     TypeTime,
	"instant":       TypeTime,
	"localdate":     TypeTime,
	"localdatetime": TypeTime,
	"uuid":          TypeUUID,
	"bytes":         TypeBytes,
	"blob":          TypeBytes,
}

// Classify maps a raw declared type (without collection wrappers) to a
// Type. Unknown names, typically class names, are TypeOther.
func Classify(raw string) Type {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == TypeUnspecified {
		return TypeUnknown
	}
	if t, ok := primitives[strings.ToLower(raw)]; ok {
		return t
	}
	return TypeOther
}
