package edge

import "fmt"

// Kind is the relationship kind implied by an arrow.
type Kind uint8

// Relationship kinds.
const (
	Association Kind = iota + 1
	Aggregation
	Composition
	Inheritance
	Dependency
)

var kindNames = [...]string{
	Association: "association",
	Aggregation: "aggregation",
	Composition: "composition",
	Inheritance: "inheritance",
	Dependency:  "dependency",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name != "" && name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("edge: unknown kind %q", b)
}

// Structural reports whether the kind carries ownership and collection
// semantics (association, aggregation, composition).
func (k Kind) Structural() bool {
	return k == Association || k == Aggregation || k == Composition
}

// OwningSide is the endpoint whose generated representation carries the
// reference or foreign key.
type OwningSide uint8

// Owning sides.
const (
	OwnerNone OwningSide = iota
	OwnerSource
	OwnerTarget
	// OwnerJoin marks a many-to-many relationship backed by a join
	// association. The join owner is always the source.
	OwnerJoin
)

var ownerNames = [...]string{
	OwnerNone:   "none",
	OwnerSource: "source",
	OwnerTarget: "target",
	OwnerJoin:   "join",
}

// String returns the owning side name.
func (o OwningSide) String() string {
	if int(o) < len(ownerNames) {
		return ownerNames[o]
	}
	return fmt.Sprintf("OwningSide(%d)", o)
}

// MarshalText implements encoding.TextMarshaler.
func (o OwningSide) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OwningSide) UnmarshalText(b []byte) error {
	for i, name := range ownerNames {
		if name == string(b) {
			*o = OwningSide(i)
			return nil
		}
	}
	return fmt.Errorf("edge: unknown owning side %q", b)
}

// Side names one endpoint of a relationship.
type Side uint8

// Relationship endpoints.
const (
	NoSide Side = iota
	SourceSide
	TargetSide
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SourceSide:
		return "source"
	case TargetSide:
		return "target"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "source":
		*s = SourceSide
	case "target":
		*s = TargetSide
	case "none", "":
		*s = NoSide
	default:
		return fmt.Errorf("edge: unknown side %q", b)
	}
	return nil
}

// Other returns the opposite endpoint.
func (s Side) Other() Side {
	switch s {
	case SourceSide:
		return TargetSide
	case TargetSide:
		return SourceSide
	default:
		return NoSide
	}
}
