package gen

import (
	"fmt"

	"github.com/syssam/pumlgen/schema/edge"
)

// Rel is a relation type, seen from the source of a relationship.
type Rel int

// Relation types.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one / has one.
	O2M            // One to many / has many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many.
)

// String returns the relation name.
func (r Rel) String() string {
	s := "Unknown"
	switch r {
	case O2O:
		s = "O2O"
	case O2M:
		s = "O2M"
	case M2O:
		s = "M2O"
	case M2M:
		s = "M2M"
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (r Rel) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rel) UnmarshalText(b []byte) error {
	for _, v := range []Rel{Unk, O2O, O2M, M2O, M2M} {
		if v.String() == string(b) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("gen: unknown relation type %q", b)
}

// Inverse returns the relation type seen from the other endpoint.
func (r Rel) Inverse() Rel {
	switch r {
	case O2M:
		return M2O
	case M2O:
		return O2M
	default:
		return r
	}
}

// Resolution is the outcome of cardinality resolution for one relationship.
type Resolution struct {
	// Owner is the endpoint that carries the reference or foreign key.
	Owner edge.OwningSide `json:"owner"`
	// EffectiveSource and EffectiveTarget are the multiplicities after
	// defaults were applied. Both are zero for inheritance and dependency.
	EffectiveSource edge.Multiplicity `json:"effective_source"`
	EffectiveTarget edge.Multiplicity `json:"effective_target"`
	// Rel is the relation type from the source perspective.
	Rel Rel `json:"rel"`
	// Cascade marks composition: deleting the whole deletes the part.
	Cascade bool `json:"cascade,omitempty"`
}

// Resolve maps a relationship kind and its declared multiplicities to an
// owning side and effective multiplicities.
//
// Missing multiplicities default to exactly-one for association,
// aggregation and composition. When both ends are singular the source
// owns the reference. When exactly one end is many, the many end owns it.
// When both ends are many a join association is implied and its owner is
// the source.
func Resolve(kind edge.Kind, src, dst *edge.Multiplicity) (Resolution, error) {
	switch kind {
	case edge.Inheritance, edge.Dependency:
		return Resolution{Owner: edge.OwnerNone}, nil
	case edge.Association, edge.Aggregation, edge.Composition:
	default:
		return Resolution{}, fmt.Errorf("gen: cannot resolve relationship of kind %s", kind)
	}
	r := Resolution{
		EffectiveSource: effective(src),
		EffectiveTarget: effective(dst),
		Cascade:         kind == edge.Composition,
	}
	switch sm, tm := r.EffectiveSource.IsMany(), r.EffectiveTarget.IsMany(); {
	case sm && tm:
		r.Owner, r.Rel = edge.OwnerJoin, M2M
	case sm:
		r.Owner, r.Rel = edge.OwnerSource, M2O
	case tm:
		r.Owner, r.Rel = edge.OwnerTarget, O2M
	default:
		r.Owner, r.Rel = edge.OwnerSource, O2O
	}
	return r, nil
}

func effective(m *edge.Multiplicity) edge.Multiplicity {
	if m == nil || m.IsZero() {
		return edge.ExactlyOne()
	}
	return *m
}
