package edge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pumlgen"
)

func TestParseMultiplicity(t *testing.T) {
	tests := []struct {
		in   string
		want Multiplicity
		many bool
	}{
		{in: "1", want: ExactlyOne()},
		{in: `"1"`, want: ExactlyOne()},
		{in: "0..1", want: ZeroOrOne()},
		{in: "*", want: Many(), many: true},
		{in: "n", want: Many(), many: true},
		{in: "many", want: Many(), many: true},
		{in: "Many", want: Many(), many: true},
		{in: "0..*", want: Many(), many: true},
		{in: "1..*", want: Range(1, Unbounded), many: true},
		{in: "1..n", want: Range(1, Unbounded), many: true},
		{in: "1..1", want: ExactlyOne()},
		{in: "2..5", want: Multiplicity{Kind: MultRange, Lo: 2, Hi: 5}, many: true},
		{in: "3", want: Multiplicity{Kind: MultExact, Lo: 3, Hi: 3}, many: true},
		{in: " 0 .. 1 ", want: ZeroOrOne()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMultiplicity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.many, got.IsMany())
			assert.Equal(t, !tt.many, got.IsSingular())
		})
	}
}

func TestParseMultiplicity_Invalid(t *testing.T) {
	for _, in := range []string{"", "x", "1..", "..2", "5..2", "-1", "1..*..2", "one"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMultiplicity(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, pumlgen.ErrUnknownMultiplicity))
		})
	}
}

func TestMultiplicity_String(t *testing.T) {
	assert.Equal(t, "1", ExactlyOne().String())
	assert.Equal(t, "0..1", ZeroOrOne().String())
	assert.Equal(t, "*", Many().String())
	assert.Equal(t, "4", Exact(4).String())
	assert.Equal(t, "1..*", Range(1, Unbounded).String())
	assert.Equal(t, "2..3", Range(2, 3).String())
	assert.Equal(t, "", Multiplicity{}.String())
	assert.True(t, Multiplicity{}.IsZero())
	assert.True(t, ZeroOrOne().Optional())
	assert.False(t, ExactlyOne().Optional())
}

func TestMultiplicity_JSON(t *testing.T) {
	buf, err := json.Marshal(struct {
		M Multiplicity `json:"m"`
	}{M: Range(1, Unbounded)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"m":"1..*"}`, string(buf))

	var out struct {
		M Multiplicity `json:"m"`
	}
	require.NoError(t, json.Unmarshal(buf, &out))
	assert.Equal(t, Range(1, Unbounded), out.M)
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"-->":      "-->",
		"--->":     "-->",
		"->":       "-->",
		"-left->":  "-->",
		"-[#red]->": "-->",
		"-up-|>":   "--|>",
		"<|---":    "<|--",
		".>":       "..>",
		"...>":     "..>",
		"*---":     "*--",
		" o-- ":    "o--",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLookupArrow(t *testing.T) {
	tests := []struct {
		token string
		kind  Kind
		rev   bool
		whole Side
	}{
		{"--", Association, false, NoSide},
		{"-->", Association, false, NoSide},
		{"<--", Association, false, NoSide},
		{"o--", Aggregation, false, SourceSide},
		{"--o", Aggregation, false, TargetSide},
		{"*--", Composition, false, SourceSide},
		{"--*", Composition, false, TargetSide},
		{"<|--", Inheritance, true, NoSide},
		{"--|>", Inheritance, false, NoSide},
		{"..>", Dependency, false, NoSide},
		{"<..", Dependency, false, NoSide},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			a, ok := LookupArrow(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.rev, a.Reversed)
			assert.Equal(t, tt.whole, a.Whole)
		})
	}
	for _, bad := range []string{"..|>", "<-->", "..", "||--o{", "=="} {
		_, ok := LookupArrow(bad)
		assert.False(t, ok, bad)
	}
	assert.Len(t, Arrows(), 11)
}

func TestCrowsFoot(t *testing.T) {
	l, r, ok := CrowsFoot("||--o{")
	require.True(t, ok)
	assert.Equal(t, ExactlyOne(), l)
	assert.Equal(t, Many(), r)

	l, r, ok = CrowsFoot("}|..|o")
	require.True(t, ok)
	assert.Equal(t, Range(1, Unbounded), l)
	assert.Equal(t, ZeroOrOne(), r)

	_, _, ok = CrowsFoot("-->")
	assert.False(t, ok)
	_, _, ok = CrowsFoot("||--x")
	assert.False(t, ok)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "composition", Composition.String())
	assert.True(t, Aggregation.Structural())
	assert.False(t, Inheritance.Structural())
	assert.False(t, Dependency.Structural())

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("dependency")))
	assert.Equal(t, Dependency, k)
	require.Error(t, k.UnmarshalText([]byte("friendship")))

	var o OwningSide
	require.NoError(t, o.UnmarshalText([]byte("join")))
	assert.Equal(t, OwnerJoin, o)
	assert.Equal(t, TargetSide, SourceSide.Other())
	assert.Equal(t, NoSide, NoSide.Other())
}
