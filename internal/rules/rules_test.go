package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Compile ---

func TestCompile_UnknownAtom(t *testing.T) {
	_, err := Compile(FieldDef{Field: "name", Chain: "required|strnig"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown atom")
	assert.Contains(t, err.Error(), "name")
}

func TestCompile_MinNeedsInteger(t *testing.T) {
	_, err := Compile(FieldDef{Field: "name", Chain: "min:abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative integer")
}

func TestCompile_MinRejectsNegative(t *testing.T) {
	_, err := Compile(FieldDef{Field: "name", Chain: "min:-1"})
	require.Error(t, err)
}

func TestCompile_InNeedsArguments(t *testing.T) {
	_, err := Compile(FieldDef{Field: "theme", Chain: "in:"})
	require.Error(t, err)

	_, err = Compile(FieldDef{Field: "theme", Chain: "in"})
	require.Error(t, err)
}

func TestMustCompile_PanicsOnBadChain(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(FieldDef{Field: "x", Chain: "bogus"})
	})
}

// --- Validate: required and empty handling ---

func TestValidate_MissingOptionalFieldPasses(t *testing.T) {
	set := MustCompile(FieldDef{Field: "name", Chain: "string|min:2"})
	errs := set.Validate(map[string]any{})
	assert.Empty(t, errs)
}

func TestValidate_EmptyStringOptionalFieldPasses(t *testing.T) {
	set := MustCompile(FieldDef{Field: "name", Chain: "string|min:2"})
	errs := set.Validate(map[string]any{"name": ""})
	assert.Empty(t, errs)
}

func TestValidate_MissingRequiredFieldOnlyRequiredMessage(t *testing.T) {
	set := MustCompile(FieldDef{Field: "name", Chain: "required|string|min:2|max:50"})
	errs := set.Validate(map[string]any{})
	require.Len(t, errs["name"], 1)
	assert.Equal(t, "name is required", errs["name"][0])
}

func TestValidate_NullTreatedAsAbsent(t *testing.T) {
	set := MustCompile(FieldDef{Field: "name", Chain: "required|string"})
	errs := set.Validate(map[string]any{"name": nil})
	require.Len(t, errs["name"], 1)
	assert.Equal(t, "name is required", errs["name"][0])
}

// --- Validate: present values collect every failure ---

func TestValidate_CollectsAllFailuresInChainOrder(t *testing.T) {
	set := MustCompile(FieldDef{Field: "code", Chain: "required|string|min:6|max:6"})
	errs := set.Validate(map[string]any{"code": float64(12)})
	require.Len(t, errs["code"], 2)
	assert.Equal(t, "code must be a string", errs["code"][0])
	assert.Equal(t, "code must not exceed 6", errs["code"][1])

	set = MustCompile(FieldDef{Field: "name", Chain: "string|numeric"})
	errs = set.Validate(map[string]any{"name": true})
	require.Len(t, errs["name"], 2)
	assert.Equal(t, "name must be a string", errs["name"][0])
	assert.Equal(t, "name must be numeric", errs["name"][1])
}

func TestValidate_StringWithinBoundsPasses(t *testing.T) {
	set := MustCompile(FieldDef{Field: "name", Chain: "required|string|min:2|max:5"})
	assert.Empty(t, set.Validate(map[string]any{"name": "Ada"}))

	errs := set.Validate(map[string]any{"name": "A"})
	require.Len(t, errs["name"], 1)
	assert.Equal(t, "name must be at least 2 characters", errs["name"][0])

	errs = set.Validate(map[string]any{"name": "Adelaide"})
	require.Len(t, errs["name"], 1)
	assert.Equal(t, "name must not exceed 5 characters", errs["name"][0])
}

func TestValidate_MinCountsRunesNotBytes(t *testing.T) {
	set := MustCompile(FieldDef{Field: "name", Chain: "min:3"})
	// Three runes, more than three bytes.
	assert.Empty(t, set.Validate(map[string]any{"name": "Àdá"}))
}

func TestValidate_Email(t *testing.T) {
	set := MustCompile(FieldDef{Field: "email", Chain: "required|email"})
	assert.Empty(t, set.Validate(map[string]any{"email": "a@b.co"}))

	for _, bad := range []string{"a@b", "a b@c.d", "@b.co", "a@.co"} {
		errs := set.Validate(map[string]any{"email": bad})
		require.Len(t, errs["email"], 1, "input %q", bad)
		assert.Equal(t, "email must be a valid email", errs["email"][0])
	}
}

func TestValidate_Boolean(t *testing.T) {
	set := MustCompile(FieldDef{Field: "push", Chain: "boolean"})
	assert.Empty(t, set.Validate(map[string]any{"push": true}))
	assert.Empty(t, set.Validate(map[string]any{"push": false}))

	errs := set.Validate(map[string]any{"push": "true"})
	require.Len(t, errs["push"], 1)
	assert.Equal(t, "push must be a boolean", errs["push"][0])
}

func TestValidate_Numeric(t *testing.T) {
	set := MustCompile(FieldDef{Field: "age", Chain: "numeric"})
	assert.Empty(t, set.Validate(map[string]any{"age": float64(7)}))
	assert.Empty(t, set.Validate(map[string]any{"age": "42.5"}))

	errs := set.Validate(map[string]any{"age": "forty"})
	require.Len(t, errs["age"], 1)
	assert.Equal(t, "age must be numeric", errs["age"][0])
}

func TestValidate_NumericMinMax(t *testing.T) {
	set := MustCompile(FieldDef{Field: "level", Chain: "numeric|min:1|max:10"})
	assert.Empty(t, set.Validate(map[string]any{"level": float64(5)}))

	errs := set.Validate(map[string]any{"level": float64(0)})
	require.Len(t, errs["level"], 1)
	assert.Equal(t, "level must be at least 1", errs["level"][0])

	errs = set.Validate(map[string]any{"level": float64(11)})
	require.Len(t, errs["level"], 1)
	assert.Equal(t, "level must not exceed 10", errs["level"][0])
}

func TestValidate_In(t *testing.T) {
	set := MustCompile(FieldDef{Field: "theme", Chain: "in:light,dark"})
	assert.Empty(t, set.Validate(map[string]any{"theme": "dark"}))

	errs := set.Validate(map[string]any{"theme": "blue"})
	require.Len(t, errs["theme"], 1)
	assert.Equal(t, "theme must be one of: light, dark", errs["theme"][0])
}

func TestValidate_IgnoresUnknownFields(t *testing.T) {
	set := MustCompile(FieldDef{Field: "email", Chain: "required|email"})
	errs := set.Validate(map[string]any{"email": "a@b.co", "extra": 12345})
	assert.Empty(t, errs)
}

func TestValidate_MultipleFields(t *testing.T) {
	set := MustCompile(
		FieldDef{Field: "email", Chain: "required|email"},
		FieldDef{Field: "password", Chain: "required|string|min:6"},
	)
	errs := set.Validate(map[string]any{"email": "nope", "password": "abc"})
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"email must be a valid email"}, errs["email"])
	assert.Equal(t, []string{"password must be at least 6 characters"}, errs["password"])
}
