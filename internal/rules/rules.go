// Package rules implements the request-validation engine used by every
// protected endpoint. Endpoint authors declare constraints as pipe-delimited
// chains ("required|string|min:2|max:50") which are compiled once at startup
// into typed constraints and evaluated per request against decoded JSON
// bodies. A malformed chain is a configuration error and fails compilation,
// never a request.
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies a constraint atom.
type Kind uint8

const (
	Required Kind = iota
	String
	Boolean
	Email
	Numeric
	Min
	Max
	In
)

// Constraint is a single compiled atom. N carries the min/max argument and
// Oneof the in-list; both are zero unless the kind uses them.
type Constraint struct {
	Kind  Kind
	N     int
	Oneof []string
}

// FieldDef pairs a field name with its rule chain.
type FieldDef struct {
	Field string
	Chain string
}

// Errors maps field names to the messages of their failing constraints, in
// chain order. An empty map means the record passed.
type Errors map[string][]string

// Set is a compiled, immutable rule set for one endpoint. Fields are
// evaluated in definition order.
type Set struct {
	fields []fieldRules
}

type fieldRules struct {
	field       string
	required    bool
	constraints []Constraint
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Compile parses the given field definitions into a Set. Unknown atoms,
// malformed min/max arguments and empty in-lists are compile errors.
func Compile(defs ...FieldDef) (*Set, error) {
	s := &Set{fields: make([]fieldRules, 0, len(defs))}
	for _, def := range defs {
		fr := fieldRules{field: def.Field}
		for _, token := range strings.Split(def.Chain, "|") {
			name, rawArgs, _ := strings.Cut(token, ":")
			c, err := compileAtom(name, rawArgs)
			if err != nil {
				return nil, fmt.Errorf("field %q chain %q: %w", def.Field, def.Chain, err)
			}
			if c.Kind == Required {
				fr.required = true
				continue
			}
			fr.constraints = append(fr.constraints, c)
		}
		s.fields = append(s.fields, fr)
	}
	return s, nil
}

// MustCompile is Compile for package-level rule-set variables; it panics on
// error so a bad chain aborts startup.
func MustCompile(defs ...FieldDef) *Set {
	s, err := Compile(defs...)
	if err != nil {
		panic(fmt.Sprintf("rules: %v", err))
	}
	return s
}

func compileAtom(name, rawArgs string) (Constraint, error) {
	switch name {
	case "required":
		return Constraint{Kind: Required}, nil
	case "string":
		return Constraint{Kind: String}, nil
	case "boolean":
		return Constraint{Kind: Boolean}, nil
	case "email":
		return Constraint{Kind: Email}, nil
	case "numeric":
		return Constraint{Kind: Numeric}, nil
	case "min", "max":
		n, err := strconv.Atoi(rawArgs)
		if err != nil || n < 0 {
			return Constraint{}, fmt.Errorf("atom %q needs a non-negative integer argument, got %q", name, rawArgs)
		}
		if name == "min" {
			return Constraint{Kind: Min, N: n}, nil
		}
		return Constraint{Kind: Max, N: n}, nil
	case "in":
		if rawArgs == "" {
			return Constraint{}, fmt.Errorf(`atom "in" needs at least one argument`)
		}
		return Constraint{Kind: In, Oneof: strings.Split(rawArgs, ",")}, nil
	default:
		return Constraint{}, fmt.Errorf("unknown atom %q", name)
	}
}

// Validate evaluates the record against the set.
//
// An absent or empty value short-circuits: without required the field is
// simply valid, with required only the required message is emitted. A present
// value runs every remaining constraint and all failures are collected, so
// the caller sees the full diagnosis in one pass. Fields not mentioned in the
// set are ignored.
func (s *Set) Validate(record map[string]any) Errors {
	errs := make(Errors)
	for _, fr := range s.fields {
		value, ok := record[fr.field]
		if isEmpty(value, ok) {
			if fr.required {
				errs[fr.field] = []string{fr.field + " is required"}
			}
			continue
		}
		for _, c := range fr.constraints {
			if msg := evaluate(fr.field, value, c); msg != "" {
				errs[fr.field] = append(errs[fr.field], msg)
			}
		}
	}
	return errs
}

func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// evaluate returns the failure message for one constraint, or "" on success.
func evaluate(field string, value any, c Constraint) string {
	switch c.Kind {
	case String:
		if _, ok := value.(string); !ok {
			return field + " must be a string"
		}
	case Boolean:
		if _, ok := value.(bool); !ok {
			return field + " must be a boolean"
		}
	case Email:
		s, ok := value.(string)
		if !ok || !emailRe.MatchString(s) {
			return field + " must be a valid email"
		}
	case Numeric:
		if !isNumeric(value) {
			return field + " must be numeric"
		}
	case Min:
		if s, ok := value.(string); ok {
			if utf8.RuneCountInString(s) < c.N {
				return fmt.Sprintf("%s must be at least %d characters", field, c.N)
			}
		} else if n, ok := asNumber(value); ok && n < float64(c.N) {
			return fmt.Sprintf("%s must be at least %d", field, c.N)
		}
	case Max:
		if s, ok := value.(string); ok {
			if utf8.RuneCountInString(s) > c.N {
				return fmt.Sprintf("%s must not exceed %d characters", field, c.N)
			}
		} else if n, ok := asNumber(value); ok && n > float64(c.N) {
			return fmt.Sprintf("%s must not exceed %d", field, c.N)
		}
	case In:
		s, ok := value.(string)
		if !ok || !contains(c.Oneof, s) {
			return fmt.Sprintf("%s must be one of: %s", field, strings.Join(c.Oneof, ", "))
		}
	}
	return ""
}

func isNumeric(value any) bool {
	if _, ok := asNumber(value); ok {
		return true
	}
	if s, ok := value.(string); ok {
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	}
	return false
}

// asNumber normalizes the numeric types encoding/json and plain Go callers
// produce.
func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
