package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Custom validator tags backing the password rules
const (
	TagMixedCase = "mixedcase"
	TagHasLetter = "hasletter"
	TagHasNumber = "hasnumber"
	TagHasSymbol = "hassymbol"
)

// PasswordMinLength is the minimum length of a strong password
const PasswordMinLength = 8

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, TagMixedCase, func(s string) bool {
		return strings.IndexFunc(s, unicode.IsUpper) >= 0 && strings.IndexFunc(s, unicode.IsLower) >= 0
	})
	mustRegister(v, TagHasLetter, func(s string) bool {
		return strings.IndexFunc(s, unicode.IsLetter) >= 0
	})
	mustRegister(v, TagHasNumber, func(s string) bool {
		return strings.IndexFunc(s, unicode.IsNumber) >= 0
	})
	mustRegister(v, TagHasSymbol, func(s string) bool {
		return strings.IndexFunc(s, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.Is(unicode.Zs, r)
		}) >= 0
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// CheckFunc inspects a value and returns the messages of every unmet
// requirement. A non-nil error aborts validation altogether.
type CheckFunc func(ctx context.Context, attribute string, value any) ([]string, error)

// Rule is a single validation step applied to one field.
type Rule struct {
	Name string
	// Implicit rules also run when the value is missing or empty.
	Implicit bool
	// Bail stops the remaining rules of the field when this one fails.
	Bail  bool
	Check CheckFunc
	// Transform rewrites the value for later rules and the validated
	// payload once the check passed.
	Transform func(value any) any
}

func displayName(attribute string) string {
	return strings.ReplaceAll(attribute, "_", " ")
}

func tagRule(name, tag, message string) Rule {
	return Rule{
		Name: name,
		Check: func(_ context.Context, attribute string, value any) ([]string, error) {
			s, ok := value.(string)
			if !ok || validate.Var(s, tag) != nil {
				return []string{fmt.Sprintf(message, displayName(attribute))}, nil
			}
			return nil, nil
		},
	}
}

// Required fails on missing, null, empty or blank values.
func Required() Rule {
	return Rule{
		Name:     "required",
		Implicit: true,
		Bail:     true,
		Check: func(_ context.Context, attribute string, value any) ([]string, error) {
			if isEmpty(value) {
				return []string{fmt.Sprintf("The %s field is required.", displayName(attribute))}, nil
			}
			return nil, nil
		},
	}
}

// String requires a JSON string.
func String() Rule {
	return Rule{
		Name: "string",
		Bail: true,
		Check: func(_ context.Context, attribute string, value any) ([]string, error) {
			if _, ok := value.(string); !ok {
				return []string{fmt.Sprintf("The %s field must be a string.", displayName(attribute))}, nil
			}
			return nil, nil
		},
	}
}

// Min requires at least n characters.
func Min(n int) Rule {
	return tagRule("min", "min="+strconv.Itoa(n),
		"The %s field must be at least "+strconv.Itoa(n)+" characters.")
}

// Max allows at most n characters.
func Max(n int) Rule {
	return tagRule("max", "max="+strconv.Itoa(n),
		"The %s field must not be greater than "+strconv.Itoa(n)+" characters.")
}

// Email requires a syntactically valid address and lower-cases it.
func Email() Rule {
	rule := tagRule("email", "email", "The %s field must be a valid email address.")
	rule.Transform = func(value any) any {
		if s, ok := value.(string); ok {
			return strings.ToLower(s)
		}
		return value
	}
	return rule
}

// Integer accepts JSON integers and numeric strings, normalized to int64.
func Integer() Rule {
	return Rule{
		Name: "integer",
		Bail: true,
		Check: func(_ context.Context, attribute string, value any) ([]string, error) {
			if _, ok := toInt64(value); !ok {
				return []string{fmt.Sprintf("The %s field must be an integer.", displayName(attribute))}, nil
			}
			return nil, nil
		},
		Transform: func(value any) any {
			n, _ := toInt64(value)
			return n
		},
	}
}

// LookupFunc reports whether value is already taken in the store.
type LookupFunc func(ctx context.Context, value string) (bool, error)

// Unique rejects values the store already holds.
func Unique(exists LookupFunc) Rule {
	return Rule{
		Name: "unique",
		Check: func(ctx context.Context, attribute string, value any) ([]string, error) {
			s, ok := value.(string)
			if !ok {
				return nil, nil
			}
			taken, err := exists(ctx, s)
			if err != nil {
				return nil, fmt.Errorf("unique %s lookup: %w", attribute, err)
			}
			if taken {
				return []string{fmt.Sprintf("The %s has already been taken.", displayName(attribute))}, nil
			}
			return nil, nil
		},
	}
}

// StrongPassword is the composite password policy. Each unmet requirement
// yields its own message.
func StrongPassword() Rule {
	parts := []Rule{
		Min(PasswordMinLength),
		tagRule("mixedcase", TagMixedCase, "The %s field must contain at least one uppercase and one lowercase letter."),
		tagRule("letters", TagHasLetter, "The %s field must contain at least one letter."),
		tagRule("symbols", TagHasSymbol, "The %s field must contain at least one symbol."),
		tagRule("numbers", TagHasNumber, "The %s field must contain at least one number."),
	}

	return Rule{
		Name: "password",
		Check: func(ctx context.Context, attribute string, value any) ([]string, error) {
			var messages []string
			for _, part := range parts {
				msgs, err := part.Check(ctx, attribute, value)
				if err != nil {
					return nil, err
				}
				messages = append(messages, msgs...)
			}
			return messages, nil
		},
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
