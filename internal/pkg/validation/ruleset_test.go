package validation

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/yigit/learnhub/internal/pkg/apperrors"
)

func registerRules(taken ...string) RuleSet {
	return RuleSet{
		Name: "register",
		Fields: []Field{
			{Name: "name", Rules: []Rule{Required(), String(), Min(2), Max(16)}},
			{Name: "email", Rules: []Rule{Required(), String(), Email(), Max(64), Unique(func(_ context.Context, v string) (bool, error) {
				return slices.Contains(taken, v), nil
			})}},
			{Name: "password", Rules: []Rule{Required(), String(), StrongPassword()}},
		},
	}
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *apperrors.ValidationError, got %v", err)
	}
	return ve.Errors
}

func TestRuleSetValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload Payload
		want    []string
	}{
		{
			name:    "empty payload reports every required field in order",
			payload: Payload{},
			want: []string{
				"The name field is required.",
				"The email field is required.",
				"The password field is required.",
			},
		},
		{
			name:    "blank strings count as missing",
			payload: Payload{"name": "   ", "email": "a@b.co", "password": "Str0ng!Pass"},
			want:    []string{"The name field is required."},
		},
		{
			name:    "non string stops the field",
			payload: Payload{"name": float64(42), "email": "a@b.co", "password": "Str0ng!Pass"},
			want:    []string{"The name field must be a string."},
		},
		{
			name:    "length bounds",
			payload: Payload{"name": "a", "email": "a@b.co", "password": "Str0ng!Pass"},
			want:    []string{"The name field must be at least 2 characters."},
		},
		{
			name:    "too long",
			payload: Payload{"name": strings.Repeat("x", 17), "email": "a@b.co", "password": "Str0ng!Pass"},
			want:    []string{"The name field must not be greater than 16 characters."},
		},
		{
			name:    "invalid email",
			payload: Payload{"name": "Jane", "email": "not-an-email", "password": "Str0ng!Pass"},
			want:    []string{"The email field must be a valid email address."},
		},
		{
			name:    "taken email is matched case insensitively",
			payload: Payload{"name": "Jane", "email": "Taken@Example.com", "password": "Str0ng!Pass"},
			want:    []string{"The email has already been taken."},
		},
		{
			name:    "weak password lists every unmet requirement",
			payload: Payload{"name": "Jane", "email": "a@b.co", "password": "weak"},
			want: []string{
				"The password field must be at least 8 characters.",
				"The password field must contain at least one uppercase and one lowercase letter.",
				"The password field must contain at least one symbol.",
				"The password field must contain at least one number.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := registerRules("taken@example.com").Validate(t.Context(), tt.payload)
			got := validationMessages(t, err)
			if !slices.Equal(got, tt.want) {
				t.Errorf("messages = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuleSetNormalizes(t *testing.T) {
	t.Parallel()

	validated, err := registerRules().Validate(t.Context(), Payload{
		"name":     "  Jane ",
		"email":    "Jane@Example.COM",
		"password": "Str0ng!Pass",
		"role":     "admin",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if validated.String("name") != "Jane" {
		t.Errorf("name = %q, want trimmed", validated.String("name"))
	}
	if validated.String("email") != "jane@example.com" {
		t.Errorf("email = %q, want lower-cased", validated.String("email"))
	}
	if validated.Has("role") {
		t.Error("undeclared field leaked into validated payload")
	}
}

func TestSometimes(t *testing.T) {
	t.Parallel()

	update := RuleSet{
		Name: "update",
		Fields: []Field{
			{Name: "title", Sometimes: true, Rules: []Rule{Required(), String(), Min(2), Max(64)}},
			{Name: "summary", Sometimes: true, Rules: []Rule{Required(), String(), Min(2), Max(128)}},
		},
	}

	t.Run("absent fields are skipped", func(t *testing.T) {
		t.Parallel()
		validated, err := update.Validate(t.Context(), Payload{})
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if len(validated) != 0 {
			t.Errorf("validated = %v, want empty", validated)
		}
	})

	t.Run("present fields must still be valid", func(t *testing.T) {
		t.Parallel()
		_, err := update.Validate(t.Context(), Payload{"title": "", "summary": "x"})
		want := []string{"The title field is required.", "The summary field must be at least 2 characters."}
		if got := validationMessages(t, err); !slices.Equal(got, want) {
			t.Errorf("messages = %q, want %q", got, want)
		}
	})

	t.Run("present valid field is kept", func(t *testing.T) {
		t.Parallel()
		validated, err := update.Validate(t.Context(), Payload{"title": "Go 101"})
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if p := validated.StringPtr("title"); p == nil || *p != "Go 101" {
			t.Errorf("title = %v", p)
		}
		if validated.StringPtr("summary") != nil {
			t.Error("summary should be absent")
		}
	})
}

func TestNoTrim(t *testing.T) {
	t.Parallel()

	rs := RuleSet{Name: "login", Fields: []Field{
		{Name: "email", Rules: []Rule{Required(), String()}},
		{Name: "password", NoTrim: true, Rules: []Rule{Required(), String()}},
	}}

	validated, err := rs.Validate(t.Context(), Payload{"email": "  a@b.co ", "password": "  secret "})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if validated["email"] != "a@b.co" {
		t.Errorf("email = %q, want trimmed", validated["email"])
	}
	if validated["password"] != "  secret " {
		t.Errorf("password = %q, want untouched", validated["password"])
	}

	_, err = rs.Validate(t.Context(), Payload{"email": "a@b.co", "password": "   "})
	if got := validationMessages(t, err); !slices.Equal(got, []string{"The password field is required."}) {
		t.Errorf("blank password messages = %q", got)
	}
}

func TestInteger(t *testing.T) {
	t.Parallel()

	rs := RuleSet{Name: "page", Fields: []Field{{Name: "page", Rules: []Rule{Required(), Integer()}}}}

	for _, input := range []any{float64(3), "3", " 3 "} {
		validated, err := rs.Validate(t.Context(), Payload{"page": input})
		if err != nil {
			t.Fatalf("Validate(%v) error = %v", input, err)
		}
		if n, ok := validated["page"].(int64); !ok || n != 3 {
			t.Errorf("Validate(%v) page = %v", input, validated["page"])
		}
	}

	_, err := rs.Validate(t.Context(), Payload{"page": 2.5})
	want := []string{"The page field must be an integer."}
	if got := validationMessages(t, err); !slices.Equal(got, want) {
		t.Errorf("messages = %q", got)
	}
}

func TestUniqueLookupFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	rs := RuleSet{Name: "register", Fields: []Field{{Name: "email", Rules: []Rule{
		Required(), Email(), Unique(func(context.Context, string) (bool, error) { return false, boom }),
	}}}}

	_, err := rs.Validate(t.Context(), Payload{"email": "a@b.co"})
	if !errors.Is(err, boom) {
		t.Fatalf("Validate() error = %v, want lookup error", err)
	}
	if errors.Is(err, apperrors.ErrValidationFailed) {
		t.Error("store failure must not be reported as a validation error")
	}
}

func TestStrongPassword(t *testing.T) {
	t.Parallel()

	rule := StrongPassword()

	tests := map[string]bool{
		"Str0ng!Pass":   true,
		"Sh0rt!":        false,
		"nouppercase1!": false,
		"NOLOWERCASE1!": false,
		"NoDigits!!":    false,
		"NoSymbols123":  false,
		"Spaced Out 1":  true,
	}
	for password, want := range tests {
		msgs, err := rule.Check(t.Context(), "password", password)
		if err != nil {
			t.Fatalf("Check(%q) error = %v", password, err)
		}
		if got := len(msgs) == 0; got != want {
			t.Errorf("Check(%q) passed = %v, want %v (%q)", password, got, want, msgs)
		}
	}
}
