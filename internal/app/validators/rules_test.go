package validators

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/validation"
)

func newTestRules() *Rules {
	return NewRules(func(_ context.Context, email string) (bool, error) {
		return email == "taken@example.com", nil
	})
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ve.Errors
}

func TestAccountRules(t *testing.T) {
	t.Parallel()
	rules := newTestRules()

	for _, rs := range []validation.RuleSet{rules.Register, rules.CreateAdmin} {
		t.Run(rs.Name, func(t *testing.T) {
			t.Parallel()

			if _, err := rs.Validate(t.Context(), validation.Payload{
				"name": "Jane", "email": "jane@example.com", "password": "Str0ng!Pass",
			}); err != nil {
				t.Fatalf("valid payload rejected: %v", err)
			}

			_, err := rs.Validate(t.Context(), validation.Payload{
				"name": "Jane", "email": "taken@example.com", "password": "Str0ng!Pass",
			})
			if got := messages(t, err); !slices.Equal(got, []string{"The email has already been taken."}) {
				t.Errorf("messages = %q", got)
			}

			_, err = rs.Validate(t.Context(), validation.Payload{
				"name": "Jane", "email": "jane@example.com", "password": "Str0ng!" + strings.Repeat("a", 60),
			})
			if got := messages(t, err); !slices.Equal(got, []string{"The password field must not be greater than 64 characters."}) {
				t.Errorf("messages = %q", got)
			}

			validated, err := rs.Validate(t.Context(), validation.Payload{
				"name": " Jane ", "email": "jane@example.com", "password": " Password123 ",
			})
			if err != nil {
				t.Fatalf("space as symbol rejected: %v", err)
			}
			if validated["password"] != " Password123 " || validated["name"] != "Jane" {
				t.Errorf("validated = %v", validated)
			}
		})
	}
}

func TestLoginRules(t *testing.T) {
	t.Parallel()
	rules := newTestRules()

	if _, err := rules.Login.Validate(t.Context(), validation.Payload{
		"email": "nobody@example.com", "password": "whatever1",
	}); err != nil {
		t.Fatalf("login must not check existence or strength: %v", err)
	}

	_, err := rules.Login.Validate(t.Context(), validation.Payload{"email": "x", "password": "short"})
	want := []string{
		"The email field must be a valid email address.",
		"The password field must be at least 8 characters.",
	}
	if got := messages(t, err); !slices.Equal(got, want) {
		t.Errorf("messages = %q, want %q", got, want)
	}
}

func TestLoginKeepsPasswordWhitespace(t *testing.T) {
	t.Parallel()

	validated, err := newTestRules().Login.Validate(t.Context(), validation.Payload{
		"email": " Jane@Example.com ", "password": " Password123$",
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if validated["password"] != " Password123$" || validated["email"] != "jane@example.com" {
		t.Errorf("validated = %v", validated)
	}
}

func TestCourseRules(t *testing.T) {
	t.Parallel()
	rules := newTestRules()

	_, err := rules.CourseCreate.Validate(t.Context(), validation.Payload{})
	want := []string{
		"The title field is required.",
		"The summary field is required.",
		"The description field is required.",
	}
	if got := messages(t, err); !slices.Equal(got, want) {
		t.Errorf("create messages = %q", got)
	}

	_, err = rules.CourseCreate.Validate(t.Context(), validation.Payload{
		"title": strings.Repeat("t", TitleMax+1), "summary": "ok", "description": "ok",
	})
	if got := messages(t, err); !slices.Equal(got, []string{"The title field must not be greater than 64 characters."}) {
		t.Errorf("create messages = %q", got)
	}

	validated, err := rules.CourseUpdate.Validate(t.Context(), validation.Payload{"summary": "New summary"})
	if err != nil {
		t.Fatalf("partial update rejected: %v", err)
	}
	if validated.Has("title") || validated.String("summary") != "New summary" {
		t.Errorf("validated = %v", validated)
	}
}
