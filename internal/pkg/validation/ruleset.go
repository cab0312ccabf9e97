package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/learnhub/internal/pkg/apperrors"
)

// Payload is a decoded JSON request body.
type Payload map[string]any

// Has reports whether key was supplied.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string stored under key, or "".
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// StringPtr returns the string stored under key, or nil when absent.
func (p Payload) StringPtr(key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Field binds an ordered list of rules to one payload key.
type Field struct {
	Name string
	// Sometimes skips the field entirely when the key is absent.
	Sometimes bool
	// NoTrim keeps surrounding whitespace, as passwords need.
	NoTrim bool
	Rules  []Rule
}

// RuleSet is the declarative description of one endpoint's input.
type RuleSet struct {
	Name   string
	Fields []Field
}

// Validate checks payload against the rule set. It returns the normalized
// payload holding only declared fields, or an *apperrors.ValidationError
// listing every message in field then rule order. Store failures are
// returned as plain errors.
func (rs RuleSet) Validate(ctx context.Context, payload Payload) (Payload, error) {
	validated := make(Payload, len(rs.Fields))
	errs := NewErrors()

	for _, field := range rs.Fields {
		value, present := payload[field.Name]
		if field.Sometimes && !present {
			continue
		}
		if s, ok := value.(string); ok && !field.NoTrim {
			value = strings.TrimSpace(s)
		}

		failed := false
		empty := isEmpty(value)
		for _, rule := range field.Rules {
			if empty && !rule.Implicit {
				continue
			}

			if rule.Check != nil {
				messages, err := rule.Check(ctx, field.Name, value)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", rs.Name, err)
				}
				if len(messages) > 0 {
					errs.Add(field.Name, messages...)
					failed = true
					if rule.Bail {
						break
					}
					continue
				}
			}

			if rule.Transform != nil && !failed {
				value = rule.Transform(value)
			}
		}

		if !failed && present && value != nil {
			validated[field.Name] = value
		}
	}

	if !errs.Empty() {
		return nil, apperrors.NewValidationError(errs.All()...)
	}
	return validated, nil
}

// Errors collects messages per field, preserving insertion order.
type Errors struct {
	order    []string
	messages map[string][]string
}

// NewErrors returns an empty error bag.
func NewErrors() *Errors {
	return &Errors{messages: make(map[string][]string)}
}

// Add appends messages to field.
func (e *Errors) Add(field string, messages ...string) {
	if _, seen := e.messages[field]; !seen {
		e.order = append(e.order, field)
	}
	e.messages[field] = append(e.messages[field], messages...)
}

// Empty reports whether no message was recorded.
func (e *Errors) Empty() bool {
	return len(e.order) == 0
}

// All flattens the bag into one list, field by field.
func (e *Errors) All() []string {
	all := make([]string, 0, len(e.order))
	for _, field := range e.order {
		all = append(all, e.messages[field]...)
	}
	return all
}
