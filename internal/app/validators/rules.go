// Package validators declares the input rules of every API endpoint.
package validators

import (
	"github.com/yigit/learnhub/internal/pkg/validation"
)

// Field limits
const (
	NameMin, NameMax               = 2, 16
	EmailMax                       = 64
	PasswordMin, PasswordMax       = 8, 64
	TitleMin, TitleMax             = 2, 64
	SummaryMin, SummaryMax         = 2, 128
	DescriptionMin, DescriptionMax = 2, 256
)

// Rules holds the rule sets of the API.
type Rules struct {
	Register     validation.RuleSet
	CreateAdmin  validation.RuleSet
	Login        validation.RuleSet
	CourseCreate validation.RuleSet
	CourseUpdate validation.RuleSet
}

// NewRules builds the rule sets. emailTaken backs the unique email rule.
func NewRules(emailTaken validation.LookupFunc) *Rules {
	return &Rules{
		Register:     accountRules("register", emailTaken),
		CreateAdmin:  accountRules("create-admin", emailTaken),
		Login:        loginRules(),
		CourseCreate: courseRules("course.create", false),
		CourseUpdate: courseRules("course.update", true),
	}
}

func accountRules(name string, emailTaken validation.LookupFunc) validation.RuleSet {
	return validation.RuleSet{
		Name: name,
		Fields: []validation.Field{
			{Name: "name", Rules: []validation.Rule{
				validation.Required(), validation.String(), validation.Min(NameMin), validation.Max(NameMax),
			}},
			{Name: "email", Rules: []validation.Rule{
				validation.Required(), validation.String(), validation.Email(), validation.Max(EmailMax),
				validation.Unique(emailTaken),
			}},
			{Name: "password", NoTrim: true, Rules: []validation.Rule{
				validation.Required(), validation.String(), validation.StrongPassword(), validation.Max(PasswordMax),
			}},
		},
	}
}

// Login checks shape only; whether the account exists is never revealed.
func loginRules() validation.RuleSet {
	return validation.RuleSet{
		Name: "login",
		Fields: []validation.Field{
			{Name: "email", Rules: []validation.Rule{
				validation.Required(), validation.String(), validation.Email(), validation.Max(EmailMax),
			}},
			{Name: "password", NoTrim: true, Rules: []validation.Rule{
				validation.Required(), validation.String(), validation.Min(PasswordMin), validation.Max(PasswordMax),
			}},
		},
	}
}

func courseRules(name string, partial bool) validation.RuleSet {
	field := func(key string, min, max int) validation.Field {
		return validation.Field{
			Name:      key,
			Sometimes: partial,
			Rules: []validation.Rule{
				validation.Required(), validation.String(), validation.Min(min), validation.Max(max),
			},
		}
	}

	return validation.RuleSet{
		Name: name,
		Fields: []validation.Field{
			field("title", TitleMin, TitleMax),
			field("summary", SummaryMin, SummaryMax),
			field("description", DescriptionMin, DescriptionMax),
		},
	}
}
