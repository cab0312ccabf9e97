package auth

import (
	"github.com/yigit/learnhub/internal/app/models"
)

// Route names every endpoint the policy knows about.
type Route string

const (
	RouteHealth      Route = "health"
	RouteCreateAdmin Route = "auth.create-admin"
	RouteRegister    Route = "auth.register"
	RouteLogin       Route = "auth.login"
	RouteLogout      Route = "auth.logout"

	RouteCourseList      Route = "courses.list"
	RouteCourseShow      Route = "courses.show"
	RouteCourseStore     Route = "courses.store"
	RouteCourseUpdate    Route = "courses.update"
	RouteCourseDestroy   Route = "courses.destroy"
	RouteCoursePublish   Route = "courses.publish"
	RouteCourseUnpublish Route = "courses.unpublish"
	RouteCourseEnroll    Route = "courses.enroll"
	RouteCourseUnenroll  Route = "courses.unenroll"
)

// Requirement is what a caller must present to reach a route.
type Requirement int

const (
	// Exempt routes skip the authentication gate.
	Exempt Requirement = iota
	// Authenticated routes accept any valid identity.
	Authenticated
	AdminOnly
	StudentOnly
)

func (r Requirement) String() string {
	switch r {
	case Exempt:
		return "exempt"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	case StudentOnly:
		return "student"
	default:
		return "unknown"
	}
}

var defaultRules = map[Route]Requirement{
	RouteHealth:      Exempt,
	RouteCreateAdmin: Exempt,
	RouteRegister:    Exempt,
	RouteLogin:       Exempt,
	RouteLogout:      Authenticated,

	RouteCourseList:      Authenticated,
	RouteCourseShow:      Authenticated,
	RouteCourseStore:     AdminOnly,
	RouteCourseUpdate:    AdminOnly,
	RouteCourseDestroy:   AdminOnly,
	RouteCoursePublish:   AdminOnly,
	RouteCourseUnpublish: AdminOnly,
	RouteCourseEnroll:    StudentOnly,
	RouteCourseUnenroll:  StudentOnly,
}

// Policy is the single place deciding which role may reach which route.
type Policy struct {
	rules map[Route]Requirement
}

// NewPolicy returns the policy of the public API.
func NewPolicy() *Policy {
	rules := make(map[Route]Requirement, len(defaultRules))
	for route, requirement := range defaultRules {
		rules[route] = requirement
	}
	return &Policy{rules: rules}
}

// Requirement returns what route demands; ok is false for unknown routes.
func (p *Policy) Requirement(route Route) (Requirement, bool) {
	requirement, ok := p.rules[route]
	return requirement, ok
}

// Allowed reports whether a caller holding role may reach route. Unknown
// routes and unknown roles are denied.
func (p *Policy) Allowed(role models.RoleType, route Route) bool {
	requirement, ok := p.rules[route]
	if !ok {
		return false
	}
	if requirement == Exempt {
		return true
	}
	if !role.Valid() {
		return false
	}

	switch requirement {
	case Authenticated:
		return true
	case AdminOnly:
		return role == models.RoleAdmin
	case StudentOnly:
		return role == models.RoleStudent
	default:
		return false
	}
}

// Routes returns every route the policy knows about.
func (p *Policy) Routes() []Route {
	routes := make([]Route, 0, len(p.rules))
	for route := range p.rules {
		routes = append(routes, route)
	}
	return routes
}
