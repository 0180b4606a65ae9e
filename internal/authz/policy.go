// Package authz decides whether a request may reach a route. Rules are
// evaluated in declaration order and the first match wins.
package authz

import (
	"net/http"
	"slices"
	"strings"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/errors"

	"github.com/gobwas/glob"
)

const (
	pathSeparator = '/'
	anyTail       = "/**"
)

type accessKind int

const (
	accessAuthenticated accessKind = iota
	accessPublic
	accessRole
)

// Access is the requirement a rule places on the caller.
type Access struct {
	kind accessKind
	role entity.Role
}

// Public lets anonymous callers through.
func Public() Access { return Access{kind: accessPublic} }

// Authenticated requires any verified principal.
func Authenticated() Access { return Access{kind: accessAuthenticated} }

// RequireRole requires a verified principal acting under role.
func RequireRole(role entity.Role) Access { return Access{kind: accessRole, role: role} }

func (a Access) String() string {
	switch a.kind {
	case accessPublic:
		return "public"
	case accessRole:
		return "role:" + a.role.String()
	default:
		return "authenticated"
	}
}

// Decision is the outcome of evaluating a request against a Policy.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Rule binds an ant-style path pattern, optionally narrowed to some HTTP
// methods, to an Access requirement. An empty Methods list matches any method.
//
// In Pattern, "*" matches within one segment and a trailing "/**" matches the
// prefix itself plus any number of further segments.
type Rule struct {
	Pattern string
	Methods []string
	Access  Access
}

type compiledRule struct {
	matchers []glob.Glob
	methods  []string
	access   Access
}

func (r compiledRule) matches(method, path string) bool {
	if len(r.methods) > 0 && !slices.Contains(r.methods, method) {
		return false
	}

	for _, m := range r.matchers {
		if m.Match(path) {
			return true
		}
	}

	return false
}

// Policy is an immutable, ordered rule table. It is safe for concurrent use.
type Policy struct {
	rules    []compiledRule
	fallback Access
}

// NewPolicy compiles rules. Requests that match no rule require authentication.
func NewPolicy(rules []Rule) (*Policy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		if !strings.HasPrefix(rule.Pattern, "/") {
			return nil, errors.Errorf("rule %d: pattern %q must start with /", i, rule.Pattern)
		}

		patterns := []string{rule.Pattern}
		if prefix, ok := strings.CutSuffix(rule.Pattern, anyTail); ok {
			if prefix == "" {
				prefix = "/"
			}
			patterns = append(patterns, prefix)
		}

		cr := compiledRule{access: rule.Access}
		for _, p := range patterns {
			g, err := glob.Compile(p, pathSeparator)
			if err != nil {
				return nil, errors.Wrapf(err, "rule %d: invalid pattern %q", i, rule.Pattern)
			}
			cr.matchers = append(cr.matchers, g)
		}
		for _, m := range rule.Methods {
			cr.methods = append(cr.methods, strings.ToUpper(m))
		}
		compiled = append(compiled, cr)
	}

	return &Policy{rules: compiled, fallback: Authenticated()}, nil
}

// Resolve returns the Access of the first rule matching the request, or the fallback.
func (p *Policy) Resolve(method, path string) Access {
	method = strings.ToUpper(method)
	path = normalizePath(path)

	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return rule.access
		}
	}

	return p.fallback
}

// Decide evaluates the request. A nil principal is an anonymous caller.
func (p *Policy) Decide(method, path string, principal *entity.Principal) Decision {
	access := p.Resolve(method, path)

	switch access.kind {
	case accessPublic:
		return Allow
	case accessRole:
		if principal == nil {
			return DenyUnauthenticated
		}
		if !principal.HasRole(access.role) {
			return DenyForbidden
		}

		return Allow
	default:
		if principal == nil {
			return DenyUnauthenticated
		}

		return Allow
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}

	return path
}

// DefaultRules is the route security of the job marketplace.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/**", Methods: []string{http.MethodOptions}, Access: Public()},
		{Pattern: "/api/auth/profile", Access: Authenticated()},
		{Pattern: "/api/auth/change-password", Access: Authenticated()},
		{Pattern: "/api/auth/**", Access: Public()},
		{Pattern: "/api/jobs/employer/**", Access: RequireRole(entity.RoleEmployer)},
		{Pattern: "/api/jobs/saved", Access: Authenticated()},
		{Pattern: "/api/jobs/*/save", Access: Authenticated()},
		{Pattern: "/api/jobs", Methods: []string{http.MethodPost}, Access: RequireRole(entity.RoleEmployer)},
		{Pattern: "/api/jobs/**", Methods: []string{http.MethodPut, http.MethodDelete}, Access: RequireRole(entity.RoleEmployer)},
		{Pattern: "/api/applications/**", Access: Authenticated()},
		{Pattern: "/api/jobs/**", Access: Public()},
		{Pattern: "/health", Access: Public()},
		{Pattern: "/metrics", Access: Public()},
	}
}

// NewDefaultPolicy compiles DefaultRules.
func NewDefaultPolicy() (*Policy, error) {
	return NewPolicy(DefaultRules())
}
