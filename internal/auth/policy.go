// Package auth holds the authorization policy and the OAuth identity provider.
package auth

import "strings"

// Policy decides which authenticated emails hold admin access. It is built
// once from configuration and injected into the handlers, so tests can swap
// in their own allow-list without a real identity provider.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy builds a policy from an admin email allow-list.
// Emails are matched case-insensitively.
func NewPolicy(adminEmails []string) *Policy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Policy{admins: admins}
}

// IsAdmin reports whether the email belongs to an administrator.
func (p *Policy) IsAdmin(email string) bool {
	_, ok := p.admins[strings.ToLower(email)]
	return ok
}
