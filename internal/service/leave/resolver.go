package leave

import (
	"fmt"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/validator"
)

// IdentityResolver maps a task requester's display name to a roster entry
// through the directory's name -> email links.
type IdentityResolver struct {
	emailsByName map[string][]string
	roster       map[string]leave.EmployeeRecord
}

// NewIdentityResolver indexes users by normalized display name and the roster
// by normalized email. A user listed twice with the same email counts once.
// Roster rows without an email are dropped; a later row
// with the same email replaces an earlier one.
func NewIdentityResolver(users []leave.DirectoryUser, roster []leave.EmployeeRecord) *IdentityResolver {
	r := &IdentityResolver{
		emailsByName: make(map[string][]string, len(users)),
		roster:       make(map[string]leave.EmployeeRecord, len(roster)),
	}

	for _, u := range users {
		key := leave.NormalizeName(u.Name)
		email := leave.NormalizeEmail(u.Email)
		if validator.IsInSlice(email, r.emailsByName[key]) {
			continue
		}
		r.emailsByName[key] = append(r.emailsByName[key], email)
	}

	for _, emp := range roster {
		key := leave.NormalizeEmail(emp.Email)
		if key == "" {
			continue
		}
		emp.Email = key
		r.roster[key] = emp
	}

	return r
}

// Resolve returns the roster entry for requester. Display names shared by
// more than one directory user are refused with ErrAmbiguousRequester.
func (r *IdentityResolver) Resolve(requester string) (leave.EmployeeRecord, error) {
	emails := r.emailsByName[leave.NormalizeName(requester)]
	switch {
	case len(emails) == 0:
		return leave.EmployeeRecord{}, fmt.Errorf("%w: %q", leave.ErrRequesterNotInDirectory, requester)
	case len(emails) > 1:
		return leave.EmployeeRecord{}, fmt.Errorf("%w: %q (%d users)", leave.ErrAmbiguousRequester, requester, len(emails))
	}

	emp, ok := r.roster[emails[0]]
	if !ok {
		return leave.EmployeeRecord{}, fmt.Errorf("%w: %q", leave.ErrEmployeeNotInRoster, emails[0])
	}
	return emp, nil
}
