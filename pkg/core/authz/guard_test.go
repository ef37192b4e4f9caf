package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
)

var (
	admin    = domain.Caller{ID: 1, Username: "alice", IsAdmin: true}
	nonAdmin = domain.Caller{ID: 3, Username: "carol"}
)

func TestCanDeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		caller     domain.Caller
		target     domain.User
		adminCount int64
		want       Reason
	}{
		{"non admin caller", nonAdmin, domain.User{ID: 2}, 2, ReasonForbidden},
		{"self with many admins", admin, domain.User{ID: 1, IsAdmin: true}, 5, ReasonSelfDeletion},
		{"self as last admin", admin, domain.User{ID: 1, IsAdmin: true}, 1, ReasonSelfDeletion},
		{"last admin", admin, domain.User{ID: 2, IsAdmin: true}, 1, ReasonLastAdmin},
		{"admin count zero", admin, domain.User{ID: 2, IsAdmin: true}, 0, ReasonLastAdmin},
		{"one of two admins", admin, domain.User{ID: 2, IsAdmin: true}, 2, ""},
		{"regular user with one admin", admin, domain.User{ID: 2}, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanDeleteUser(tt.caller, tt.target, tt.adminCount)
			assert.Equal(t, tt.want, d.Reason)
			assert.Equal(t, tt.want == "", d.Allowed())
		})
	}
}

func TestCanSetAdminFlag(t *testing.T) {
	tests := []struct {
		name       string
		caller     domain.Caller
		target     domain.User
		newValue   bool
		adminCount int64
		want       Reason
	}{
		{"non admin caller", nonAdmin, domain.User{ID: 2}, true, 1, ReasonForbidden},
		{"self demote last admin", admin, domain.User{ID: 1, IsAdmin: true}, false, 1, ReasonSelfChange},
		{"self promote", admin, domain.User{ID: 1, IsAdmin: true}, true, 3, ReasonSelfChange},
		{"demote last admin", admin, domain.User{ID: 2, IsAdmin: true}, false, 1, ReasonLastAdmin},
		{"demote one of two", admin, domain.User{ID: 2, IsAdmin: true}, false, 2, ""},
		{"promote with one admin", admin, domain.User{ID: 2}, true, 1, ""},
		{"keep admin flag with one admin", admin, domain.User{ID: 2, IsAdmin: true}, true, 1, ""},
		{"demote non admin", admin, domain.User{ID: 2}, false, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanSetAdminFlag(tt.caller, tt.target, tt.newValue, tt.adminCount)
			assert.Equal(t, tt.want, d.Reason)
		})
	}
}

func TestDenialMessagesAreDistinct(t *testing.T) {
	target := domain.User{ID: 2, IsAdmin: true}
	self := domain.User{ID: admin.ID, IsAdmin: true}

	msgs := map[string]bool{
		CanDeleteUser(admin, self, 1).Message:            true,
		CanDeleteUser(admin, target, 1).Message:          true,
		CanSetAdminFlag(admin, self, false, 1).Message:   true,
		CanSetAdminFlag(admin, target, false, 1).Message: true,
	}
	assert.Len(t, msgs, 4)
	assert.True(t, msgs["Cannot delete the last admin"])
	assert.True(t, msgs["Cannot demote the last admin"])
}

func TestCanDeleteUserLinks(t *testing.T) {
	assert.True(t, CanDeleteUserLinks(admin, admin.ID).Allowed())
	assert.True(t, CanDeleteUserLinks(admin, 9).Allowed())
	assert.Equal(t, ReasonForbidden, CanDeleteUserLinks(nonAdmin, 9).Reason)
}

func TestCanAccessActivityScope(t *testing.T) {
	tests := []struct {
		name   string
		caller domain.Caller
		scope  domain.Scope
		target int64
		want   Reason
	}{
		{"self for user", nonAdmin, domain.ScopeSelf, 0, ""},
		{"all for user", nonAdmin, domain.ScopeAll, 0, ReasonForbidden},
		{"user scope for user", nonAdmin, domain.ScopeUser, 4, ReasonForbidden},
		{"user scope for user without id", nonAdmin, domain.ScopeUser, 0, ReasonForbidden},
		{"all for admin", admin, domain.ScopeAll, 0, ""},
		{"user scope without id", admin, domain.ScopeUser, 0, ReasonUserIDRequired},
		{"user scope negative id", admin, domain.ScopeUser, -2, ReasonUserIDRequired},
		{"user scope", admin, domain.ScopeUser, 4, ""},
		{"unknown scope", admin, domain.Scope("everyone"), 0, ReasonInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessActivityScope(tt.caller, tt.scope, tt.target).Reason)
		})
	}
}

func TestParseScope(t *testing.T) {
	s, d := ParseScope("")
	assert.True(t, d.Allowed())
	assert.Equal(t, domain.ScopeSelf, s)

	s, d = ParseScope("all")
	assert.True(t, d.Allowed())
	assert.Equal(t, domain.ScopeAll, s)

	_, d = ParseScope("ALL")
	assert.Equal(t, ReasonInvalidScope, d.Reason)
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, allow.Err())

	err := CanDeleteUser(admin, domain.User{ID: 2, IsAdmin: true}, 1).Err()
	require.Error(t, err)

	var denial *Denial
	require.True(t, errors.As(err, &denial))
	assert.Equal(t, ReasonLastAdmin, denial.Reason)
	assert.Equal(t, KindInvariantViolation, denial.Kind())
	assert.Equal(t, KindForbidden, ReasonForbidden.Kind())
	assert.Equal(t, KindInvalidArgument, ReasonUserIDRequired.Kind())
}
