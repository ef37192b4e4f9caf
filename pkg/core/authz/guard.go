// Package authz decides whether a caller may perform an admin-scoped
// mutation. Every function is pure: counts and flags are supplied by the
// caller from a fresh store read, and every input maps to a Decision.
package authz

import "github.com/wadjakorntonsri/favlinks/pkg/core/domain"

// Reason is the machine-stable code attached to a denial
type Reason string

const (
	ReasonForbidden      Reason = "forbidden"
	ReasonSelfDeletion   Reason = "self_deletion"
	ReasonSelfChange     Reason = "self_admin_change"
	ReasonLastAdmin      Reason = "last_admin"
	ReasonUserIDRequired Reason = "user_id_required"
	ReasonInvalidScope   Reason = "invalid_scope"
)

// Kind groups reasons by how a transport should surface them
type Kind int

const (
	KindForbidden Kind = iota + 1
	KindInvariantViolation
	KindInvalidArgument
)

func (r Reason) Kind() Kind {
	switch r {
	case ReasonForbidden:
		return KindForbidden
	case ReasonSelfDeletion, ReasonSelfChange, ReasonLastAdmin:
		return KindInvariantViolation
	default:
		return KindInvalidArgument
	}
}

// Decision is the outcome of a check. The zero value allows.
type Decision struct {
	Reason  Reason
	Message string
}

var allow = Decision{}

func deny(r Reason, msg string) Decision {
	return Decision{Reason: r, Message: msg}
}

func (d Decision) Allowed() bool { return d.Reason == "" }

// Err returns nil for an allowing decision and a *Denial otherwise.
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	return &Denial{Reason: d.Reason, Message: d.Message}
}

// Denial carries a denied Decision through error returns
type Denial struct {
	Reason  Reason
	Message string
}

func (e *Denial) Error() string { return e.Message }

func (e *Denial) Kind() Kind { return e.Reason.Kind() }

// RequireAdmin allows only admins.
func RequireAdmin(caller domain.Caller) Decision {
	if !caller.IsAdmin {
		return deny(ReasonForbidden, "Forbidden")
	}
	return allow
}

// CanDeleteUser checks an admin deleting target. adminCount is only
// consulted when target is an admin.
func CanDeleteUser(caller domain.Caller, target domain.User, adminCount int64) Decision {
	if d := RequireAdmin(caller); !d.Allowed() {
		return d
	}
	if caller.ID == target.ID {
		return deny(ReasonSelfDeletion, "Cannot delete your own account")
	}
	if target.IsAdmin && adminCount <= 1 {
		return deny(ReasonLastAdmin, "Cannot delete the last admin")
	}
	return allow
}

// CanSetAdminFlag checks an admin setting target's admin flag to newValue.
func CanSetAdminFlag(caller domain.Caller, target domain.User, newValue bool, adminCount int64) Decision {
	if d := RequireAdmin(caller); !d.Allowed() {
		return d
	}
	if caller.ID == target.ID {
		return deny(ReasonSelfChange, "Cannot change your own admin status")
	}
	if target.IsAdmin && !newValue && adminCount <= 1 {
		return deny(ReasonLastAdmin, "Cannot demote the last admin")
	}
	return allow
}

// CanDeleteUserLinks allows any admin, including on their own links.
func CanDeleteUserLinks(caller domain.Caller, targetID int64) Decision {
	return RequireAdmin(caller)
}

// CanAccessActivityScope gates count and clear on the activity log.
func CanAccessActivityScope(caller domain.Caller, scope domain.Scope, targetUserID int64) Decision {
	switch scope {
	case domain.ScopeSelf:
		return allow
	case domain.ScopeAll:
		return RequireAdmin(caller)
	case domain.ScopeUser:
		if d := RequireAdmin(caller); !d.Allowed() {
			return d
		}
		if targetUserID <= 0 {
			return deny(ReasonUserIDRequired, "userId required")
		}
		return allow
	default:
		return deny(ReasonInvalidScope, "scope must be one of self, user, all")
	}
}

// ParseScope maps a query value to a Scope, defaulting to self.
func ParseScope(s string) (domain.Scope, Decision) {
	switch domain.Scope(s) {
	case "":
		return domain.ScopeSelf, allow
	case domain.ScopeSelf, domain.ScopeUser, domain.ScopeAll:
		return domain.Scope(s), allow
	default:
		return "", deny(ReasonInvalidScope, "scope must be one of self, user, all")
	}
}
