package domain

import "time"

// ActionKind enumerates the mutations recorded in the activity log
type ActionKind string

const (
	ActionCreateLink      ActionKind = "create_link"
	ActionDeleteLink      ActionKind = "delete_link"
	ActionUpdateAdminFlag ActionKind = "update_admin_flag"
	ActionDeleteUser      ActionKind = "delete_user"
	ActionDeleteUserLinks ActionKind = "delete_user_links"
	ActionClearActivity   ActionKind = "clear_activity"
)

// Activity is an immutable log row. Username is nil only when the actor
// row is gone, which the cascade on user_id normally prevents.
type Activity struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Username  *string    `json:"username"`
	Action    ActionKind `json:"action"`
	Details   string     `json:"details"`
	CreatedAt time.Time  `json:"created_at"`
}

// Scope selects which activity rows a count or clear considers
type Scope string

const (
	ScopeSelf Scope = "self"
	ScopeUser Scope = "user"
	ScopeAll  Scope = "all"
)

// ActivityFilter narrows activity queries. A zero UserID selects every user.
type ActivityFilter struct {
	UserID int64
}

// AllActivities matches rows of every actor.
func AllActivities() ActivityFilter { return ActivityFilter{} }

// ActivitiesOf matches rows of one actor.
func ActivitiesOf(userID int64) ActivityFilter { return ActivityFilter{UserID: userID} }
