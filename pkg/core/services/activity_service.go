package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wadjakorntonsri/favlinks/pkg/core/authz"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

const (
	userActivityLimit  = 50
	adminActivityLimit = 100
)

// ActivityService is the append-only activity ledger
type ActivityService struct {
	repo ports.ActivityRepository
	log  logrus.FieldLogger
}

func NewActivityService(repo ports.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo, log: logrus.StandardLogger()}
}

// Record appends one row. It is called after the triggering mutation has
// committed and never fails: errors are logged and dropped.
func (s *ActivityService) Record(ctx context.Context, actorID int64, kind domain.ActionKind, details any) {
	logCtx := s.log.WithFields(logrus.Fields{"user_id": actorID, "action": kind})

	payload, err := json.Marshal(details)
	if err != nil {
		logCtx.WithError(err).Error("Failed to encode activity details")
		return
	}

	a := &domain.Activity{UserID: actorID, Action: kind, Details: string(payload)}
	if err := s.repo.RecordActivity(context.WithoutCancel(ctx), a); err != nil {
		logCtx.WithError(err).Error("Failed to record activity")
	}
}

// List returns the caller's own rows, or every user's rows for an admin,
// newest first.
func (s *ActivityService) List(ctx context.Context, caller domain.Caller) ([]domain.Activity, error) {
	filter, limit := domain.ActivitiesOf(caller.ID), userActivityLimit
	if caller.IsAdmin {
		filter, limit = domain.AllActivities(), adminActivityLimit
	}

	activities, err := s.repo.ListActivities(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

func scopeFilter(caller domain.Caller, scope domain.Scope, targetUserID int64) domain.ActivityFilter {
	switch scope {
	case domain.ScopeAll:
		return domain.AllActivities()
	case domain.ScopeUser:
		return domain.ActivitiesOf(targetUserID)
	default:
		return domain.ActivitiesOf(caller.ID)
	}
}

// Count reports how many rows Clear would remove for the same arguments.
func (s *ActivityService) Count(ctx context.Context, caller domain.Caller, scope domain.Scope, targetUserID int64) (int64, error) {
	if err := authz.CanAccessActivityScope(caller, scope, targetUserID).Err(); err != nil {
		return 0, err
	}

	n, err := s.repo.CountActivities(ctx, scopeFilter(caller, scope, targetUserID))
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

type clearDetails struct {
	Scope   domain.Scope `json:"scope"`
	Target  int64        `json:"target,omitempty"`
	Deleted int64        `json:"deleted"`
}

// Clear deletes the rows selected by scope and then records the clear
// itself, so clearing one's own log always leaves that one new row.
func (s *ActivityService) Clear(ctx context.Context, caller domain.Caller, scope domain.Scope, targetUserID int64) (int64, error) {
	if err := authz.CanAccessActivityScope(caller, scope, targetUserID).Err(); err != nil {
		return 0, err
	}

	deleted, err := s.repo.DeleteActivities(ctx, scopeFilter(caller, scope, targetUserID))
	if err != nil {
		return 0, fmt.Errorf("clear activities: %w", err)
	}

	details := clearDetails{Scope: scope, Deleted: deleted}
	if scope == domain.ScopeUser {
		details.Target = targetUserID
	}
	s.Record(ctx, caller.ID, domain.ActionClearActivity, details)

	return deleted, nil
}

var _ ports.ActivityService = (*ActivityService)(nil)
