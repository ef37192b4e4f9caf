package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wadjakorntonsri/favlinks/pkg/core/authz"
	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

type AdminService struct {
	repo     ports.Repository
	activity ports.ActivityService
}

func NewAdminService(repo ports.Repository, activity ports.ActivityService) *AdminService {
	return &AdminService{repo: repo, activity: activity}
}

func (s *AdminService) ListUsers(ctx context.Context, caller domain.Caller) ([]domain.User, error) {
	if err := authz.RequireAdmin(caller).Err(); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser reads the target and the admin count, decides, and deletes
// inside one transaction so concurrent deletes cannot remove every admin.
func (s *AdminService) DeleteUser(ctx context.Context, caller domain.Caller, targetID int64) (*domain.User, error) {
	if err := authz.RequireAdmin(caller).Err(); err != nil {
		return nil, err
	}

	var deleted *domain.User
	err := s.repo.WithTx(ctx, func(tx ports.Repository) error {
		target, err := tx.GetUserByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if target == nil {
			return ErrUserNotFound
		}

		var admins int64
		if target.IsAdmin {
			if admins, err = tx.CountAdmins(ctx); err != nil {
				return fmt.Errorf("count admins: %w", err)
			}
		}
		if err := authz.CanDeleteUser(caller, *target, admins).Err(); err != nil {
			return err
		}

		deleted, err = tx.DeleteUser(ctx, targetID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if deleted == nil {
			// The conditional delete found no other admin.
			if target.IsAdmin {
				return authz.CanDeleteUser(caller, *target, 1).Err()
			}
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"admin_id": caller.ID, "user_id": deleted.ID}).Info("User deleted")
	s.activity.Record(ctx, caller.ID, domain.ActionDeleteUser, map[string]any{"deleted": deleted.Summary()})
	return deleted, nil
}

// SetAdminFlag promotes or demotes target under the same transactional
// discipline as DeleteUser.
func (s *AdminService) SetAdminFlag(ctx context.Context, caller domain.Caller, targetID int64, isAdmin bool) (*domain.User, error) {
	if err := authz.RequireAdmin(caller).Err(); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.repo.WithTx(ctx, func(tx ports.Repository) error {
		target, err := tx.GetUserByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if target == nil {
			return ErrUserNotFound
		}

		var admins int64
		if target.IsAdmin && !isAdmin {
			if admins, err = tx.CountAdmins(ctx); err != nil {
				return fmt.Errorf("count admins: %w", err)
			}
		}
		if err := authz.CanSetAdminFlag(caller, *target, isAdmin, admins).Err(); err != nil {
			return err
		}

		updated, err = tx.SetAdmin(ctx, targetID, isAdmin)
		if err != nil {
			return fmt.Errorf("set admin: %w", err)
		}
		if updated == nil {
			if target.IsAdmin && !isAdmin {
				return authz.CanSetAdminFlag(caller, *target, false, 1).Err()
			}
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": caller.ID,
		"user_id":  updated.ID,
		"is_admin": updated.IsAdmin,
	}).Info("User admin flag updated")
	s.activity.Record(ctx, caller.ID, domain.ActionUpdateAdminFlag, map[string]any{
		"target":     updated.Summary(),
		"changed_by": caller.ID,
	})
	return updated, nil
}

// DeleteUserLinks removes every link owned by target.
func (s *AdminService) DeleteUserLinks(ctx context.Context, caller domain.Caller, targetID int64) ([]domain.Link, error) {
	if err := authz.CanDeleteUserLinks(caller, targetID).Err(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	links, err := s.repo.DeleteLinksByUser(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("delete user links: %w", err)
	}

	s.activity.Record(ctx, caller.ID, domain.ActionDeleteUserLinks, map[string]any{
		"target":  targetID,
		"deleted": len(links),
	})
	return links, nil
}

var _ ports.AdminService = (*AdminService)(nil)
