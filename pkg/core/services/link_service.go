package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/favlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/favlinks/pkg/ports"
)

type LinkService struct {
	repo     ports.LinkRepository
	activity ports.ActivityService
}

func NewLinkService(repo ports.LinkRepository, activity ports.ActivityService) *LinkService {
	return &LinkService{repo: repo, activity: activity}
}

func (s *LinkService) CreateLink(ctx context.Context, caller domain.Caller, name, url string, isPublic bool) (*domain.Link, error) {
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		return nil, fmt.Errorf("%w: name and url are required", ErrInvalidArgument)
	}

	link := &domain.Link{
		Name:     name,
		URL:      url,
		UserID:   caller.ID,
		IsPublic: isPublic,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}

	s.activity.Record(ctx, caller.ID, domain.ActionCreateLink, link)
	return link, nil
}

func (s *LinkService) GetLink(ctx context.Context, caller domain.Caller, id int64) (*domain.Link, error) {
	link, err := s.repo.GetLink(ctx, id, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *LinkService) ListLinks(ctx context.Context, caller domain.Caller) ([]domain.Link, error) {
	links, err := s.repo.ListLinks(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// DeleteLink removes one of the caller's own links.
func (s *LinkService) DeleteLink(ctx context.Context, caller domain.Caller, id int64) (*domain.Link, error) {
	link, err := s.repo.DeleteLink(ctx, id, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("delete link: %w", err)
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	s.activity.Record(ctx, caller.ID, domain.ActionDeleteLink, link.Summary())
	return link, nil
}

func (s *LinkService) ListPublicLinks(ctx context.Context) ([]domain.PublicLink, error) {
	links, err := s.repo.ListPublicLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public links: %w", err)
	}
	return links, nil
}

var _ ports.LinkService = (*LinkService)(nil)
