package inspector

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

type CreateInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Timezone Timezone `json:"timezone"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Inspector, error) {
	now := s.now().UTC()
	i := &Inspector{
		ID:        ulid.Make().String(),
		Name:      in.Name,
		Email:     in.Email,
		Timezone:  in.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "inspector created", "inspector_id", i.ID)
	return i, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Inspector, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Inspector, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Inspector, error) {
	i, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(i)
	i.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// Delete removes the inspector only. Assignments that reference it are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "inspector deleted", "inspector_id", id)
	return nil
}
