package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

type CreateInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Deadline    time.Time `json:"deadline"`
	Location    string    `json:"location"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	now := s.now().UTC()
	t := &Task{
		ID:          ulid.Make().String(),
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline.UTC(),
		Location:    in.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "task created", "task_id", t.ID)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Task, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListAvailable(ctx context.Context) ([]*Task, error) {
	return s.repo.ListAvailable(ctx)
}

// Update overwrites the patched fields. Moving the deadline does not re-check
// the schedule of an existing assignment.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "task deleted", "task_id", id)
	return nil
}
