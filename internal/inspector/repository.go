package inspector

import "context"

// Repository persists inspectors. Create and Update fail with cerr.AlreadyExists
// when a non-empty email is already used by another inspector.
type Repository interface {
	Create(ctx context.Context, i *Inspector) error
	Get(ctx context.Context, id string) (*Inspector, error)
	List(ctx context.Context) ([]*Inspector, error)
	Update(ctx context.Context, i *Inspector) error
	Delete(ctx context.Context, id string) error
}
