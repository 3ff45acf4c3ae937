package models

import "context"

// AccountStore defines the interface for account operations
type AccountStore interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
}

// RepositoryStore defines the interface for repository operations
type RepositoryStore interface {
	Create(ctx context.Context, repo *Repository) error
	GetByAccount(ctx context.Context, accountID, repositoryID string) (*Repository, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*Repository, error)
}

// ObjectStore defines the interface for repository object index operations
type ObjectStore interface {
	Create(ctx context.Context, obj *RepositoryObject) error
	ListByPrefix(ctx context.Context, repositoryID, prefix string) ([]RepositoryObject, error)
	CountByRepository(ctx context.Context, repositoryID string) (int64, error)
}

var (
	_ AccountStore    = (*AccountService)(nil)
	_ RepositoryStore = (*RepositoryService)(nil)
	_ ObjectStore     = (*ObjectService)(nil)
)
