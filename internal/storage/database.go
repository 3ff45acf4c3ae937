package storage

import (
	"context"
	"fmt"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"gorm.io/gorm"
)

// DatabaseLister lists objects from the repository object index table
type DatabaseLister struct {
	objects models.ObjectStore
}

// NewDatabaseLister creates a lister backed by the object index in db
func NewDatabaseLister(db *gorm.DB) *DatabaseLister {
	return &DatabaseLister{objects: models.NewObjectService(db)}
}

// List returns the indexed objects whose path starts with prefix
func (l *DatabaseLister) List(ctx context.Context, repositoryID, prefix string) (*ListResult, error) {
	if err := validateListing(repositoryID, prefix); err != nil {
		return nil, err
	}
	objects, err := l.objects.ListByPrefix(ctx, repositoryID, prefix)
	if err != nil {
		return nil, NewError(ErrCategoryDatabase, fmt.Sprintf("failed to list %s/%s", repositoryID, prefix), err)
	}
	return &ListResult{Objects: objects}, nil
}
