// Package storage lists the objects stored in a repository.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
)

// Storage backends
const (
	BackendDatabase = "database"
	BackendS3       = "s3"
	BackendLocal    = "local"
)

// ListResult holds the objects located at or under a listing prefix
type ListResult struct {
	Objects []models.RepositoryObject `json:"objects"`
}

// ObjectLister lists the objects of a repository located at or under a path prefix.
// Directory objects carry a trailing "/" in their path.
type ObjectLister interface {
	List(ctx context.Context, repositoryID, prefix string) (*ListResult, error)
}

// validateListing rejects repository ids and prefixes that could escape the repository root
func validateListing(repositoryID, prefix string) error {
	if repositoryID == "" || strings.ContainsAny(repositoryID, `/\`) || repositoryID == "." || repositoryID == ".." {
		return InvalidArgumentError(fmt.Sprintf("repository id %q", repositoryID))
	}
	if strings.HasPrefix(prefix, "/") {
		return InvalidArgumentError(fmt.Sprintf("prefix %q", prefix))
	}
	for _, segment := range strings.Split(prefix, "/") {
		if segment == "." || segment == ".." {
			return InvalidArgumentError(fmt.Sprintf("prefix %q", prefix))
		}
	}
	return nil
}
