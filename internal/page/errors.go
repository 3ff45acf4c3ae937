package page

import (
	"errors"
	"fmt"
)

// NotFoundDigest is the fixed marker carried by every not-found signal
const NotFoundDigest = "NEXT_NOT_FOUND"

// Not-found reasons
const (
	ReasonRepository = "repository"
	ReasonObject     = "object"
)

// ErrInvalidPath is returned when route path segments are malformed
var ErrInvalidPath = errors.New("invalid path")

// NotFoundError signals that the requested repository or object does not exist.
// The hosting layer turns it into a 404 response.
type NotFoundError struct {
	Digest       string `json:"digest"`
	Reason       string `json:"reason"`
	AccountID    string `json:"account_id"`
	RepositoryID string `json:"repository_id"`
	Path         string `json:"path,omitempty"`
}

func newNotFound(p Params, reason string) *NotFoundError {
	return &NotFoundError{
		Digest:       NotFoundDigest,
		Reason:       reason,
		AccountID:    p.AccountID,
		RepositoryID: p.RepositoryID,
		Path:         p.Prefix(),
	}
}

func (e *NotFoundError) Error() string {
	if e.Reason == ReasonObject {
		return fmt.Sprintf("%s: %s/%s/%s", e.Digest, e.AccountID, e.RepositoryID, e.Path)
	}
	return fmt.Sprintf("%s: %s/%s", e.Digest, e.AccountID, e.RepositoryID)
}

// IsNotFound reports whether err carries the not-found marker
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Digest == NotFoundDigest
}
