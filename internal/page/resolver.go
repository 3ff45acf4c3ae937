// Package page resolves repository page requests into renderable views.
package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/NahomAnteneh/repo-browser/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RepositoryLookup finds repository metadata.
// An absent repository is reported as models.ErrRepositoryNotFound or a nil repository.
type RepositoryLookup interface {
	GetByAccount(ctx context.Context, accountID, repositoryID string) (*models.Repository, error)
}

// Resolver turns route parameters into a root, directory or file view
type Resolver struct {
	repos   RepositoryLookup
	objects storage.ObjectLister
	logger  *logrus.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger used for resolution diagnostics
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver over the given lookup collaborators
func NewResolver(repos RepositoryLookup, objects storage.ObjectLister, opts ...Option) *Resolver {
	r := &Resolver{
		repos:   repos,
		objects: objects,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up the repository and its objects under the requested path.
// A missing repository or object yields a KindNotFound result, not an error;
// errors are reserved for malformed paths and failing lookups.
func (r *Resolver) Resolve(ctx context.Context, p Params) (*Result, error) {
	prefix := p.Prefix()
	log := r.logger.WithFields(logrus.Fields{
		"account_id":    p.AccountID,
		"repository_id": p.RepositoryID,
		"path":          prefix,
	})

	if err := p.validate(); err != nil {
		return r.resolveInvalid(ctx, p, err)
	}

	var (
		repo    *models.Repository
		listing *storage.ListResult
		listErr error
	)

	// The listing error only matters once the repository is known to exist
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := r.repos.GetByAccount(gctx, p.AccountID, p.RepositoryID)
		if err != nil && !errors.Is(err, models.ErrRepositoryNotFound) {
			return fmt.Errorf("failed to look up repository %s/%s: %w", p.AccountID, p.RepositoryID, err)
		}
		repo = found
		return nil
	})
	g.Go(func() error {
		listing, listErr = r.objects.List(gctx, p.RepositoryID, prefix)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if repo == nil {
		log.Debug("Repository not found")
		return notFound(p, ReasonRepository), nil
	}
	if listErr != nil {
		return nil, fmt.Errorf("failed to list objects of %s/%s under %q: %w", p.AccountID, p.RepositoryID, prefix, listErr)
	}

	var objects []models.RepositoryObject
	if listing != nil {
		objects = listing.Objects
	}

	view := newView(repo, p)
	switch {
	case len(p.Path) == 0:
		view.Kind = KindRoot
		view.Entries = children(p.AccountID, p.RepositoryID, objects, "")
	case isDirectory(objects, prefix):
		view.Kind = KindDirectory
		view.Heading = p.Path[len(p.Path)-1]
		view.Entries = children(p.AccountID, p.RepositoryID, objects, prefix+"/")
	default:
		file, ok := findFile(objects, prefix)
		if !ok {
			log.Debug("Object not found")
			return notFound(p, ReasonObject), nil
		}
		view.Kind = KindFile
		view.Heading = file.Name()
		view.File = &FileDetails{
			Name:      file.Name(),
			Path:      file.Path,
			Size:      file.Size,
			MimeType:  file.MimeType,
			Checksum:  file.Checksum,
			CreatedAt: file.CreatedAt,
			UpdatedAt: file.UpdatedAt,
		}
	}

	log.WithFields(logrus.Fields{"kind": view.Kind, "entries": len(view.Entries)}).Debug("Resolved page")
	return &Result{Kind: view.Kind, View: view}, nil
}

// resolveInvalid reports an unknown repository as not found whatever its path;
// malformed segments are only an error for a repository that exists.
func (r *Resolver) resolveInvalid(ctx context.Context, p Params, invalid error) (*Result, error) {
	invalid = fmt.Errorf("%w: %s/%s/%s", invalid, p.AccountID, p.RepositoryID, p.Prefix())
	if p.AccountID == "" || p.RepositoryID == "" {
		return nil, invalid
	}

	repo, err := r.repos.GetByAccount(ctx, p.AccountID, p.RepositoryID)
	switch {
	case errors.Is(err, models.ErrRepositoryNotFound), err == nil && repo == nil:
		return notFound(p, ReasonRepository), nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up repository %s/%s: %w", p.AccountID, p.RepositoryID, err)
	}
	return nil, invalid
}

// Render resolves the page and converts a not-found outcome into a *NotFoundError
func (r *Resolver) Render(ctx context.Context, p Params) (*View, error) {
	result, err := r.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.View, nil
}

func notFound(p Params, reason string) *Result {
	return &Result{Kind: KindNotFound, NotFound: newNotFound(p, reason)}
}

func newView(repo *models.Repository, p Params) *View {
	view := &View{
		AccountID:    p.AccountID,
		RepositoryID: p.RepositoryID,
		Title:        repo.Title,
		Description:  repo.Description,
		Private:      repo.Private,
		Path:         p.Prefix(),
		Breadcrumbs:  breadcrumbs(p),
		UpdatedAt:    repo.UpdatedAt,
	}
	if repo.Account != nil {
		view.AccountName = repo.Account.Name
	}
	return view
}
