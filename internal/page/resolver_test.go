package page_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/NahomAnteneh/repo-browser/internal/page"
	"github.com/NahomAnteneh/repo-browser/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SpyRepositoryLookup struct {
	mock.Mock
}

func (s *SpyRepositoryLookup) GetByAccount(ctx context.Context, accountID, repositoryID string) (*models.Repository, error) {
	args := s.Called(ctx, accountID, repositoryID)
	repo, _ := args.Get(0).(*models.Repository)
	return repo, args.Error(1)
}

type SpyObjectLister struct {
	mock.Mock
}

func (s *SpyObjectLister) List(ctx context.Context, repositoryID, prefix string) (*storage.ListResult, error) {
	args := s.Called(ctx, repositoryID, prefix)
	result, _ := args.Get(0).(*storage.ListResult)
	return result, args.Error(1)
}

var created = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func landsat() *models.Repository {
	return &models.Repository{
		ID:          "landsat-collection",
		AccountID:   "nasa",
		Account:     &models.Account{ID: "nasa", Name: "NASA", Type: models.AccountTypeOrganization},
		Title:       "Landsat Collection",
		Description: "Landsat scenes and metadata",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func object(p, typ string, size int64) models.RepositoryObject {
	return models.RepositoryObject{
		ID:           p,
		RepositoryID: "landsat-collection",
		Path:         p,
		Type:         typ,
		Size:         size,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func newResolver(t *testing.T) (*page.Resolver, *SpyRepositoryLookup, *SpyObjectLister) {
	t.Helper()
	repos := new(SpyRepositoryLookup)
	objects := new(SpyObjectLister)
	t.Cleanup(func() {
		repos.AssertExpectations(t)
		objects.AssertExpectations(t)
	})
	return page.NewResolver(repos, objects), repos, objects
}

func entryNames(entries []page.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestResolve_Root(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "").Return(&storage.ListResult{Objects: []models.RepositoryObject{
		object("README.md", models.ObjectTypeFile, 1280),
		object("data/", models.ObjectTypeDirectory, 0),
		object("data/scene-001.tif", models.ObjectTypeFile, 1024),
		object("catalog/items/a.json", models.ObjectTypeFile, 12),
	}}, nil)

	result, err := r.Resolve(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "landsat-collection"})
	require.NoError(t, err)
	require.NoError(t, result.Err())
	assert.Equal(t, page.KindRoot, result.Kind)

	view := result.View
	assert.Equal(t, "Landsat Collection", view.Title)
	assert.Equal(t, "Landsat scenes and metadata", view.Description)
	assert.Equal(t, "NASA", view.AccountName)
	assert.Equal(t, []string{"catalog", "data", "README.md"}, entryNames(view.Entries))
	assert.True(t, view.Entries[0].IsDir())
	assert.Equal(t, "/nasa/landsat-collection/catalog", view.Entries[0].Href)
	assert.EqualValues(t, 1280, view.Entries[2].Size)
	require.Len(t, view.Breadcrumbs, 2)
	assert.Equal(t, "/nasa/landsat-collection", view.Breadcrumbs[1].Href)
}

func TestResolve_Directory(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "data").Return(&storage.ListResult{Objects: []models.RepositoryObject{
		object("data/", models.ObjectTypeDirectory, 0),
		object("data/scene-001.tif", models.ObjectTypeFile, 1024),
		object("data/metadata/index.json", models.ObjectTypeFile, 64),
		object("database.csv", models.ObjectTypeFile, 10),
	}}, nil)

	view, err := r.Render(context.Background(), page.Params{
		AccountID:    "nasa",
		RepositoryID: "landsat-collection",
		Path:         []string{"data"},
	})
	require.NoError(t, err)
	assert.Equal(t, page.KindDirectory, view.Kind)
	assert.Equal(t, "data", view.Heading)
	assert.Equal(t, []string{"metadata", "scene-001.tif"}, entryNames(view.Entries))
	assert.Equal(t, "data/metadata/", view.Entries[0].Path)
	assert.Equal(t, "/nasa/landsat-collection/data/scene-001.tif", view.Entries[1].Href)
}

func TestResolve_DirectoryWithoutMarker(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "data/metadata").Return(&storage.ListResult{Objects: []models.RepositoryObject{
		object("data/metadata/index.json", models.ObjectTypeFile, 64),
	}}, nil)

	view, err := r.Render(context.Background(), page.Params{
		AccountID:    "nasa",
		RepositoryID: "landsat-collection",
		Path:         []string{"data", "metadata"},
	})
	require.NoError(t, err)
	assert.Equal(t, page.KindDirectory, view.Kind)
	assert.Equal(t, "metadata", view.Heading)
	assert.Equal(t, []string{"index.json"}, entryNames(view.Entries))
	require.Len(t, view.Breadcrumbs, 4)
	assert.Equal(t, "/nasa/landsat-collection/data/metadata", view.Breadcrumbs[3].Href)
}

func TestResolve_File(t *testing.T) {
	r, repos, objects := newResolver(t)
	scene := object("data/scene-001.tif", models.ObjectTypeFile, 52428800)
	scene.MimeType = "image/tiff"
	scene.Checksum = "5d41402a"
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "data/scene-001.tif").Return(&storage.ListResult{Objects: []models.RepositoryObject{scene}}, nil)

	view, err := r.Render(context.Background(), page.Params{
		AccountID:    "nasa",
		RepositoryID: "landsat-collection",
		Path:         []string{"data", "scene-001.tif"},
	})
	require.NoError(t, err)
	assert.Equal(t, page.KindFile, view.Kind)
	require.NotNil(t, view.File)
	assert.Equal(t, "scene-001.tif", view.File.Name)
	assert.Equal(t, "image/tiff", view.File.MimeType)
	assert.Equal(t, "5d41402a", view.File.Checksum)
	assert.EqualValues(t, 52428800, view.File.Size)
	assert.Empty(t, view.Entries)
}

func TestResolve_UnknownRepository(t *testing.T) {
	for _, path := range [][]string{nil, {"data"}, {"data", "scene-001.tif"}, {"data", ""}, {".."}, {"."}} {
		r, repos, objects := newResolver(t)
		repos.On("GetByAccount", mock.Anything, "nasa", "invalid-repo").Return(nil, models.ErrRepositoryNotFound)
		objects.On("List", mock.Anything, "invalid-repo", mock.Anything).Return(&storage.ListResult{}, nil).Maybe()

		params := page.Params{AccountID: "nasa", RepositoryID: "invalid-repo", Path: path}
		result, err := r.Resolve(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, page.KindNotFound, result.Kind)
		assert.Nil(t, result.View)

		_, err = r.Render(context.Background(), params)
		require.Error(t, err)
		var nf *page.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "NEXT_NOT_FOUND", nf.Digest)
		assert.Equal(t, page.ReasonRepository, nf.Reason)
		assert.True(t, page.IsNotFound(err))
	}
}

func TestResolve_NilRepositoryIsAbsent(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "gone").Return(nil, nil)
	objects.On("List", mock.Anything, "gone", "").Return(nil, nil).Maybe()

	_, err := r.Render(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "gone"})
	assert.True(t, page.IsNotFound(err))
}

func TestResolve_UnknownRepositoryIgnoresListingFailure(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "invalid-repo").Return(nil, models.ErrRepositoryNotFound)
	objects.On("List", mock.Anything, "invalid-repo", "").Return(nil, errors.New("bucket unavailable")).Maybe()

	_, err := r.Render(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "invalid-repo"})
	assert.True(t, page.IsNotFound(err))
}

func TestResolve_MissingObject(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "dta").Return(&storage.ListResult{}, nil)

	result, err := r.Resolve(context.Background(), page.Params{
		AccountID:    "nasa",
		RepositoryID: "landsat-collection",
		Path:         []string{"dta"},
	})
	require.NoError(t, err)
	assert.Equal(t, page.KindNotFound, result.Kind)
	assert.Equal(t, page.ReasonObject, result.NotFound.Reason)
	assert.Equal(t, "dta", result.NotFound.Path)
	assert.True(t, page.IsNotFound(result.Err()))
}

func TestResolve_PrefixSiblingIsNotAMatch(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "data").Return(&storage.ListResult{Objects: []models.RepositoryObject{
		object("database.csv", models.ObjectTypeFile, 10),
	}}, nil)

	_, err := r.Render(context.Background(), page.Params{
		AccountID:    "nasa",
		RepositoryID: "landsat-collection",
		Path:         []string{"data"},
	})
	assert.True(t, page.IsNotFound(err))
}

func TestResolve_ListingFailure(t *testing.T) {
	r, repos, objects := newResolver(t)
	boom := errors.New("bucket unavailable")
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "").Return(nil, boom)

	_, err := r.Resolve(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "landsat-collection"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, page.IsNotFound(err))
}

func TestResolve_LookupFailure(t *testing.T) {
	r, repos, objects := newResolver(t)
	boom := errors.New("connection refused")
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(nil, boom)
	objects.On("List", mock.Anything, "landsat-collection", "").Return(&storage.ListResult{}, nil).Maybe()

	_, err := r.Resolve(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "landsat-collection"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, page.IsNotFound(err))
}

func TestResolve_InvalidPath(t *testing.T) {
	tests := []struct {
		name   string
		params page.Params
	}{
		{"dot dot segment", page.Params{AccountID: "nasa", RepositoryID: "landsat-collection", Path: []string{"..", "etc"}}},
		{"empty segment", page.Params{AccountID: "nasa", RepositoryID: "landsat-collection", Path: []string{"data", ""}}},
		{"missing account", page.Params{RepositoryID: "landsat-collection"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repos, _ := newResolver(t)
			if tt.params.AccountID != "" {
				repos.On("GetByAccount", mock.Anything, tt.params.AccountID, tt.params.RepositoryID).Return(landsat(), nil)
			}
			_, err := r.Resolve(context.Background(), tt.params)
			assert.ErrorIs(t, err, page.ErrInvalidPath)
			assert.False(t, page.IsNotFound(err))
		})
	}
}

func TestResolve_InvalidPathLookupFailure(t *testing.T) {
	r, repos, _ := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(nil, errors.New("connection refused"))

	_, err := r.Resolve(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "landsat-collection", Path: []string{".."}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, page.ErrInvalidPath)
	assert.False(t, page.IsNotFound(err))
}

func TestResolve_Idempotent(t *testing.T) {
	r, repos, objects := newResolver(t)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "").Return(&storage.ListResult{Objects: []models.RepositoryObject{
		object("b/", models.ObjectTypeDirectory, 0),
		object("a.txt", models.ObjectTypeFile, 3),
		object("b/c.txt", models.ObjectTypeFile, 4),
	}}, nil)

	params := page.Params{AccountID: "nasa", RepositoryID: "landsat-collection"}
	first, err := r.Render(context.Background(), params)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_DirectoryTakesNewestTimestamp(t *testing.T) {
	r, repos, objects := newResolver(t)
	newer := object("data/new.tif", models.ObjectTypeFile, 1)
	newer.UpdatedAt = created.Add(48 * time.Hour)
	repos.On("GetByAccount", mock.Anything, "nasa", "landsat-collection").Return(landsat(), nil)
	objects.On("List", mock.Anything, "landsat-collection", "").Return(&storage.ListResult{Objects: []models.RepositoryObject{
		newer,
		object("data/", models.ObjectTypeDirectory, 0),
	}}, nil)

	view, err := r.Render(context.Background(), page.Params{AccountID: "nasa", RepositoryID: "landsat-collection"})
	require.NoError(t, err)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, newer.UpdatedAt, view.Entries[0].UpdatedAt)
}

func TestHref_EscapesSegments(t *testing.T) {
	assert.Equal(t, "/nasa/landsat-collection/my%20data/a%3Fb.txt", page.Href("nasa", "landsat-collection", "my data/a?b.txt"))
	assert.Equal(t, "/nasa/landsat-collection", page.Href("nasa", "landsat-collection", ""))
}
