package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/cespare/xxhash/v2"
)

// LocalLister lists repository objects stored on disk under "<root>/<repository_id>/"
type LocalLister struct {
	root string
}

// NewLocalLister creates a lister rooted at rootDir, creating the directory if needed
func NewLocalLister(rootDir string) (*LocalLister, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, NewError(ErrCategoryLocal, "failed to resolve root", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, NewError(ErrCategoryLocal, "failed to create root", err)
	}
	return &LocalLister{root: absRoot}, nil
}

// List walks the files and directories whose repository-relative path starts with prefix.
// Symlinks are skipped. Only a file whose path equals prefix carries a checksum,
// an xxhash64 digest in hex.
func (l *LocalLister) List(ctx context.Context, repositoryID, prefix string) (*ListResult, error) {
	if err := validateListing(repositoryID, prefix); err != nil {
		return nil, err
	}

	base := filepath.Join(l.root, repositoryID)

	// Only the directory holding the last prefix segment can contain matches
	start := base
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		start = filepath.Join(base, filepath.FromSlash(prefix[:i]))
	}

	result := &ListResult{}
	if _, err := os.Stat(start); err != nil {
		// A missing repository, or a prefix running through a file, lists nothing
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return result, nil
		}
		return nil, NewError(ErrCategoryLocal, fmt.Sprintf("failed to list %s/%s", repositoryID, prefix), err)
	}

	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == base {
			return nil
		}
		// Links may point outside the repository or at nothing
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}

		if !strings.HasPrefix(rel, prefix) {
			if d.IsDir() && !strings.HasPrefix(prefix, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		obj, err := l.describe(repositoryID, rel, p, d, rel == prefix)
		if err != nil {
			return err
		}
		result.Objects = append(result.Objects, obj)
		return nil
	})
	if err != nil {
		return nil, NewError(ErrCategoryLocal, fmt.Sprintf("failed to list %s/%s", repositoryID, prefix), err)
	}
	return result, nil
}

// describe builds the object for a walked entry. Only the requested file is hashed.
func (l *LocalLister) describe(repositoryID, rel, fullPath string, d fs.DirEntry, withChecksum bool) (models.RepositoryObject, error) {
	info, err := d.Info()
	if err != nil {
		return models.RepositoryObject{}, err
	}

	obj := models.RepositoryObject{
		ID:           repositoryID + "/" + rel,
		RepositoryID: repositoryID,
		Path:         rel,
		CreatedAt:    info.ModTime(),
		UpdatedAt:    info.ModTime(),
	}
	if d.IsDir() {
		obj.Type = models.ObjectTypeDirectory
		return obj, nil
	}

	obj.Type = models.ObjectTypeFile
	obj.Size = info.Size()
	obj.MimeType = DetectMimeType(rel)
	if withChecksum {
		if obj.Checksum, err = fileChecksum(fullPath); err != nil {
			return models.RepositoryObject{}, err
		}
	}
	return obj, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
