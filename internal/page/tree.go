package page

import (
	"sort"
	"strings"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
)

// children derives the immediate entries of dir ("" for the root, otherwise ending in "/").
// Deeper objects contribute their first segment as a directory entry.
func children(accountID, repositoryID string, objects []models.RepositoryObject, dir string) []Entry {
	index := make(map[string]int)
	var entries []Entry

	for _, obj := range objects {
		if !strings.HasPrefix(obj.Path, dir) {
			continue
		}
		rest := strings.TrimPrefix(obj.Path, dir)
		if rest == "" {
			continue
		}

		name, _, nested := strings.Cut(rest, "/")
		isDir := nested || obj.IsDir()
		marker := rest == name+"/" || (!nested && obj.IsDir())

		entry := Entry{
			Name: name,
			Path: dir + name,
			Type: models.ObjectTypeFile,
		}
		if isDir {
			entry.Path += "/"
			entry.Type = models.ObjectTypeDirectory
		}
		if !isDir || marker {
			entry.Size = obj.Size
			entry.MimeType = obj.MimeType
		}
		entry.UpdatedAt = obj.UpdatedAt
		entry.Href = Href(accountID, repositoryID, entry.Path)

		// A directory is as recent as the newest object beneath it
		i, seen := index[entry.Path]
		switch {
		case !seen:
			index[entry.Path] = len(entries)
			entries = append(entries, entry)
		case marker:
			if entries[i].UpdatedAt.After(entry.UpdatedAt) {
				entry.UpdatedAt = entries[i].UpdatedAt
			}
			entries[i] = entry
		case obj.UpdatedAt.After(entries[i].UpdatedAt):
			entries[i].UpdatedAt = obj.UpdatedAt
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].IsDir() != entries[b].IsDir() {
			return entries[a].IsDir()
		}
		return entries[a].Name < entries[b].Name
	})
	return entries
}

// findFile returns the file object whose path equals p
func findFile(objects []models.RepositoryObject, p string) (models.RepositoryObject, bool) {
	for _, obj := range objects {
		if obj.Path == p && !obj.IsDir() {
			return obj, true
		}
	}
	return models.RepositoryObject{}, false
}

// isDirectory reports whether p names a directory, either by marker or by content beneath it
func isDirectory(objects []models.RepositoryObject, p string) bool {
	dir := p + "/"
	for _, obj := range objects {
		if strings.HasPrefix(obj.Path, dir) {
			return true
		}
		if obj.Path == p && obj.IsDir() {
			return true
		}
	}
	return false
}

// breadcrumbs builds account / repository / segment navigation for a path
func breadcrumbs(p Params) []Breadcrumb {
	crumbs := []Breadcrumb{
		{Name: p.AccountID},
		{Name: p.RepositoryID, Href: Href(p.AccountID, p.RepositoryID, "")},
	}
	for i, segment := range p.Path {
		crumbs = append(crumbs, Breadcrumb{
			Name: segment,
			Href: Href(p.AccountID, p.RepositoryID, strings.Join(p.Path[:i+1], "/")),
		})
	}
	return crumbs
}
