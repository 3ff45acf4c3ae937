package page

import (
	"net/url"
	"strings"
	"time"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
)

// Kind classifies what a resolved page shows
type Kind string

const (
	KindRoot      Kind = "root"
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
	KindNotFound  Kind = "not_found"
)

// Params are the route parameters of a repository page
type Params struct {
	AccountID    string   `json:"account_id"`
	RepositoryID string   `json:"repository_id"`
	Path         []string `json:"path"`
}

// Prefix joins the path segments with "/"; an empty path is the root
func (p Params) Prefix() string {
	return strings.Join(p.Path, "/")
}

func (p Params) validate() error {
	if p.AccountID == "" || p.RepositoryID == "" {
		return ErrInvalidPath
	}
	for _, segment := range p.Path {
		if segment == "" || segment == "." || segment == ".." || strings.Contains(segment, "/") {
			return ErrInvalidPath
		}
	}
	return nil
}

// View is everything a page needs to render
type View struct {
	Kind         Kind         `json:"kind"`
	AccountID    string       `json:"account_id"`
	AccountName  string       `json:"account_name,omitempty"`
	RepositoryID string       `json:"repository_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Private      bool         `json:"private"`
	Path         string       `json:"path"`
	Heading      string       `json:"heading,omitempty"`
	Breadcrumbs  []Breadcrumb `json:"breadcrumbs"`
	Entries      []Entry      `json:"entries,omitempty"`
	File         *FileDetails `json:"file,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Breadcrumb is one navigation step; an empty Href renders as plain text
type Breadcrumb struct {
	Name string `json:"name"`
	Href string `json:"href,omitempty"`
}

// Entry is one immediate child of a directory
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Href      string    `json:"href"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDir reports whether the entry is a directory
func (e Entry) IsDir() bool {
	return e.Type == models.ObjectTypeDirectory
}

// FileDetails describes the file shown by a file page
type FileDetails struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type,omitempty"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is either a renderable view or a not-found outcome
type Result struct {
	Kind     Kind
	View     *View
	NotFound *NotFoundError
}

// Err returns the not-found signal, or nil when the result is renderable
func (r *Result) Err() error {
	if r.Kind == KindNotFound {
		return r.NotFound
	}
	return nil
}

// Href builds the page URL of a repository path; a trailing "/" is dropped
func Href(accountID, repositoryID, p string) string {
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(url.PathEscape(accountID))
	b.WriteString("/")
	b.WriteString(url.PathEscape(repositoryID))
	for _, segment := range strings.Split(strings.TrimSuffix(p, "/"), "/") {
		if segment == "" {
			continue
		}
		b.WriteString("/")
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}
