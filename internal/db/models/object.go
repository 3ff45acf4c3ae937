package models

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Object types
const (
	ObjectTypeFile      = "file"
	ObjectTypeDirectory = "directory"
)

// PathSeparator delimits path segments; directory paths end with it
const PathSeparator = "/"

// RepositoryObject represents a single file or directory entry within a repository
type RepositoryObject struct {
	ID           string      `json:"id" gorm:"primarykey;size:36"`
	RepositoryID string      `json:"repository_id" gorm:"size:255;not null;uniqueIndex:idx_repo_path"`
	Repository   *Repository `json:"-" gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE"`
	Path         string      `json:"path" gorm:"size:1024;not null;uniqueIndex:idx_repo_path"`
	Size         int64       `json:"size"`
	Type         string      `json:"type" gorm:"size:20;not null"`
	MimeType     string      `json:"mime_type,omitempty" gorm:"size:255"`
	Checksum     string      `json:"checksum" gorm:"size:128"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName sets the table name for the RepositoryObject model
func (RepositoryObject) TableName() string {
	return "repository_objects"
}

// BeforeCreate assigns an id and applies the directory conventions
func (o *RepositoryObject) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Normalize()
	return nil
}

// Normalize makes a directory carry a trailing separator, zero size and no checksum.
// Objects whose path ends with the separator are directories.
func (o *RepositoryObject) Normalize() {
	if o.Type == "" {
		o.Type = ObjectTypeFile
		if strings.HasSuffix(o.Path, PathSeparator) {
			o.Type = ObjectTypeDirectory
		}
	}
	if o.Type == ObjectTypeDirectory {
		if !strings.HasSuffix(o.Path, PathSeparator) {
			o.Path += PathSeparator
		}
		o.Size = 0
		o.Checksum = ""
		o.MimeType = ""
	}
}

// IsDir reports whether the object is a directory
func (o RepositoryObject) IsDir() bool {
	return o.Type == ObjectTypeDirectory
}

// Name returns the last path segment of the object
func (o RepositoryObject) Name() string {
	return path.Base(strings.TrimSuffix(o.Path, PathSeparator))
}

// ObjectService provides methods for interacting with the repository object index
type ObjectService struct {
	db *gorm.DB
}

// NewObjectService creates a new object service
func NewObjectService(db *gorm.DB) *ObjectService {
	return &ObjectService{db: db}
}

// Create inserts a new object into the database
func (s *ObjectService) Create(ctx context.Context, obj *RepositoryObject) error {
	if obj.RepositoryID == "" || strings.Trim(obj.Path, PathSeparator) == "" {
		return errors.New("object repository id and path cannot be empty")
	}
	if obj.Type != "" && obj.Type != ObjectTypeFile && obj.Type != ObjectTypeDirectory {
		return errors.New("invalid object type")
	}
	return s.db.WithContext(ctx).Omit("Repository").Create(obj).Error
}

// ListByPrefix retrieves the objects of a repository located at or under prefix, ordered by path
func (s *ObjectService) ListByPrefix(ctx context.Context, repositoryID, prefix string) ([]RepositoryObject, error) {
	var objects []RepositoryObject
	query := s.db.WithContext(ctx).Where("repository_id = ?", repositoryID)
	if prefix != "" {
		query = query.Where("path LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	if err := query.Order("path").Find(&objects).Error; err != nil {
		return nil, err
	}

	// LIKE is case-insensitive on some dialects
	matched := objects[:0]
	for _, obj := range objects {
		if strings.HasPrefix(obj.Path, prefix) {
			matched = append(matched, obj)
		}
	}
	return matched, nil
}

// CountByRepository returns the number of indexed objects in a repository
func (s *ObjectService) CountByRepository(ctx context.Context, repositoryID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&RepositoryObject{}).
		Where("repository_id = ?", repositoryID).
		Count(&count).Error
	return count, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
