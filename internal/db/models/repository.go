package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrRepositoryNotFound is returned when no repository matches the lookup
var ErrRepositoryNotFound = errors.New("repository not found")

// Repository represents a named collection of stored objects owned by an account
type Repository struct {
	ID          string    `json:"repository_id" gorm:"primarykey;size:255"`
	AccountID   string    `json:"account_id" gorm:"size:255;not null;index"`
	Account     *Account  `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Private     bool      `json:"private" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for the Repository model
func (Repository) TableName() string {
	return "repositories"
}

// RepositoryService provides methods for interacting with repositories in the database
type RepositoryService struct {
	db *gorm.DB
}

// NewRepositoryService creates a new repository service with the given database connection
func NewRepositoryService(db *gorm.DB) *RepositoryService {
	return &RepositoryService{db: db}
}

// Create inserts a new repository into the database
func (s *RepositoryService) Create(ctx context.Context, repo *Repository) error {
	if repo.ID == "" || repo.AccountID == "" {
		return errors.New("repository and account ids cannot be empty")
	}
	return s.db.WithContext(ctx).Omit("Account").Create(repo).Error
}

// GetByAccount retrieves a repository by its owning account and repository id
func (s *RepositoryService) GetByAccount(ctx context.Context, accountID, repositoryID string) (*Repository, error) {
	var repo Repository
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, repositoryID).
		Preload("Account").
		First(&repo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, err
	}
	return &repo, nil
}

// ListByAccount retrieves all repositories for a given account with pagination
func (s *RepositoryService) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*Repository, error) {
	var repos []*Repository
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Preload("Account").
		Limit(limit).
		Offset(offset).
		Order("id").
		Find(&repos).Error
	return repos, err
}
