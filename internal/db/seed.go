package db

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture describes accounts, repositories and their objects to load into the database
type Fixture struct {
	Accounts     []FixtureAccount    `yaml:"accounts"`
	Repositories []FixtureRepository `yaml:"repositories"`
}

// FixtureAccount is an account entry of a fixture
type FixtureAccount struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type"`
	OwnerAccountID string   `yaml:"owner_account_id"`
	Admins         []string `yaml:"admins"`
}

// FixtureRepository is a repository entry of a fixture
type FixtureRepository struct {
	ID          string          `yaml:"id"`
	AccountID   string          `yaml:"account_id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Private     bool            `yaml:"private"`
	Objects     []FixtureObject `yaml:"objects"`
}

// FixtureObject is an object entry of a fixture; paths ending in "/" are directories
type FixtureObject struct {
	Path     string `yaml:"path"`
	Size     int64  `yaml:"size"`
	MimeType string `yaml:"mime_type"`
	Checksum string `yaml:"checksum"`
}

// LoadFixture decodes a YAML fixture
func LoadFixture(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.NewDecoder(r).Decode(&fixture); err != nil {
		if err == io.EOF {
			return &fixture, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fixture, nil
}

// Seed inserts every fixture record in a single transaction
func Seed(ctx context.Context, database *gorm.DB, fixture *Fixture) error {
	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := models.NewAccountService(tx)
		repos := models.NewRepositoryService(tx)
		objects := models.NewObjectService(tx)

		for _, fa := range fixture.Accounts {
			account := &models.Account{
				ID:             fa.ID,
				Name:           fa.Name,
				Type:           fa.Type,
				OwnerAccountID: fa.OwnerAccountID,
			}
			account.SetAdmins(fa.Admins)
			if err := accounts.Create(ctx, account); err != nil {
				return fmt.Errorf("failed to create account %s: %w", fa.ID, err)
			}
		}

		for _, fr := range fixture.Repositories {
			repo := &models.Repository{
				ID:          fr.ID,
				AccountID:   fr.AccountID,
				Title:       fr.Title,
				Description: fr.Description,
				Private:     fr.Private,
			}
			if err := repos.Create(ctx, repo); err != nil {
				return fmt.Errorf("failed to create repository %s/%s: %w", fr.AccountID, fr.ID, err)
			}

			for _, fo := range fr.Objects {
				obj := &models.RepositoryObject{
					RepositoryID: fr.ID,
					Path:         strings.TrimPrefix(fo.Path, models.PathSeparator),
					Size:         fo.Size,
					MimeType:     fo.MimeType,
					Checksum:     fo.Checksum,
				}
				if err := objects.Create(ctx, obj); err != nil {
					return fmt.Errorf("failed to create object %s in %s: %w", fo.Path, fr.ID, err)
				}
			}
		}
		return nil
	})
}
