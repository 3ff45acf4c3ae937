package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Account types
const (
	AccountTypeUser         = "user"
	AccountTypeOrganization = "organization"
)

// ErrAccountNotFound is returned when no account matches the lookup
var ErrAccountNotFound = errors.New("account not found")

// Account represents the owning entity (user or organization) of repositories
type Account struct {
	ID              string    `json:"account_id" gorm:"primarykey;size:255"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	Type            string    `json:"account_type" gorm:"size:20;not null"`
	OwnerAccountID  string    `json:"owner_account_id,omitempty" gorm:"size:255"`
	AdminAccountIDs string    `json:"-" gorm:"type:text"` // Comma-separated list of admin account ids
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// Admins returns the admin account ids
func (a *Account) Admins() []string {
	if a.AdminAccountIDs == "" {
		return nil
	}
	return strings.Split(a.AdminAccountIDs, ",")
}

// SetAdmins replaces the admin account ids
func (a *Account) SetAdmins(ids []string) {
	a.AdminAccountIDs = strings.Join(ids, ",")
}

// AccountService provides methods for interacting with accounts in the database
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates a new account service with the given database connection
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Create inserts a new account into the database
func (s *AccountService) Create(ctx context.Context, account *Account) error {
	if account.ID == "" {
		return errors.New("account id cannot be empty")
	}
	if account.Type == "" {
		account.Type = AccountTypeUser
	}
	if !isValidAccountType(account.Type) {
		return errors.New("invalid account type")
	}
	return s.db.WithContext(ctx).Create(account).Error
}

// GetByID retrieves an account by its ID
func (s *AccountService) GetByID(ctx context.Context, id string) (*Account, error) {
	var account Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func isValidAccountType(t string) bool {
	return t == AccountTypeUser || t == AccountTypeOrganization
}
