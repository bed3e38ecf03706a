package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"visit_tracker/internal/models"
)

var (
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrInvalidRole    = errors.New("role must be admin or superadmin")
)

// NewAdmin is the input for Create.
type NewAdmin struct {
	Username string
	FullName string
	Password string
	Role     string
}

// Create stores a desk account with a bcrypt password hash.
func Create(ctx context.Context, db *gorm.DB, in NewAdmin) (*models.Admin, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, errors.New("username and password are required")
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleSuperAdmin {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := models.Admin{
		Username:     username,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &admin, nil
}

// Authenticate returns the account when the password matches.
// Unknown users and wrong passwords both yield ErrBadCredentials.
func Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*models.Admin, error) {
	var admin models.Admin
	if err := db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return &admin, nil
}

// EnsureSuperAdmin creates the bootstrap superadmin when it does not exist yet.
// Existing accounts are left untouched and empty credentials are a no-op.
func EnsureSuperAdmin(ctx context.Context, db *gorm.DB, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := Create(ctx, db, NewAdmin{
		Username: username,
		FullName: "Super Admin",
		Password: password,
		Role:     models.RoleSuperAdmin,
	})
	if errors.Is(err, ErrUsernameTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
