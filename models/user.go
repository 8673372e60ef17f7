package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/aahdc/lottery_backend/config"
	"bitbucket.org/aahdc/lottery_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:150" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null;default:viewer" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewUser struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterUser creates an account. Role defaults to viewer; unknown roles
// are rejected rather than silently downgraded.
func RegisterUser(ctx context.Context, input *NewUser) (*User, error) {
	role := UserRole(input.Role)
	if input.Role == "" {
		role = UserRoleViewer
	}
	if !role.IsValid() {
		return nil, &ValidationError{Message: "Invalid role: " + input.Role}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, &ValidationError{Message: "Invalid email: " + input.Email}
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).
		Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: "User exists"}
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LoginUser checks credentials and issues a signed token.
func LoginUser(ctx context.Context, input *LoginInput) (string, *User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).First(&user, "username = ?", input.Username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := utils.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}
