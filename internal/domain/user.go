package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Handle       string    `gorm:"uniqueIndex;size:64;not null" json:"handle"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (User) TableName() string { return "users" }

// UserView 对外暴露的用户信息（不含密码哈希）
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Handle: u.Handle, CreatedAt: u.CreatedAt}
}

// Identity is what the authentication gate attaches to a request.
type Identity struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Handle string `json:"handle"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Handle: u.Handle}
}

// UserRepository 查不到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmailOrHandle(ctx context.Context, email, handle string) (*User, error)
}
