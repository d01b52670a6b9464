package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID             string    `json:"id" bson:"_id"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	Role           Role      `json:"role" bson:"role"`
	PasswordHash   string    `json:"-" bson:"password_hash"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty" bson:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

type RegisterInput struct {
	Username       string `validate:"required,min=3,max=64"`
	Email          string `validate:"required,email"`
	Password       string `validate:"required,min=6"`
	TelegramChatID *int64
}

// Validate normalizes the input in place and checks it.
func (in *RegisterInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return validateStruct(in)
}

// NewUser builds a user from validated input and an already computed
// password hash.
func NewUser(input RegisterInput, role Role, passwordHash string) *User {
	return &User{
		ID:             uuid.New().String(),
		Username:       input.Username,
		Email:          input.Email,
		Role:           role,
		PasswordHash:   passwordHash,
		TelegramChatID: input.TelegramChatID,
		CreatedAt:      time.Now().UTC(),
	}
}

// Identity is the authenticated caller as seen by the services.
type Identity struct {
	UserID string
	Role   Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
