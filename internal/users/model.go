package users

import "time"

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User is an account that owns documents.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PictureURL   string    `json:"pictureUrl,omitempty"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
