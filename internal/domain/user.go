package domain

import "github.com/google/uuid"

// UserProfile holds the public profile fields joined into leaderboard rows.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}
