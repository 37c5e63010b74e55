package models

import "time"

// Profile is one-to-one with User and created lazily.
type Profile struct {
	UserID              string
	DisplayName         string
	Username            string
	Bio                 string
	AvatarURL           string
	City                string
	OnboardingCompleted bool
	ConnectedMusic      ConnectedMusic
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ConnectedMusic flags which music services the user linked.
type ConnectedMusic struct {
	Spotify    bool
	AppleMusic bool
}

// ProfileUpdate carries optional changes; nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName    *string
	Username       *string
	Bio            *string
	AvatarURL      *string
	City           *string
	ConnectedMusic *ConnectedMusic
}
