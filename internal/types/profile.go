package types

// UpdateProfileRequest represents a profile edit from the dashboard.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatar" validate:"omitempty,url,max=512"`
}
