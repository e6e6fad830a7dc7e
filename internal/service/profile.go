package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/models"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// ProfileService handles user profile operations
type ProfileService struct {
	db       *gorm.DB
	validate *validator.Validate
	now      func() time.Time
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Internal(err).WithOp("profile.GetProfile")
	}
	return &profile, nil
}

// SyncFromToken creates the local profile on first sight of a user and
// refreshes the email and last login afterwards. Local edits to the name and
// avatar are kept.
func (s *ProfileService) SyncFromToken(ctx context.Context, claims *types.TokenClaims) (*models.UserProfile, error) {
	if claims == nil || claims.UserID == "" {
		return nil, apperr.Unauthorized("missing user identity")
	}

	var profile models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", claims.UserID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = models.UserProfile{
				UserID:    claims.UserID,
				Name:      claims.Name,
				Email:     claims.Email,
				AvatarURL: claims.Avatar,
				LastLogin: s.now().UTC(),
			}
			return tx.Create(&profile).Error
		case err != nil:
			return err
		}

		if claims.Email != "" {
			profile.Email = claims.Email
		}
		if profile.Name == "" {
			profile.Name = claims.Name
		}
		if profile.AvatarURL == "" {
			profile.AvatarURL = claims.Avatar
		}
		profile.LastLogin = s.now().UTC()
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, apperr.Internal(err).WithOp("profile.SyncFromToken")
	}
	return &profile, nil
}

// UpdateProfile updates a user's profile
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *types.UpdateProfileRequest) (*models.UserProfile, error) {
	if req == nil {
		return nil, apperr.Validation("empty profile update")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "name must be 1-100 characters and avatar a valid URL", err)
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.ProfileUpdate(err).WithOp("profile.UpdateProfile")
	}

	// Update fields if provided
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	profile.LastLogin = s.now().UTC()

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, apperr.ProfileUpdate(err).WithOp("profile.UpdateProfile")
	}

	return &profile, nil
}
