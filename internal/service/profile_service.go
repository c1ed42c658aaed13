package service

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"

	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/dto"
	"github.com/noah-isme/fefu-lab-api/internal/forms"
	"github.com/noah-isme/fefu-lab-api/internal/models"
	"github.com/noah-isme/fefu-lab-api/pkg/database"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

type profileRepository interface {
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type avatarStore interface {
	SaveAvatar(ownerID string, avatar *forms.Avatar) (string, error)
	AvatarURL(ownerID, relPath string) string
	Remove(relPath string)
}

// ProfileService shows and edits the caller's own profile.
type ProfileService struct {
	repo           profileRepository
	profiles       profileFinder
	avatars        avatarStore
	maxAvatarBytes int64
	logger         *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, profiles profileFinder, avatars avatarStore, maxAvatarBytes int64, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, profiles: profiles, avatars: avatars, maxAvatarBytes: maxAvatarBytes, logger: logger}
}

// Get returns the caller's account and profile.
func (s *ProfileService) Get(ctx context.Context, identity *models.Identity) (*dto.ProfileResponse, error) {
	if identity == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "login required")
	}
	resp := &dto.ProfileResponse{User: identity.User, Faculties: dto.FacultyChoices()}
	if identity.Profile != nil {
		profile := *identity.Profile
		profile.AvatarURL = s.avatars.AvatarURL(profile.ID, profile.Avatar)
		resp.Profile = &profile
		resp.FacultyLabel = profile.Faculty.Label()
		resp.RoleLabel = profile.Role.Label()
	}
	return resp, nil
}

// Update validates and saves the profile edit. avatar may be nil.
func (s *ProfileService) Update(ctx context.Context, identity *models.Identity, form *forms.ProfileForm, avatar *multipart.FileHeader, meta RequestMeta) error {
	if identity == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "login required")
	}
	if identity.Profile == nil {
		return appErrors.Clone(appErrors.ErrForbidden, "student profile required")
	}

	formErr := form.Clean(ctx, s.repo, identity.User.ID)
	var upload *forms.Avatar
	var avatarErr error
	if avatar != nil {
		upload, avatarErr = forms.CleanAvatar(avatar, s.maxAvatarBytes)
	}
	if err := mergeValidation(formErr, avatarErr); err != nil {
		return err
	}

	update := form.Update(identity.User.ID)
	if upload != nil {
		rel, err := s.avatars.SaveAvatar(identity.Profile.ID, upload)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store avatar")
		}
		update.Avatar = &rel
	}

	if err := s.repo.UpdateProfile(ctx, update); err != nil {
		if update.Avatar != nil {
			s.avatars.Remove(*update.Avatar)
		}
		switch {
		case database.IsUniqueViolation(err, ""):
			return forms.EmailTaken()
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	if update.Avatar != nil {
		s.avatars.Remove(identity.Profile.Avatar)
	}

	recordAudit(ctx, s.repo, s.logger, &models.AuditLog{
		UserID:     &identity.User.ID,
		Action:     models.AuditActionProfileUpdate,
		Resource:   "profile",
		ResourceID: &identity.Profile.ID,
		NewValues:  auditValues(form.Values()),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

// mergeValidation folds several validation results into one error. Any
// non-validation error wins and is reported as internal.
func mergeValidation(errs ...error) error {
	merged := map[string][]string{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		appErr := appErrors.FromError(err)
		if appErr.Code != appErrors.ErrValidation.Code {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate input")
		}
		for field, messages := range appErr.Fields {
			merged[field] = append(merged[field], messages...)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return appErrors.Validation(merged)
}
