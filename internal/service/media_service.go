package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
	"github.com/noah-isme/fefu-lab-api/pkg/storage"
)

const avatarRoutePrefix = "/media/avatars/"

type mediaStorage interface {
	SaveStream(name string, r io.Reader) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

// MediaService stores avatars and hands out signed links to them.
type MediaService struct {
	storage mediaStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
}

// NewMediaService constructs a MediaService.
func NewMediaService(store mediaStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{storage: store, signer: signer, logger: logger}
}

// SaveAvatar writes an accepted upload under avatars/<owner>/ and returns its relative path.
func (s *MediaService) SaveAvatar(ownerID string, avatar *forms.Avatar) (string, error) {
	file, err := avatar.Header.Open()
	if err != nil {
		return "", fmt.Errorf("open avatar upload: %w", err)
	}
	defer file.Close() //nolint:errcheck

	name := path.Join("avatars", ownerID, uuid.NewString()+avatar.Extension)
	rel, err := s.storage.SaveStream(name, file)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return rel, nil
}

// AvatarURL returns a signed link for relPath, or "" when there is none.
func (s *MediaService) AvatarURL(ownerID, relPath string) string {
	if s == nil || relPath == "" || s.signer == nil {
		return ""
	}
	token, _, err := s.signer.Generate(ownerID, relPath)
	if err != nil {
		s.logger.Warn("failed to sign avatar url", zap.String("owner_id", ownerID), zap.Error(err))
		return ""
	}
	return avatarRoutePrefix + token
}

// OpenAvatar validates a signed token and opens the file it grants.
func (s *MediaService) OpenAvatar(token string) (*os.File, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenInvalid) || errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify media token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open media")
	}
	return file, nil
}

// Remove deletes a stored file, logging failures.
func (s *MediaService) Remove(relPath string) {
	if relPath == "" {
		return
	}
	if err := s.storage.Delete(relPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to delete media file", zap.String("path", relPath), zap.Error(err))
	}
}
