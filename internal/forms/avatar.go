package forms

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

const (
	msgAvatarType = "Загрузите изображение в формате PNG, JPEG, GIF или WebP."
	msgAvatarSize = "Размер файла не должен превышать %d КБ."
)

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Avatar is an accepted avatar upload.
type Avatar struct {
	Header    *multipart.FileHeader
	Extension string
}

// CleanAvatar sniffs the upload content and enforces the size limit.
func CleanAvatar(fh *multipart.FileHeader, maxBytes int64) (*Avatar, error) {
	errs := Errors{}
	if maxBytes > 0 && fh.Size > maxBytes {
		errs.Add("avatar", fmt.Sprintf(msgAvatarSize, maxBytes/1024))
		return nil, errs.Err()
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open avatar: %w", err)
	}
	defer file.Close() //nolint:errcheck

	mtype, err := mimetype.DetectReader(io.LimitReader(file, 3072))
	if err != nil {
		return nil, fmt.Errorf("detect avatar type: %w", err)
	}
	ext, ok := avatarTypes[mtype.String()]
	if !ok {
		errs.Add("avatar", msgAvatarType)
		return nil, errs.Err()
	}
	return &Avatar{Header: fh, Extension: ext}, nil
}
