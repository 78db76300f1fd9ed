package profile

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// AvatarStore keeps avatar objects outside the database
type AvatarStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// processedAvatar is an avatar that decoded successfully, ready for upload
type processedAvatar struct {
	contentType string
	ext         string
	data        []byte
	thumbnail   []byte
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/tiff": ".tif",
}

// processAvatar decodes the upload to prove it is an image and renders a
// square JPEG thumbnail of thumbSize pixels
func processAvatar(upload *AvatarUpload, thumbSize int) (*processedAvatar, error) {
	img, err := imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	contentType := http.DetectContentType(upload.Data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported avatar format %q", contentType)
	}

	thumb := imaging.Thumbnail(img, thumbSize, thumbSize, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &processedAvatar{
		contentType: contentType,
		ext:         ext,
		data:        upload.Data,
		thumbnail:   buf.Bytes(),
	}, nil
}

// avatarKeys returns fresh object keys so a new upload never overwrites
// the avatar still referenced by the stored profile
func avatarKeys(prefix string, userID uuid.UUID, ext string) (string, string) {
	base := path.Join(strings.Trim(prefix, "/"), userID.String(), uuid.NewString())
	return base + ext, base + "_thumb.jpg"
}
