package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"time"

	// Register decoders for the upload formats we accept.
	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/spec-kit/contacts-api/internal/config"
	"github.com/spec-kit/contacts-api/internal/events"
	"github.com/spec-kit/contacts-api/internal/repository"
	"github.com/spec-kit/contacts-api/internal/storage"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

// GravatarURL computes the deterministic default avatar for an email address.
// The computation is pure; no network call is made.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", md5.Sum([]byte(normalized)))
}

// AvatarService transforms uploaded images into normalized profile pictures
// and binds them to accounts.
type AvatarService struct {
	users      repository.UserRepository
	store      *storage.AvatarStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	size       int
	quality    int
}

// NewAvatarService builds the service.
func NewAvatarService(cfg config.AvatarConfig, users repository.UserRepository, store *storage.AvatarStore, dispatcher events.Dispatcher, logger *zap.Logger) *AvatarService {
	size := cfg.Size
	if size <= 0 {
		size = 250
	}
	quality := cfg.Quality
	if quality <= 0 {
		quality = 60
	}
	return &AvatarService{
		users:      users,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		size:       size,
		quality:    quality,
	}
}

// UpdateAvatar runs the ingestion pipeline for an authenticated user: decode,
// resize onto a square canvas, recompress as JPEG, store, persist the URL.
//
// The file is written to permanent storage before the database update. When
// the update fails, the stored file is not removed; it stays orphaned on disk
// and the failure is logged.
func (s *AvatarService) UpdateAvatar(ctx context.Context, userID, originalName string, file io.Reader) (string, error) {
	if file == nil {
		return "", apperrors.NewMissingFile()
	}

	transformed, err := s.transform(file)
	if err != nil {
		return "", err
	}

	filename, err := s.store.Save(userID, originalName, transformed)
	if err != nil {
		return "", err
	}
	avatarURL := s.store.PublicURL(filename)

	if err := s.users.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		s.logger.Warn("avatar file stored but user record update failed; file is orphaned",
			zap.String("user_id", userID),
			zap.String("file", filename),
			zap.Error(err))
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("user", nil)
		}
		return "", err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAvatarUpdated,
			UserID:    userID,
			Timestamp: time.Now(),
			Payload:   events.AvatarUpdatedPayload{AvatarURL: avatarURL},
		})
	}
	return avatarURL, nil
}

// transform decodes the upload and produces a size×size JPEG at the
// configured quality.
func (s *AvatarService) transform(file io.Reader) ([]byte, error) {
	original, _, err := image.Decode(file)
	if err != nil {
		return nil, apperrors.NewUnsupportedImage(err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, s.size, s.size))
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), original, original.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
