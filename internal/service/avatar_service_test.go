package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-api/internal/config"
	"github.com/spec-kit/contacts-api/internal/domain"
	"github.com/spec-kit/contacts-api/internal/storage"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

func newTestAvatarService(t *testing.T, repo *fakeUserRepo) (*AvatarService, string) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewAvatarStore(dir, "/avatars")
	svc := NewAvatarService(config.AvatarConfig{Size: 250, Quality: 60}, repo, store, nil, zap.NewNop())
	return svc, dir
}

func seedUser(t *testing.T, repo *fakeUserRepo) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: "hash",
		Subscription: domain.SubscriptionStarter,
		AvatarURL:    GravatarURL("a@x.com"),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpdateAvatar_TransformsAndPersists(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo)
	svc, dir := newTestAvatarService(t, repo)

	avatarURL, err := svc.UpdateAvatar(context.Background(), user.ID, "photo.png", bytes.NewReader(pngBytes(t, 640, 480)))
	require.NoError(t, err)
	assert.Equal(t, "/avatars/"+user.ID+"_photo.png", avatarURL)

	stored := repo.stored(user.ID)
	assert.Equal(t, avatarURL, stored.AvatarURL)

	data, err := os.ReadFile(filepath.Join(dir, user.ID+"_photo.png"))
	require.NoError(t, err)

	// The stored file is always a JPEG on a fixed square canvas.
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 250, decoded.Bounds().Dx())
	assert.Equal(t, 250, decoded.Bounds().Dy())
}

func TestUpdateAvatar_MissingFile(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo)
	svc, _ := newTestAvatarService(t, repo)
	before := repo.stored(user.ID).AvatarURL

	_, err := svc.UpdateAvatar(context.Background(), user.ID, "photo.png", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingFile))
	assert.Equal(t, before, repo.stored(user.ID).AvatarURL)
}

func TestUpdateAvatar_UnsupportedImage(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo)
	svc, dir := newTestAvatarService(t, repo)
	before := repo.stored(user.ID).AvatarURL

	_, err := svc.UpdateAvatar(context.Background(), user.ID, "notes.txt", strings.NewReader("not an image"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedImage))
	assert.Equal(t, before, repo.stored(user.ID).AvatarURL)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateAvatar_PersistFailureLeavesOrphanedFile(t *testing.T) {
	repo := newFakeUserRepo()
	user := seedUser(t, repo)
	repo.avatarUpdateErr = pgx.ErrNoRows
	svc, dir := newTestAvatarService(t, repo)

	_, err := svc.UpdateAvatar(context.Background(), user.ID, "photo.png", bytes.NewReader(pngBytes(t, 100, 100)))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	// The moved file stays on disk with no owning record.
	_, statErr := os.Stat(filepath.Join(dir, user.ID+"_photo.png"))
	assert.NoError(t, statErr)
}
