package blobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

func TestObjectKeys(t *testing.T) {
	day := calendar.NewDate(2024, time.February, 29)

	assert.Equal(t, "Users/42/DailyPictures/02.29.24.png", ObjectKey(42, day))
	assert.Equal(t, "Users/42/DailyPictures/thumbs/02.29.24.webp", ThumbnailKey(42, day))
	assert.Equal(t, "Users/42/DailyPictures/", UserPrefix(42))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"local ok", Config{Driver: DriverLocal, LocalDir: "./uploads"}, false},
		{"local without dir", Config{Driver: DriverLocal}, true},
		{"s3 ok", Config{Driver: DriverS3, AccessKeyID: "a", SecretAccessKey: "b", BucketName: "c"}, false},
		{"s3 without bucket", Config{Driver: DriverS3, AccessKeyID: "a", SecretAccessKey: "b"}, true},
		{"s3 without secret", Config{Driver: DriverS3, AccessKeyID: "a", BucketName: "c"}, true},
		{"unknown driver", Config{Driver: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultPresignTTL, cfg.PresignTTL)
		})
	}
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()
	key := ObjectKey(7, calendar.NewDate(2024, time.March, 1))

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Put(ctx, key, []byte("png-bytes"), "image/png"))
	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "/uploads/Users/7/DailyPictures/03.01.24.png", store.URL(key))
	url, err := store.PresignGet(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, store.URL(key), url)

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key), "deleting twice is fine")
	ok, _ = store.Exists(ctx, key)
	assert.False(t, ok)
}

func TestLocalStore_KeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/uploads")
	require.NoError(t, err)

	p, err := store.path("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, root+"/etc/passwd", p)

	_, err = store.path("")
	assert.Error(t, err)
}
