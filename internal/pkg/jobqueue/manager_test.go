package jobqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartStop(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	m := NewManager(NewQueueWithClient(client, 1))

	assert.False(t, m.IsRunning())
	m.Start()
	m.Start()
	assert.True(t, m.IsRunning())
	assert.True(t, m.GetQueue().running)

	m.Stop()
	assert.False(t, m.IsRunning())
	assert.False(t, m.GetQueue().running)
	m.Stop()

	// restartable after a stop
	m.Start()
	t.Cleanup(m.Stop)

	ran := make(chan struct{})
	m.GetQueue().RegisterHandler(JobTypePhotoThumbnail, func(context.Context, *Job) error {
		close(ran)
		return nil
	})
	_, err := m.GetQueue().Enqueue(context.Background(), JobTypePhotoThumbnail, ThumbnailPayload{UserID: 1, Date: "2024-01-01"})
	require.NoError(t, err)

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run after restart")
	}
}
