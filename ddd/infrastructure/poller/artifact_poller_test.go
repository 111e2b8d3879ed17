package poller_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"separation-service/ddd/infrastructure/poller"
)

func TestAwaitArtifact_FindsFileOnceItAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocals.wav")
	p := poller.NewArtifactPoller(50, 10*time.Millisecond)

	go func() {
		time.Sleep(60 * time.Millisecond)
		_ = os.WriteFile(path, []byte("wav"), 0o644)
	}()

	found, err := p.AwaitArtifact(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestAwaitArtifact_BudgetExhaustionIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.wav")
	p := poller.NewArtifactPoller(3, 5*time.Millisecond)

	found, err := p.AwaitArtifact(context.Background(), path)
	require.NoError(t, err, "a slow job timing out is a normal outcome")
	assert.False(t, found)
}

func TestAwaitArtifact_CancelStopsPolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.wav")
	p := poller.NewArtifactPoller(1000, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	found, err := p.AwaitArtifact(ctx, path)
	assert.False(t, found)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second, "cancellation must stop probing well before the budget")
}

func TestAwaitArtifact_ExistingFileFoundOnFirstTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ready.wav")
	require.NoError(t, os.WriteFile(path, []byte("wav"), 0o644))
	p := poller.NewArtifactPoller(60, 5*time.Millisecond)

	found, err := p.AwaitArtifact(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, found)
}
