package main

import (
	"testing"
	"time"

	"citydesk/libs/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration, now *time.Time) *workspaceRegistry {
	registry := newWorkspaceRegistry(ttl, func(id string) *workspace {
		return &workspace{id: id, dialogs: map[ReviewKind]*ReviewDialog{}}
	})
	registry.now = func() time.Time { return *now }
	return registry
}

func TestWorkspaceRegistryReusesWithinTTL(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	registry := newTestRegistry(time.Hour, &now)

	first := registry.Get("a")
	now = now.Add(50 * time.Minute)
	assert.Same(t, first, registry.Get("a"))

	now = now.Add(50 * time.Minute)
	assert.Same(t, first, registry.Get("a"), "each access extends the lifetime")

	now = now.Add(61 * time.Minute)
	assert.NotSame(t, first, registry.Get("a"), "an idle workspace starts empty")
}

func TestWorkspaceRegistryPruneAndDrop(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	registry := newTestRegistry(time.Hour, &now)

	registry.Get("idle")
	now = now.Add(30 * time.Minute)
	registry.Get("active")
	require.Equal(t, 2, registry.Len())

	registry.prune(now.Add(45 * time.Minute))
	assert.Equal(t, 1, registry.Len())

	registry.Drop("active")
	assert.Equal(t, 0, registry.Len())
}

func TestWorkspaceDialogsAreKeyedByKindAndItem(t *testing.T) {
	ws := &workspace{dialogs: map[ReviewKind]*ReviewDialog{}}
	backend := &recordingReviewBackend{}

	first, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)
	ws.openDialog(first)

	got, ok := ws.dialog(ReviewFloodReport, 7)
	require.True(t, ok)
	assert.Same(t, first, got)
	_, ok = ws.dialog(ReviewFloodReport, 8)
	assert.False(t, ok)
	_, ok = ws.dialog(ReviewFeedback, 7)
	assert.False(t, ok)

	other := pendingFloodTarget()
	other.ID = 8
	second, err := OpenReview(backend, other, gateway.StatusRejected)
	require.NoError(t, err)
	ws.openDialog(second)
	_, ok = ws.dialog(ReviewFloodReport, 7)
	assert.False(t, ok, "opening another flood review replaces the first")

	ws.closeDialog(ReviewFloodReport)
	_, ok = ws.dialog(ReviewFloodReport, 8)
	assert.False(t, ok)
}
