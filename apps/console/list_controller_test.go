package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"citydesk/libs/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func feedbackFixture() []gateway.Feedback {
	return []gateway.Feedback{
		{ID: 1, Title: "Đèn đường hỏng", Category: "Infrastructure", Status: "Pending", CreatedAt: "2026-10-03T08:00:00Z"},
		{ID: 2, Title: "Kẹt xe giờ cao điểm", Category: "Traffic", Status: "Processing", CreatedAt: "2026-10-05T08:00:00Z"},
		{ID: 3, Title: "Rác thải ven kênh", Category: "Environment", Status: "Resolved", CreatedAt: "2026-10-01T08:00:00Z"},
	}
}

func TestListControllerDiscardsStaleResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	stale := []gateway.Feedback{{ID: 99, Title: "stale"}}

	lc := newListController(feedbackListShape(), func(ctx context.Context, filter string) ([]gateway.Feedback, error) {
		if filter == "Pending" {
			close(entered)
			<-release
			return stale, nil
		}
		return feedbackFixture(), nil
	}, discardLogger())

	done := make(chan error, 1)
	go func() { done <- lc.Load(context.Background(), "Pending") }()
	<-entered

	require.NoError(t, lc.Load(context.Background(), ""))
	close(release)
	require.NoError(t, <-done)

	snapshot := lc.Snapshot()
	assert.Equal(t, listLoaded, snapshot.State)
	assert.Equal(t, "", snapshot.Filter)
	assert.Len(t, snapshot.Data, 3)
	_, found := lc.Find(99)
	assert.False(t, found, "overtaken response must not be published")
}

func TestListControllerFailureKeepsPreviousData(t *testing.T) {
	fail := false
	lc := newListController(feedbackListShape(), func(ctx context.Context, filter string) ([]gateway.Feedback, error) {
		if fail {
			return nil, &gateway.Error{Status: 500, Message: "backend down"}
		}
		return feedbackFixture(), nil
	}, discardLogger())

	require.NoError(t, lc.Load(context.Background(), ""))
	fail = true
	err := lc.Load(context.Background(), "")
	require.Error(t, err)

	snapshot := lc.Snapshot()
	assert.Equal(t, listFailed, snapshot.State)
	assert.Equal(t, "backend down", snapshot.Error)
	assert.Len(t, snapshot.Data, 3)
}

func TestListControllerEnsureHonoursFreshness(t *testing.T) {
	calls := 0
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	lc := newListController(feedbackListShape(), func(ctx context.Context, filter string) ([]gateway.Feedback, error) {
		calls++
		return feedbackFixture(), nil
	}, discardLogger())
	lc.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, lc.Ensure(ctx, "", listFreshnessWindow, false))
	require.NoError(t, lc.Ensure(ctx, "", listFreshnessWindow, false))
	assert.Equal(t, 1, calls)

	require.NoError(t, lc.Ensure(ctx, "", listFreshnessWindow, true))
	assert.Equal(t, 2, calls, "force reloads")

	require.NoError(t, lc.Ensure(ctx, "Pending", listFreshnessWindow, false))
	assert.Equal(t, 3, calls, "a different filter reloads")

	now = now.Add(3 * time.Second)
	require.NoError(t, lc.Ensure(ctx, "Pending", listFreshnessWindow, false))
	assert.Equal(t, 4, calls, "stale data reloads")
}

func TestListControllerViewSearchSortAndPage(t *testing.T) {
	lc := newListController(feedbackListShape(), func(ctx context.Context, filter string) ([]gateway.Feedback, error) {
		return feedbackFixture(), nil
	}, discardLogger())
	require.NoError(t, lc.Load(context.Background(), ""))

	view := lc.View(ListQuery{})
	assert.Equal(t, "createdAt", view.SortKey)
	assert.True(t, view.SortDesc)
	require.Len(t, view.Items, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{view.Items[0].ID, view.Items[1].ID, view.Items[2].ID})

	byTitle := lc.View(ListQuery{SortKey: "title"})
	assert.Equal(t, 1, byTitle.Items[0].ID)

	search := lc.View(ListQuery{Search: "KẸT XE"})
	require.Len(t, search.Items, 1)
	assert.Equal(t, 2, search.Items[0].ID)

	paged := lc.View(ListQuery{Page: 2, PageSize: 2})
	assert.Equal(t, 3, paged.Total)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, 3, paged.Items[0].ID)

	beyond := lc.View(ListQuery{Page: 9, PageSize: 2})
	assert.Empty(t, beyond.Items)

	_ = lc.View(ListQuery{SortKey: "title"})
	data := lc.Snapshot().Data
	assert.Equal(t, 1, data[0].ID, "view must not reorder stored data")
}

func TestListControllerSelectionAndMutate(t *testing.T) {
	items := feedbackFixture()
	lc := newListController(feedbackListShape(), func(ctx context.Context, filter string) ([]gateway.Feedback, error) {
		return items, nil
	}, discardLogger())
	ctx := context.Background()
	require.NoError(t, lc.Load(ctx, ""))

	assert.True(t, lc.Toggle(3))
	assert.True(t, lc.Toggle(1))
	assert.False(t, lc.Toggle(3))
	assert.Equal(t, []int{1}, lc.Selected())

	lc.SelectAll()
	assert.Equal(t, []int{1, 2, 3}, lc.Selected())

	failed := lc.Mutate(ctx, func(ctx context.Context) error { return errors.New("rejected") })
	require.Error(t, failed)
	assert.Equal(t, []int{1, 2, 3}, lc.Selected(), "failed mutation keeps the selection")

	items = items[:2]
	require.NoError(t, lc.Mutate(ctx, func(ctx context.Context) error { return nil }))
	assert.Empty(t, lc.Selected())
	assert.Len(t, lc.Snapshot().Data, 2)

	lc.Toggle(1)
	lc.Toggle(2)
	items = items[:1]
	require.NoError(t, lc.Refresh(ctx))
	assert.Equal(t, []int{1}, lc.Selected(), "ids that vanished are pruned")
}

func TestListControllerMutateIgnoresRefetchFailure(t *testing.T) {
	calls := 0
	lc := newListController(feedbackListShape(), func(ctx context.Context, filter string) ([]gateway.Feedback, error) {
		calls++
		if calls > 1 {
			return nil, &gateway.Error{Status: 502, Message: "refetch failed"}
		}
		return feedbackFixture(), nil
	}, discardLogger())
	ctx := context.Background()
	require.NoError(t, lc.Load(ctx, ""))

	err := lc.Mutate(ctx, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, listFailed, lc.Snapshot().State)
}
