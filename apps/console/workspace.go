package main

import (
	"context"
	"sync"
	"time"

	"citydesk/libs/gateway"
)

// workspace is the per-session state: list controllers, open review dialogs
// and the dashboard's last-known snapshot. Nothing in it is shared between
// sessions.
type workspace struct {
	id string

	floodReports *ListController[gateway.FloodReport]
	feedback     *ListController[gateway.Feedback]
	eventBanners *ListController[gateway.EventBanner]
	tours        *ListController[gateway.Tour]
	bookings     *ListController[gateway.Booking]
	users        *ListController[gateway.User]
	dashboard    *DashboardAggregator

	mu       sync.Mutex
	dialogs  map[ReviewKind]*ReviewDialog
	lastSeen time.Time
}

func (a *App) newWorkspace(id string) *workspace {
	return &workspace{
		id: id,
		floodReports: newListController(floodReportListShape(), func(ctx context.Context, status string) ([]gateway.FloodReport, error) {
			return a.backend.ListFloodReports(ctx, status)
		}, a.log),
		feedback: newListController(feedbackListShape(), func(ctx context.Context, status string) ([]gateway.Feedback, error) {
			return a.backend.ListFeedback(ctx, status)
		}, a.log),
		eventBanners: newListController(eventBannerListShape(), func(ctx context.Context, _ string) ([]gateway.EventBanner, error) {
			return a.backend.ListEventBanners(ctx)
		}, a.log),
		tours: newListController(tourListShape(), func(ctx context.Context, _ string) ([]gateway.Tour, error) {
			return a.backend.ListTours(ctx)
		}, a.log),
		bookings: newListController(bookingListShape(), func(ctx context.Context, _ string) ([]gateway.Booking, error) {
			return a.backend.ListBookings(ctx)
		}, a.log),
		users: newListController(userListShape(), func(ctx context.Context, _ string) ([]gateway.User, error) {
			return a.backend.ListUsers(ctx)
		}, a.log),
		dashboard: newDashboardAggregator(a.backend, a.log),
		dialogs:   map[ReviewKind]*ReviewDialog{},
	}
}

// openDialog replaces any open dialog of the same kind.
func (w *workspace) openDialog(dialog *ReviewDialog) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dialogs[dialog.Kind()] = dialog
}

// dialog returns the open dialog for kind:id.
func (w *workspace) dialog(kind ReviewKind, id int) (*ReviewDialog, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	dialog, ok := w.dialogs[kind]
	if !ok || dialog.Key() != reviewKey(kind, id) || dialog.State() == reviewClosed {
		return nil, false
	}
	return dialog, true
}

func (w *workspace) closeDialog(kind ReviewKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.dialogs, kind)
}

type workspaceRegistry struct {
	ttl     time.Duration
	factory func(id string) *workspace
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*workspace
}

func newWorkspaceRegistry(ttl time.Duration, factory func(id string) *workspace) *workspaceRegistry {
	return &workspaceRegistry{
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
		items:   map[string]*workspace{},
	}
}

// Get returns the workspace for id, creating an empty one when it expired or
// the process restarted.
func (r *workspaceRegistry) Get(id string) *workspace {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[id]
	if !ok || now.Sub(ws.lastSeen) > r.ttl {
		ws = r.factory(id)
		r.items[id] = ws
	}
	ws.lastSeen = now
	return ws
}

func (r *workspaceRegistry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *workspaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *workspaceRegistry) startCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.prune(now)
			}
		}
	}()
}

func (r *workspaceRegistry) prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ws := range r.items {
		if now.Sub(ws.lastSeen) > r.ttl {
			delete(r.items, id)
		}
	}
}
