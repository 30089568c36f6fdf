package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"citydesk/libs/gateway"

	"golang.org/x/sync/errgroup"
)

const (
	dashboardRecentPerKind  = 5
	dashboardRecentUsers    = 3
	dashboardActivityLimit  = 10
	dashboardRecentBanners  = 3
	dashboardUnknownStatus  = "Unknown"
	activityKindFloodReport = "flood_report"
	activityKindFeedback    = "feedback"
	activityKindBooking     = "booking"
	activityKindUser        = "user"
)

type dashboardSource interface {
	ListUsers(ctx context.Context) ([]gateway.User, error)
	ListEventBanners(ctx context.Context) ([]gateway.EventBanner, error)
	ListFeedback(ctx context.Context, status string) ([]gateway.Feedback, error)
	ListFloodReports(ctx context.Context, status string) ([]gateway.FloodReport, error)
	ListBookings(ctx context.Context) ([]gateway.Booking, error)
}

type DashboardCounts struct {
	Users               int `json:"users"`
	EventBanners        int `json:"eventBanners"`
	Feedback            int `json:"feedback"`
	FloodReports        int `json:"floodReports"`
	Bookings            int `json:"bookings"`
	PendingFloodReports int `json:"pendingFloodReports"`
	PendingFeedback     int `json:"pendingFeedback"`
	PendingBookings     int `json:"pendingBookings"`
}

type statusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ActivityItem struct {
	Kind   string    `json:"kind"`
	ID     int       `json:"id"`
	Title  string    `json:"title"`
	Status string    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}

type DashboardSnapshot struct {
	Counts         DashboardCounts       `json:"counts"`
	FloodStatus    []statusCount         `json:"floodStatus"`
	FeedbackStatus []statusCount         `json:"feedbackStatus"`
	BookingStatus  []statusCount         `json:"bookingStatus"`
	Activity       []ActivityItem        `json:"activity"`
	RecentBanners  []gateway.EventBanner `json:"recentBanners"`
	GeneratedAt    time.Time             `json:"generatedAt"`
	Degraded       bool                  `json:"degraded"`
	Error          string                `json:"error,omitempty"`
}

// DashboardAggregator fans out to all five collections and publishes a
// snapshot only when every fetch succeeded.
type DashboardAggregator struct {
	source dashboardSource
	log    *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last DashboardSnapshot
}

func newDashboardAggregator(source dashboardSource, logger *slog.Logger) *DashboardAggregator {
	return &DashboardAggregator{source: source, log: logger, now: time.Now}
}

// Load waits for all fetches to settle. When any fails it returns the
// last-known snapshot marked Degraded together with the error.
func (d *DashboardAggregator) Load(ctx context.Context) (DashboardSnapshot, error) {
	var (
		users    []gateway.User
		banners  []gateway.EventBanner
		feedback []gateway.Feedback
		reports  []gateway.FloodReport
		bookings []gateway.Booking
	)

	var g errgroup.Group
	fetch := func(name string, run func() error) {
		g.Go(func() error {
			if err := run(); err != nil {
				d.log.Warn("dashboard fetch failed", "collection", name, "error", err)
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	fetch("users", func() (err error) { users, err = d.source.ListUsers(ctx); return err })
	fetch("event_banners", func() (err error) { banners, err = d.source.ListEventBanners(ctx); return err })
	fetch("feedback", func() (err error) { feedback, err = d.source.ListFeedback(ctx, ""); return err })
	fetch("flood_reports", func() (err error) { reports, err = d.source.ListFloodReports(ctx, ""); return err })
	fetch("bookings", func() (err error) { bookings, err = d.source.ListBookings(ctx); return err })

	if err := g.Wait(); err != nil {
		d.mu.Lock()
		degraded := d.last
		d.mu.Unlock()
		degraded.Degraded = true
		degraded.Error = gateway.Message(err)
		return degraded, err
	}

	snapshot := buildDashboardSnapshot(users, banners, feedback, reports, bookings)
	snapshot.GeneratedAt = d.now()

	d.mu.Lock()
	d.last = snapshot
	d.mu.Unlock()
	return snapshot, nil
}

func buildDashboardSnapshot(users []gateway.User, banners []gateway.EventBanner, feedback []gateway.Feedback, reports []gateway.FloodReport, bookings []gateway.Booking) DashboardSnapshot {
	counts := DashboardCounts{
		Users:        len(users),
		EventBanners: len(banners),
		Feedback:     len(feedback),
		FloodReports: len(reports),
		Bookings:     len(bookings),
	}

	floodHistogram := map[string]int{}
	for _, report := range reports {
		floodHistogram[statusBucket(report.Status)]++
		if report.Status == gateway.StatusPending {
			counts.PendingFloodReports++
		}
	}
	feedbackHistogram := map[string]int{}
	for _, item := range feedback {
		feedbackHistogram[statusBucket(item.Status)]++
		if item.Status == gateway.StatusPending {
			counts.PendingFeedback++
		}
	}
	bookingHistogram := map[string]int{}
	for _, booking := range bookings {
		bookingHistogram[statusBucket(booking.Status)]++
		if booking.Status == gateway.StatusPending {
			counts.PendingBookings++
		}
	}

	return DashboardSnapshot{
		Counts:         counts,
		FloodStatus:    sortedHistogram(floodHistogram),
		FeedbackStatus: sortedHistogram(feedbackHistogram),
		BookingStatus:  sortedHistogram(bookingHistogram),
		Activity:       buildRecentActivity(users, feedback, reports, bookings),
		RecentBanners:  recentBanners(banners),
	}
}

func statusBucket(status string) string {
	if strings.TrimSpace(status) == "" {
		return dashboardUnknownStatus
	}
	return status
}

func sortedHistogram(histogram map[string]int) []statusCount {
	buckets := make([]statusCount, 0, len(histogram))
	for status, count := range histogram {
		buckets = append(buckets, statusCount{Status: status, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Status < buckets[j].Status
	})
	return buckets
}

// buildRecentActivity takes the newest few of each kind, merges them and
// orders the feed by parsed timestamp. Items without a usable timestamp go
// last.
func buildRecentActivity(users []gateway.User, feedback []gateway.Feedback, reports []gateway.FloodReport, bookings []gateway.Booking) []ActivityItem {
	items := []ActivityItem{}

	reportItems := make([]ActivityItem, 0, len(reports))
	for _, report := range reports {
		reportItems = append(reportItems, activityItem(activityKindFloodReport, report.ID, report.Title, report.Status, report.CreatedAt))
	}
	items = append(items, newestActivity(reportItems, dashboardRecentPerKind)...)

	feedbackItems := make([]ActivityItem, 0, len(feedback))
	for _, item := range feedback {
		feedbackItems = append(feedbackItems, activityItem(activityKindFeedback, item.ID, item.Title, item.Status, item.CreatedAt))
	}
	items = append(items, newestActivity(feedbackItems, dashboardRecentPerKind)...)

	bookingItems := make([]ActivityItem, 0, len(bookings))
	for _, booking := range bookings {
		title := ""
		if booking.Tour != nil {
			title = booking.Tour.NameTour
		}
		if name := booking.User.DisplayName(); name != "" {
			title = strings.TrimSpace(name + " · " + title)
		}
		bookingItems = append(bookingItems, activityItem(activityKindBooking, booking.BookingID, title, booking.Status, booking.BookingDate))
	}
	items = append(items, newestActivity(bookingItems, dashboardRecentPerKind)...)

	userItems := make([]ActivityItem, 0, len(users))
	for _, user := range users {
		userItems = append(userItems, activityItem(activityKindUser, user.ID, firstNonEmpty(user.FullName, user.Email), "", user.CreatedAt))
	}
	items = append(items, newestActivity(userItems, dashboardRecentUsers)...)

	return newestActivity(items, dashboardActivityLimit)
}

func activityItem(kind string, id int, title, status, timestamp string) ActivityItem {
	at, _ := gateway.ParseTimestamp(timestamp)
	return ActivityItem{Kind: kind, ID: id, Title: title, Status: status, At: at}
}

func newestActivity(items []ActivityItem, limit int) []ActivityItem {
	sorted := append([]ActivityItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.After(sorted[j].At)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func recentBanners(banners []gateway.EventBanner) []gateway.EventBanner {
	sorted := append([]gateway.EventBanner(nil), banners...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareTimestamps(sorted[i].CreatedAt, sorted[j].CreatedAt) > 0
	})
	if len(sorted) > dashboardRecentBanners {
		sorted = sorted[:dashboardRecentBanners]
	}
	return sorted
}

// RelativeTime renders at as a coarse age. It is for display only.
func RelativeTime(now, at time.Time, lang string) string {
	if at.IsZero() {
		return adminText(lang, "time_unknown")
	}
	age := now.Sub(at)
	switch {
	case age < time.Minute:
		return adminText(lang, "time_just_now")
	case age < time.Hour:
		return fmt.Sprintf(adminText(lang, "time_minutes_ago"), int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf(adminText(lang, "time_hours_ago"), int(age/time.Hour))
	default:
		return fmt.Sprintf(adminText(lang, "time_days_ago"), int(age/(24*time.Hour)))
	}
}
