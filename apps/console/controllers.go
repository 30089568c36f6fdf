package main

import (
	"cmp"
	"strings"

	"citydesk/libs/gateway"
)

const (
	entityFloodReport = "flood_report"
	entityFeedback    = "feedback"
	entityBooking     = "booking"
)

// statusTransitions lists the statuses a reviewer may move an item to. A
// status with no entries is terminal.
var statusTransitions = map[string]map[string][]string{
	entityFloodReport: {
		gateway.StatusPending:  {gateway.StatusApproved, gateway.StatusRejected},
		gateway.StatusApproved: {},
		gateway.StatusRejected: {},
	},
	entityFeedback: {
		gateway.StatusPending:    {gateway.StatusProcessing, gateway.StatusRejected},
		gateway.StatusProcessing: {gateway.StatusResolved, gateway.StatusRejected},
		gateway.StatusResolved:   {},
		gateway.StatusRejected:   {},
	},
	entityBooking: {
		gateway.StatusPending:   {gateway.StatusConfirmed, gateway.StatusCancelled},
		gateway.StatusConfirmed: {},
		gateway.StatusCancelled: {},
		gateway.StatusCompleted: {},
	},
}

var (
	floodReportStatuses = []string{gateway.StatusPending, gateway.StatusApproved, gateway.StatusRejected}
	feedbackStatuses    = []string{gateway.StatusPending, gateway.StatusProcessing, gateway.StatusResolved, gateway.StatusRejected}
)

func transitionAllowed(entity, from, to string) bool {
	for _, candidate := range statusTransitions[entity][from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func isTerminalStatus(entity, status string) bool {
	next, ok := statusTransitions[entity][status]
	return ok && len(next) == 0
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

// compareTimestamps orders backend timestamps chronologically. Values that do
// not parse sort first.
func compareTimestamps(left, right string) int {
	l, lok := gateway.ParseTimestamp(left)
	r, rok := gateway.ParseTimestamp(right)
	switch {
	case !lok && !rok:
		return 0
	case !lok:
		return -1
	case !rok:
		return 1
	}
	return l.Compare(r)
}

func compareFolded(left, right string) int {
	return strings.Compare(strings.ToLower(left), strings.ToLower(right))
}

func floodReportListShape() listShape[gateway.FloodReport] {
	return listShape[gateway.FloodReport]{
		name: "flood_reports",
		id:   func(r gateway.FloodReport) int { return r.ID },
		searchText: func(r gateway.FloodReport) []string {
			return []string{r.Title, r.Address, r.UserName, r.UserEmail}
		},
		sorters: map[string]func(a, b gateway.FloodReport) int{
			"createdAt": func(a, b gateway.FloodReport) int { return compareTimestamps(a.CreatedAt, b.CreatedAt) },
			"title":     func(a, b gateway.FloodReport) int { return compareFolded(a.Title, b.Title) },
			"status":    func(a, b gateway.FloodReport) int { return compareFolded(a.Status, b.Status) },
		},
		defaultSort: "createdAt",
		defaultDesc: true,
	}
}

func feedbackListShape() listShape[gateway.Feedback] {
	return listShape[gateway.Feedback]{
		name: "feedback",
		id:   func(f gateway.Feedback) int { return f.ID },
		searchText: func(f gateway.Feedback) []string {
			return []string{f.Title, f.Description, f.UserName, f.UserEmail}
		},
		sorters: map[string]func(a, b gateway.Feedback) int{
			"createdAt": func(a, b gateway.Feedback) int { return compareTimestamps(a.CreatedAt, b.CreatedAt) },
			"title":     func(a, b gateway.Feedback) int { return compareFolded(a.Title, b.Title) },
			"category":  func(a, b gateway.Feedback) int { return compareFolded(a.Category, b.Category) },
			"status":    func(a, b gateway.Feedback) int { return compareFolded(a.Status, b.Status) },
		},
		defaultSort: "createdAt",
		defaultDesc: true,
	}
}

func eventBannerListShape() listShape[gateway.EventBanner] {
	return listShape[gateway.EventBanner]{
		name:       "event_banners",
		id:         func(b gateway.EventBanner) int { return b.ID },
		searchText: func(b gateway.EventBanner) []string { return []string{b.Title} },
		sorters: map[string]func(a, b gateway.EventBanner) int{
			"createdAt": func(a, b gateway.EventBanner) int { return compareTimestamps(a.CreatedAt, b.CreatedAt) },
			"title":     func(a, b gateway.EventBanner) int { return compareFolded(a.Title, b.Title) },
		},
		defaultSort: "createdAt",
		defaultDesc: true,
	}
}

func tourListShape() listShape[gateway.Tour] {
	return listShape[gateway.Tour]{
		name:       "tours",
		id:         func(t gateway.Tour) int { return t.ID },
		searchText: func(t gateway.Tour) []string { return []string{t.NameTour, t.TourType} },
		sorters: map[string]func(a, b gateway.Tour) int{
			"nameTour":  func(a, b gateway.Tour) int { return compareFolded(a.NameTour, b.NameTour) },
			"tourType":  func(a, b gateway.Tour) int { return compareFolded(a.TourType, b.TourType) },
			"price":     func(a, b gateway.Tour) int { return cmp.Compare(a.Price, b.Price) },
			"maxPeople": func(a, b gateway.Tour) int { return cmp.Compare(a.MaxPeople, b.MaxPeople) },
		},
		defaultSort: "nameTour",
	}
}

func bookingListShape() listShape[gateway.Booking] {
	return listShape[gateway.Booking]{
		name: "bookings",
		id:   func(b gateway.Booking) int { return b.BookingID },
		searchText: func(b gateway.Booking) []string {
			fields := []string{}
			if b.User != nil {
				fields = append(fields, b.User.DisplayName(), b.User.Email)
			}
			if b.Tour != nil {
				fields = append(fields, b.Tour.NameTour)
			}
			return fields
		},
		sorters: map[string]func(a, b gateway.Booking) int{
			"bookingDate": func(a, b gateway.Booking) int { return compareTimestamps(a.BookingDate, b.BookingDate) },
			"travelDate":  func(a, b gateway.Booking) int { return compareTimestamps(a.TravelDate, b.TravelDate) },
			"totalPrice":  func(a, b gateway.Booking) int { return cmp.Compare(a.TotalPrice, b.TotalPrice) },
			"status":      func(a, b gateway.Booking) int { return compareFolded(a.Status, b.Status) },
		},
		defaultSort: "bookingDate",
		defaultDesc: true,
	}
}

func userListShape() listShape[gateway.User] {
	return listShape[gateway.User]{
		name:       "users",
		id:         func(u gateway.User) int { return u.ID },
		searchText: func(u gateway.User) []string { return []string{u.Email, u.FullName, u.PhoneNumber} },
		sorters: map[string]func(a, b gateway.User) int{
			"createdAt": func(a, b gateway.User) int { return compareTimestamps(a.CreatedAt, b.CreatedAt) },
			"email":     func(a, b gateway.User) int { return compareFolded(a.Email, b.Email) },
			"fullName":  func(a, b gateway.User) int { return compareFolded(a.FullName, b.FullName) },
		},
		defaultSort: "createdAt",
		defaultDesc: true,
	}
}
