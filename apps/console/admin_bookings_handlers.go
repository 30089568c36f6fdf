package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
)

const adminBookingsPath = "/admin/bookings"

func (a *App) adminBookingsPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	bookings := a.adminWorkspace(c).bookings
	query := parseAdminListQuery(c.Request.URL.Query())

	status := http.StatusOK
	if err := bookings.Ensure(c.Request.Context(), "", listFreshnessWindow, c.Query("refresh") == "1"); err != nil {
		if a.redirectOnUnauthorized(c, err) {
			return
		}
		a.log.Warn("load bookings failed", "error", err, "request_id", c.GetString("requestID"))
		status = http.StatusBadGateway
	}

	view := bookings.View(query)
	rows := make([]adminBookingRowView, 0, len(view.Items))
	for _, booking := range view.Items {
		rows = append(rows, bookingRow(lang, booking))
	}

	chrome := newAdminListChrome(adminBookingsPath, "", query, view, "bookingDate", "travelDate", "totalPrice", "status")
	if chrome.LoadError != "" {
		chrome.LoadError = adminText(lang, "error_load_failed") + " " + chrome.LoadError
	}
	a.renderAdminTemplate(c, status, adminTemplateBookingsPath, adminBookingsViewData{
		adminListChrome:   chrome,
		adminBaseViewData: a.adminBaseData(c, "page_title_bookings", "bookings"),
		Rows:              rows,
	})
}

func bookingRow(lang string, booking gateway.Booking) adminBookingRowView {
	row := adminBookingRowView{
		ID:          booking.BookingID,
		Customer:    firstNonEmpty(booking.User.DisplayName(), adminText(lang, "common_dash")),
		TravelDate:  formatAdminTimestamp(booking.TravelDate),
		People:      booking.NumberOfPeople,
		Total:       formatVND(int64(math.Round(booking.TotalPrice))),
		Status:      booking.Status,
		StatusLabel: adminStatusLabel(lang, booking.Status),
		BookedAt:    formatAdminTimestamp(booking.BookingDate),
		Actions: buildAdminStatusActions(lang, entityBooking, booking.Status, func(status string) string {
			return fmt.Sprintf("%s/%d/status?status=%s", adminBookingsPath, booking.BookingID, url.QueryEscape(status))
		}),
	}
	if booking.User != nil {
		row.Email = booking.User.Email
	}
	row.TourName = adminText(lang, "common_dash")
	if booking.Tour != nil && strings.TrimSpace(booking.Tour.NameTour) != "" {
		row.TourName = booking.Tour.NameTour
	}
	if booking.Status == gateway.StatusPending {
		row.CancelURL = fmt.Sprintf("%s/%d/cancel", adminBookingsPath, booking.BookingID)
	}
	return row
}

func (a *App) bookingForAction(c *gin.Context) (gateway.Booking, bool) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminBookingsPath, "error", adminText(lang, "error_not_found"))
		return gateway.Booking{}, false
	}
	bookings := a.adminWorkspace(c).bookings
	booking, found := bookings.Find(id)
	if !found {
		if err := bookings.Ensure(c.Request.Context(), "", listFreshnessWindow, false); err != nil {
			a.handleBackendError(c, err, adminBookingsPath, "error_load_failed")
			return gateway.Booking{}, false
		}
		booking, found = bookings.Find(id)
	}
	if !found {
		redirectAdminWithMessage(c, adminBookingsPath, "error", adminText(lang, "error_not_found"))
		return gateway.Booking{}, false
	}
	return booking, true
}

func (a *App) adminBookingStatusPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	booking, ok := a.bookingForAction(c)
	if !ok {
		return
	}
	next := strings.TrimSpace(c.Query("status"))
	if !transitionAllowed(entityBooking, booking.Status, next) {
		redirectAdminWithMessage(c, adminBookingsPath, "error", adminText(lang, "error_invalid_status"))
		return
	}

	row := bookingRow(lang, booking)
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
		adminBaseViewData: a.adminBaseData(c, "page_title_confirm", "bookings"),
		Prompt: fmt.Sprintf(adminText(lang, "confirm_booking_status"),
			booking.BookingID, adminStatusLabel(lang, booking.Status), adminStatusLabel(lang, next)),
		Details:      []string{row.Customer, row.TourName, row.Total},
		ActionURL:    fmt.Sprintf("%s/%d/status", adminBookingsPath, booking.BookingID),
		CancelURL:    adminBookingsPath,
		ConfirmLabel: adminText(lang, "common_confirm"),
		Hidden: []adminHiddenField{
			{Name: "confirmed", Value: "yes"},
			{Name: "status", Value: next},
		},
	})
}

func (a *App) adminBookingStatusSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	if c.PostForm("confirmed") != "yes" {
		c.Redirect(http.StatusSeeOther, adminBookingsPath)
		return
	}
	booking, ok := a.bookingForAction(c)
	if !ok {
		return
	}
	next := strings.TrimSpace(c.PostForm("status"))
	if !transitionAllowed(entityBooking, booking.Status, next) {
		redirectAdminWithMessage(c, adminBookingsPath, "error", adminText(lang, "error_invalid_status"))
		return
	}

	err := a.adminWorkspace(c).bookings.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return a.backend.UpdateBookingStatus(ctx, booking.BookingID, next)
	})
	if err != nil {
		a.handleBackendError(c, err, adminBookingsPath, "error_update_failed")
		return
	}
	a.log.Info("booking status updated", "booking_id", booking.BookingID, "from", booking.Status, "to", next, "request_id", c.GetString("requestID"))
	redirectAdminWithMessage(c, adminBookingsPath, "notice", adminText(lang, "notice_booking_updated"))
}

func (a *App) adminBookingCancelPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	booking, ok := a.bookingForAction(c)
	if !ok {
		return
	}
	if booking.Status != gateway.StatusPending {
		redirectAdminWithMessage(c, adminBookingsPath, "error", adminText(lang, "error_invalid_status"))
		return
	}
	row := bookingRow(lang, booking)
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
		adminBaseViewData: a.adminBaseData(c, "page_title_confirm", "bookings"),
		Prompt:            fmt.Sprintf(adminText(lang, "confirm_booking_cancel"), booking.BookingID),
		Details:           []string{row.Customer, row.TourName, row.Total},
		ActionURL:         fmt.Sprintf("%s/%d/cancel", adminBookingsPath, booking.BookingID),
		CancelURL:         adminBookingsPath,
		ConfirmLabel:      adminText(lang, "booking_cancel"),
		Danger:            true,
		Hidden:            []adminHiddenField{{Name: "confirmed", Value: "yes"}},
	})
}

func (a *App) adminBookingCancelSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	if c.PostForm("confirmed") != "yes" {
		c.Redirect(http.StatusSeeOther, adminBookingsPath)
		return
	}
	booking, ok := a.bookingForAction(c)
	if !ok {
		return
	}
	if booking.Status != gateway.StatusPending {
		redirectAdminWithMessage(c, adminBookingsPath, "error", adminText(lang, "error_invalid_status"))
		return
	}

	err := a.adminWorkspace(c).bookings.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return a.backend.CancelBooking(ctx, booking.BookingID)
	})
	if err != nil {
		a.handleBackendError(c, err, adminBookingsPath, "error_update_failed")
		return
	}
	redirectAdminWithMessage(c, adminBookingsPath, "notice", adminText(lang, "notice_booking_cancelled"))
}
