package main

import (
	"fmt"
	"net/http"
	"strings"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
)

func (a *App) adminDashboardPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	ws := a.adminWorkspace(c)

	snapshot, err := ws.dashboard.Load(c.Request.Context())
	base := a.adminBaseData(c, "page_title_dashboard", "dashboard")
	if err != nil {
		if a.redirectOnUnauthorized(c, err) {
			return
		}
		a.log.Warn("dashboard degraded", "error", err, "request_id", c.GetString("requestID"))
		if base.ErrorMessage == "" {
			base.ErrorMessage = adminText(lang, "error_dashboard_degraded")
		}
	}

	a.renderAdminTemplate(c, http.StatusOK, adminTemplateDashboardPath, a.buildDashboardView(base, snapshot, lang))
}

func (a *App) buildDashboardView(base adminBaseViewData, snapshot DashboardSnapshot, lang string) adminDashboardViewData {
	now := a.clock()
	activity := make([]adminActivityRowView, 0, len(snapshot.Activity))
	for _, item := range snapshot.Activity {
		row := adminActivityRowView{
			KindLabel: adminText(lang, "kind_"+item.Kind),
			Title:     item.Title,
			When:      RelativeTime(now, item.At, lang),
			URL:       activityURL(item),
		}
		if item.Status != "" {
			row.StatusLabel = adminStatusLabel(lang, item.Status)
		}
		activity = append(activity, row)
	}

	banners := make([]adminBannerCardView, 0, len(snapshot.RecentBanners))
	for _, banner := range snapshot.RecentBanners {
		banners = append(banners, adminBannerCardView{ID: banner.ID, Title: banner.Title, Image: a.adminImageState(banner.ImageURL)})
	}

	generated := ""
	if !snapshot.GeneratedAt.IsZero() {
		generated = formatAdminTime(snapshot.GeneratedAt)
	}

	return adminDashboardViewData{
		adminBaseViewData: base,
		Counts:            snapshot.Counts,
		FloodStatus:       histogramRows(lang, snapshot.FloodStatus),
		FeedbackStatus:    histogramRows(lang, snapshot.FeedbackStatus),
		BookingStatus:     histogramRows(lang, snapshot.BookingStatus),
		Activity:          activity,
		Banners:           banners,
		GeneratedAt:       generated,
		Degraded:          snapshot.Degraded,
	}
}

func histogramRows(lang string, buckets []statusCount) []adminHistogramRowView {
	total := 0
	for _, bucket := range buckets {
		total += bucket.Count
	}
	rows := make([]adminHistogramRowView, 0, len(buckets))
	for _, bucket := range buckets {
		percent := 0
		if total > 0 {
			percent = bucket.Count * 100 / total
		}
		rows = append(rows, adminHistogramRowView{Label: adminStatusLabel(lang, bucket.Status), Count: bucket.Count, Percent: percent})
	}
	return rows
}

func activityURL(item ActivityItem) string {
	switch item.Kind {
	case activityKindFloodReport:
		return fmt.Sprintf("/admin/flood-reports/%d", item.ID)
	case activityKindFeedback:
		return fmt.Sprintf("/admin/feedback/%d", item.ID)
	case activityKindBooking:
		return "/admin/bookings"
	case activityKindUser:
		return "/admin/users"
	}
	return adminBasePath
}

func (a *App) adminDashboardExportHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", dashboardExportPDF)))

	snapshot, err := a.adminWorkspace(c).dashboard.Load(c.Request.Context())
	if err != nil {
		if a.redirectOnUnauthorized(c, err) {
			return
		}
		redirectAdminWithMessage(c, adminBasePath, "error", adminText(lang, "error_dashboard_degraded"))
		return
	}

	data, contentType, err := renderDashboardExport(snapshot, format, a.cfg.DashboardExportTitle)
	if err != nil {
		a.log.Error("dashboard export failed", "format", format, "error", err)
		redirectAdminWithMessage(c, adminBasePath, "error", adminText(lang, "error_export_failed"))
		return
	}

	filename := dashboardExportFilename(format, a.clock())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

// adminDashboardAPIHandler serves the snapshot as JSON. A degraded snapshot
// is still returned, with a 503 status.
func (a *App) adminDashboardAPIHandler(c *gin.Context) {
	snapshot, err := a.adminWorkspace(c).dashboard.Load(c.Request.Context())
	if err != nil {
		if gateway.IsUnauthorized(err) {
			a.endAdminSession(c)
			writeAPIError(c, &apiError{Status: http.StatusUnauthorized, Code: "session_expired", Message: ErrAuthExpired.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, snapshot)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
