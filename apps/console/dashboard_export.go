package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	dashboardExportPDF = "pdf"
	dashboardExportCSV = "csv"
)

func buildDashboardCSV(snapshot DashboardSnapshot) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buffer)
	if err := writer.Write([]string{"section", "name", "value", "detail"}); err != nil {
		return nil, err
	}

	counts := snapshot.Counts
	rows := [][]string{
		{"count", "users", strconv.Itoa(counts.Users), ""},
		{"count", "event_banners", strconv.Itoa(counts.EventBanners), ""},
		{"count", "feedback", strconv.Itoa(counts.Feedback), ""},
		{"count", "flood_reports", strconv.Itoa(counts.FloodReports), ""},
		{"count", "bookings", strconv.Itoa(counts.Bookings), ""},
		{"pending", "flood_reports", strconv.Itoa(counts.PendingFloodReports), ""},
		{"pending", "feedback", strconv.Itoa(counts.PendingFeedback), ""},
		{"pending", "bookings", strconv.Itoa(counts.PendingBookings), ""},
	}
	for _, bucket := range snapshot.FloodStatus {
		rows = append(rows, []string{"status_flood_reports", bucket.Status, strconv.Itoa(bucket.Count), ""})
	}
	for _, bucket := range snapshot.FeedbackStatus {
		rows = append(rows, []string{"status_feedback", bucket.Status, strconv.Itoa(bucket.Count), ""})
	}
	for _, bucket := range snapshot.BookingStatus {
		rows = append(rows, []string{"status_bookings", bucket.Status, strconv.Itoa(bucket.Count), ""})
	}
	for _, item := range snapshot.Activity {
		at := ""
		if !item.At.IsZero() {
			at = item.At.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{"activity", item.Kind, strconv.Itoa(item.ID), fmt.Sprintf("%s|%s|%s", item.Title, item.Status, at)})
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func buildDashboardPDF(snapshot DashboardSnapshot, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; Vietnamese titles need translating first
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, tr(title))

	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", snapshot.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	counts := snapshot.Counts
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Totals")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("- Users: %d", counts.Users),
		fmt.Sprintf("- Event banners: %d", counts.EventBanners),
		fmt.Sprintf("- Feedback: %d (pending %d)", counts.Feedback, counts.PendingFeedback),
		fmt.Sprintf("- Flood reports: %d (pending %d)", counts.FloodReports, counts.PendingFloodReports),
		fmt.Sprintf("- Bookings: %d (pending %d)", counts.Bookings, counts.PendingBookings),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}

	writeDistribution := func(heading string, buckets []statusCount) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, heading)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, bucket := range buckets {
			pdf.Cell(0, 6, tr(fmt.Sprintf("- %s: %d", bucket.Status, bucket.Count)))
			pdf.Ln(6)
		}
	}
	writeDistribution("Flood report status distribution", snapshot.FloodStatus)
	writeDistribution("Feedback status distribution", snapshot.FeedbackStatus)
	writeDistribution("Booking status distribution", snapshot.BookingStatus)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Recent activity")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range snapshot.Activity {
		at := "unknown"
		if !item.At.IsZero() {
			at = item.At.UTC().Format("2006-01-02 15:04")
		}
		pdf.Cell(0, 6, tr(fmt.Sprintf("- [%s] %s #%d %s %s", at, item.Kind, item.ID, item.Title, item.Status)))
		pdf.Ln(6)
	}

	buffer := bytes.NewBuffer(nil)
	if err := pdf.Output(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderDashboardExport(snapshot DashboardSnapshot, format, title string) ([]byte, string, error) {
	switch format {
	case dashboardExportCSV:
		data, err := buildDashboardCSV(snapshot)
		return data, "text/csv; charset=utf-8", err
	case dashboardExportPDF:
		data, err := buildDashboardPDF(snapshot, title)
		return data, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func dashboardExportFilename(format string, at time.Time) string {
	return fmt.Sprintf("citydesk-dashboard-%s.%s", at.UTC().Format("20060102-1504"), format)
}

// runDashboardExport implements `export-dashboard <pdf|csv> <email> <password> [path]`.
func (a *App) runDashboardExport(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: export-dashboard <pdf|csv> <email> <password> [path]")
	}
	format := args[0]
	if format != dashboardExportPDF && format != dashboardExportCSV {
		return fmt.Errorf("invalid format: %s", format)
	}

	session, err := a.authenticateAdmin(ctx, args[1], args[2])
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	ctx = withAdminSession(ctx, *session)

	snapshot, err := newDashboardAggregator(a.backend, a.log).Load(ctx)
	if err != nil {
		return fmt.Errorf("load dashboard: %w", err)
	}

	data, _, err := renderDashboardExport(snapshot, format, a.cfg.DashboardExportTitle)
	if err != nil {
		return err
	}

	path := dashboardExportFilename(format, a.clock())
	if len(args) > 3 {
		path = args[3]
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	a.log.Info("dashboard export written", "path", path, "format", format, "bytes", len(data))
	return nil
}
