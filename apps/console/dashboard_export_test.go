package main

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportSnapshot() DashboardSnapshot {
	return DashboardSnapshot{
		Counts:      DashboardCounts{Users: 12, FloodReports: 4, PendingFloodReports: 2},
		FloodStatus: []statusCount{{Status: "Pending", Count: 2}, {Status: "Approved", Count: 2}},
		Activity: []ActivityItem{
			{Kind: activityKindFloodReport, ID: 7, Title: "Ngập, đường", Status: "Pending", At: time.Date(2026, 10, 13, 1, 2, 3, 0, time.UTC)},
			{Kind: activityKindUser, ID: 3, Title: "Bình"},
		},
		GeneratedAt: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuildDashboardCSV(t *testing.T) {
	data, err := buildDashboardCSV(exportSnapshot())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"section", "name", "value", "detail"}, records[0])
	assert.Contains(t, records, []string{"count", "users", "12", ""})
	assert.Contains(t, records, []string{"pending", "flood_reports", "2", ""})
	assert.Contains(t, records, []string{"status_flood_reports", "Approved", "2", ""})
	assert.Contains(t, records, []string{"activity", "flood_report", "7", "Ngập, đường|Pending|2026-10-13T01:02:03Z"})
	assert.Contains(t, records, []string{"activity", "user", "3", "Bình||"})
}

func TestRenderDashboardExportFormats(t *testing.T) {
	pdf, contentType, err := renderDashboardExport(exportSnapshot(), dashboardExportPDF, "City dashboard summary")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	_, contentType, err = renderDashboardExport(exportSnapshot(), dashboardExportCSV, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", contentType)

	_, _, err = renderDashboardExport(exportSnapshot(), "xlsx", "")
	require.Error(t, err)
}

func TestDashboardExportFilename(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 5, 0, 0, time.FixedZone("ICT", 7*60*60))
	assert.Equal(t, "citydesk-dashboard-20261016-0205.csv", dashboardExportFilename(dashboardExportCSV, at))
}
