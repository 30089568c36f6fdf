package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ListFloodReports lists reports, optionally filtered by status.
func (c *Client) ListFloodReports(ctx context.Context, status string) ([]FloodReport, error) {
	return getList[FloodReport](ctx, c, "/floodreports/admin/all", statusQuery(status))
}

// ReviewFloodReport moves a report to status. Approving requires a water
// level; that is checked before anything is sent.
func (c *Client) ReviewFloodReport(ctx context.Context, id int, status, waterLevel, note string) error {
	body := map[string]string{"status": status, "adminNote": note}
	if status == StatusApproved {
		waterLevel = strings.TrimSpace(waterLevel)
		if waterLevel == "" {
			return validationError("waterLevel", "water level is required before approving a flood report")
		}
		if !IsWaterLevel(waterLevel) {
			return validationError("waterLevel", fmt.Sprintf("unknown water level %q", waterLevel))
		}
		body["waterLevel"] = waterLevel
	}
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/floodreports/admin/%d/review", id), nil, body)
	return err
}

// UpdateFloodReport overwrites the editable fields of a reviewed report.
func (c *Client) UpdateFloodReport(ctx context.Context, id int, edit FloodReportEdit) error {
	if strings.TrimSpace(edit.Title) == "" {
		return validationError("title", "title is required")
	}
	if edit.WaterLevel != "" && !IsWaterLevel(edit.WaterLevel) {
		return validationError("waterLevel", fmt.Sprintf("unknown water level %q", edit.WaterLevel))
	}
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/floodreports/admin/%d", id), nil, edit)
	return err
}

func (c *Client) DeleteFloodReport(ctx context.Context, id int) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/floodreports/admin/%d", id), nil, nil)
	return err
}

// AnalyzeFloodImage asks the AI collaborator to classify the report photo.
// Each call runs a fresh analysis; results may differ between calls.
func (c *Client) AnalyzeFloodImage(ctx context.Context, id int) (*FloodAnalysis, error) {
	raw, err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/aifloodanalysis/analyze/%d", id), nil, nil)
	if err != nil {
		return nil, &AIAnalysisError{Err: err}
	}

	var envelope struct {
		AIAnalysis *FloodAnalysis `json:"aiAnalysis"`
	}
	if err := c.decode(raw, &envelope); err != nil {
		return nil, &AIAnalysisError{Err: err}
	}
	if envelope.AIAnalysis == nil {
		return nil, &AIAnalysisError{Err: &Error{Status: http.StatusBadGateway, Message: "response did not include an analysis"}}
	}
	return envelope.AIAnalysis, nil
}

func statusQuery(status string) url.Values {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil
	}
	return url.Values{"status": []string{status}}
}
