package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// MinBannerTitleLength is the shortest accepted banner title.
const MinBannerTitleLength = 5

// ValidateEventBanner applies the banner form rules.
func ValidateEventBanner(in EventBannerInput) error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return validationError("title", "title is required")
	case len([]rune(title)) < MinBannerTitleLength:
		return validationError("title", fmt.Sprintf("title must be at least %d characters", MinBannerTitleLength))
	case strings.TrimSpace(in.ImageURL) == "":
		return validationError("imageUrl", "a banner image is required")
	}
	return nil
}

func (c *Client) ListEventBanners(ctx context.Context) ([]EventBanner, error) {
	return getList[EventBanner](ctx, c, "/EventBanners", nil)
}

func (c *Client) GetEventBanner(ctx context.Context, id int) (*EventBanner, error) {
	return getOne[EventBanner](ctx, c, fmt.Sprintf("/EventBanners/%d", id))
}

func (c *Client) CreateEventBanner(ctx context.Context, in EventBannerInput) error {
	if err := ValidateEventBanner(in); err != nil {
		return err
	}
	_, err := c.sendJSON(ctx, http.MethodPost, "/EventBanners", nil, in)
	return err
}

func (c *Client) UpdateEventBanner(ctx context.Context, id int, in EventBannerInput) error {
	if err := ValidateEventBanner(in); err != nil {
		return err
	}
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/EventBanners/%d", id), nil, in)
	return err
}

func (c *Client) DeleteEventBanner(ctx context.Context, id int) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/EventBanners/%d", id), nil, nil)
	return err
}

// DeleteEventBanners removes several banners in one call.
func (c *Client) DeleteEventBanners(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return validationError("ids", "select at least one banner to delete")
	}
	body := struct {
		IDs []int `json:"ids"`
	}{IDs: ids}
	_, err := c.sendJSON(ctx, http.MethodPost, "/EventBanners/delete-multiple", nil, body)
	return err
}

// UploadEventBannerImage stores a banner image on the backend and returns
// the URL it was stored under, exactly as the backend reported it.
func (c *Client) UploadEventBannerImage(ctx context.Context, upload *Upload) (string, error) {
	if err := ValidateImageUpload(upload); err != nil {
		return "", err
	}
	raw, err := c.sendMultipart(ctx, http.MethodPost, "/Upload/event-banner", nil, []formFile{{name: "file", upload: upload}})
	if err != nil {
		return "", err
	}

	var result struct {
		Success *bool  `json:"success"`
		URL     string `json:"url"`
		Message string `json:"message"`
	}
	if err := decodeRaw(raw, &result); err != nil {
		return "", err
	}
	if result.URL == "" {
		if inner := Unwrap(raw); len(inner) > 0 && inner[0] == '{' {
			_ = json.Unmarshal(inner, &result)
		}
	}
	if result.Success != nil && !*result.Success {
		message := strings.TrimSpace(result.Message)
		if message == "" {
			message = "image upload was rejected"
		}
		return "", &Error{Status: http.StatusBadGateway, Message: message}
	}
	if strings.TrimSpace(result.URL) == "" {
		return "", &Error{Status: http.StatusBadGateway, Message: "upload response did not include a url"}
	}
	return strings.TrimSpace(result.URL), nil
}
