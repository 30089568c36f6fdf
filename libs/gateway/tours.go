package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ValidateTour applies the tour form rules. The cover image is only
// mandatory when creating.
func ValidateTour(in TourInput, creating bool) error {
	switch {
	case strings.TrimSpace(in.NameTour) == "":
		return validationError("nameTour", "tour name is required")
	case in.Price == 0:
		return validationError("price", "price is required")
	case in.Price < 0:
		return validationError("price", "price cannot be negative")
	case strings.TrimSpace(in.Duration) == "":
		return validationError("duration", "duration is required")
	case in.MaxPeople < 0:
		return validationError("maxPeople", "max people cannot be negative")
	case creating && in.CoverImage == nil:
		return validationError("coverImage", "a cover image is required for a new tour")
	}
	if in.CoverImage != nil {
		if err := ValidateImageUpload(in.CoverImage); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) ListTours(ctx context.Context) ([]Tour, error) {
	return getList[Tour](ctx, c, "/TravelTour", nil)
}

func (c *Client) GetTour(ctx context.Context, id int) (*Tour, error) {
	return getOne[Tour](ctx, c, fmt.Sprintf("/TravelTour/%d", id))
}

// CreateTour sends the tour and its cover image in one multipart request.
func (c *Client) CreateTour(ctx context.Context, in TourInput) error {
	if err := ValidateTour(in, true); err != nil {
		return err
	}
	fields, files := tourForm(in)
	_, err := c.sendMultipart(ctx, http.MethodPost, "/TravelTour", fields, files)
	return err
}

// UpdateTour overwrites a tour. Without a new cover image the backend keeps
// the current one.
func (c *Client) UpdateTour(ctx context.Context, id int, in TourInput) error {
	if err := ValidateTour(in, false); err != nil {
		return err
	}
	fields, files := tourForm(in)
	_, err := c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/TravelTour/%d", id), fields, files)
	return err
}

func (c *Client) DeleteTour(ctx context.Context, id int) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/TravelTour/%d", id), nil, nil)
	return err
}

func tourForm(in TourInput) ([]formField, []formFile) {
	fields := []formField{
		{name: "NameTour", value: strings.TrimSpace(in.NameTour)},
		{name: "Content", value: in.Content},
		{name: "Price", value: strconv.FormatInt(in.Price, 10)},
		{name: "TourType", value: strings.TrimSpace(in.TourType)},
		{name: "Duration", value: strings.TrimSpace(in.Duration)},
		{name: "MaxPeople", value: strconv.Itoa(in.MaxPeople)},
		{name: "Timeline", value: in.Timeline},
		{name: "GalleryImageUrls", value: in.GalleryImageURLs},
	}
	var files []formFile
	if in.CoverImage != nil {
		files = append(files, formFile{name: "coverImage", upload: in.CoverImage})
	}
	return fields, files
}
