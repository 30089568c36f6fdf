package gateway

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	return getList[Booking](ctx, c, "/Booking/all-admin", nil)
}

// UpdateBookingStatus patches the booking status only.
func (c *Client) UpdateBookingStatus(ctx context.Context, id int, status string) error {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
	default:
		return validationError("status", fmt.Sprintf("unknown booking status %q", status))
	}
	body := map[string]string{"status": status}
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/Booking/%d", id), nil, body)
	return err
}

// CancelBooking goes through the dedicated cancel endpoint rather than a
// status patch.
func (c *Client) CancelBooking(ctx context.Context, id int) error {
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/Booking/%d/cancel", id), nil, nil)
	return err
}
