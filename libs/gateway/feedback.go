package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

func (c *Client) ListFeedback(ctx context.Context, status string) ([]Feedback, error) {
	return getList[Feedback](ctx, c, "/feedback/admin/all", statusQuery(status))
}

// RespondFeedback records the admin response and moves the feedback to
// status. A blank response is rejected locally.
func (c *Client) RespondFeedback(ctx context.Context, id int, status, response string) error {
	if strings.TrimSpace(response) == "" {
		return validationError("adminResponse", "a response is required for every feedback decision")
	}
	body := map[string]string{"status": status, "response": response}
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/feedback/admin/%d/respond", id), nil, body)
	return err
}

func (c *Client) UpdateFeedback(ctx context.Context, id int, edit FeedbackEdit) error {
	if strings.TrimSpace(edit.Title) == "" {
		return validationError("title", "title is required")
	}
	_, err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/feedback/admin/%d", id), nil, edit)
	return err
}

func (c *Client) DeleteFeedback(ctx context.Context, id int) error {
	_, err := c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/feedback/admin/%d", id), nil, nil)
	return err
}
