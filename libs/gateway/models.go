package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const (
	StatusPending    = "Pending"
	StatusApproved   = "Approved"
	StatusRejected   = "Rejected"
	StatusProcessing = "Processing"
	StatusResolved   = "Resolved"
	StatusConfirmed  = "Confirmed"
	StatusCancelled  = "Cancelled"
	StatusCompleted  = "Completed"

	RoleAdmin = "Admin"
)

var (
	WaterLevels        = []string{"Low", "Medium", "High", "Dangerous"}
	FeedbackCategories = []string{"Infrastructure", "Traffic", "Environment", "Security", "Other"}
)

// IsWaterLevel reports whether level is one of WaterLevels.
func IsWaterLevel(level string) bool {
	for _, candidate := range WaterLevels {
		if candidate == level {
			return true
		}
	}
	return false
}

type FloodReport struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageURL    string   `json:"imageUrl"`
	Status      string   `json:"status"`
	WaterLevel  string   `json:"waterLevel,omitempty"`
	AdminNote   string   `json:"adminNote"`
	UserID      *int     `json:"userId,omitempty"`
	UserName    string   `json:"userName,omitempty"`
	UserEmail   string   `json:"userEmail,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// FloodReportEdit is the full editable record sent on update.
type FloodReportEdit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	WaterLevel  string `json:"waterLevel"`
	AdminNote   string `json:"adminNote"`
}

// FloodAnalysis is the AI classification of a flood report photo.
type FloodAnalysis struct {
	WaterLevel      string `json:"waterLevel"`
	EstimatedDepth  string `json:"estimatedDepth"`
	Confidence      string `json:"confidence"`
	Analysis        string `json:"analysis"`
	Recommendations string `json:"recommendations"`
}

type Feedback struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Status        string `json:"status"`
	AdminResponse string `json:"adminResponse"`
	UserID        *int   `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	UserEmail     string `json:"userEmail,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

type FeedbackEdit struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	AdminResponse string `json:"adminResponse"`
}

type EventBanner struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	CreatedAt   string `json:"createdAt"`
}

type EventBannerInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type Tour struct {
	ID               int        `json:"id"`
	NameTour         string     `json:"nameTour"`
	Content          string     `json:"content"`
	Price            int64      `json:"price"`
	TourType         string     `json:"tourType"`
	Duration         string     `json:"duration"`
	MaxPeople        int        `json:"maxPeople"`
	Timeline         string     `json:"timeline"`
	CoverImageURL    string     `json:"coverImageUrl"`
	GalleryImageURLs StringList `json:"galleryImageUrls,omitempty"`
	CreatedAt        string     `json:"createdAt,omitempty"`
}

// TourInput is the multipart payload for creating or updating a tour.
// CoverImage is optional on update.
type TourInput struct {
	NameTour         string
	Content          string
	Price            int64
	TourType         string
	Duration         string
	MaxPeople        int
	Timeline         string
	GalleryImageURLs string
	CoverImage       *Upload
}

type BookingTour struct {
	NameTour      string `json:"nameTour"`
	TourType      string `json:"tourType"`
	Duration      string `json:"duration"`
	CoverImageURL string `json:"coverImageUrl"`
}

type BookingUser struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *BookingUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

type Booking struct {
	BookingID      int          `json:"bookingId"`
	TourID         int          `json:"tourId,omitempty"`
	Tour           *BookingTour `json:"tour,omitempty"`
	User           *BookingUser `json:"user,omitempty"`
	TravelDate     string       `json:"travelDate"`
	NumberOfPeople int          `json:"numberOfPeople"`
	TotalPrice     float64      `json:"totalPrice"`
	Status         string       `json:"status"`
	BookingDate    string       `json:"bookingDate"`
}

type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// UnmarshalJSON accepts the legacy snake_case created_at as well.
func (u *User) UnmarshalJSON(raw []byte) error {
	type plain User
	var decoded struct {
		plain
		LegacyCreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*u = User(decoded.plain)
	if u.CreatedAt == "" {
		u.CreatedAt = decoded.LegacyCreatedAt
	}
	return nil
}

// AdminUser is the profile returned by the login endpoint.
type AdminUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type LoginResult struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

// StringList decodes either a JSON array of strings or a comma separated
// string, which the tour endpoints use interchangeably.
type StringList []string

func (s *StringList) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	if trimmed[0] == '[' {
		var values []string
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}
	var joined string
	if err := json.Unmarshal(trimmed, &joined); err != nil {
		return err
	}
	*s = splitList(joined)
	return nil
}

// String joins the list back into the comma separated wire form.
func (s StringList) String() string {
	return strings.Join(s, ",")
}

func splitList(joined string) []string {
	parts := strings.Split(joined, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the backend emits. Values
// without a zone are read as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
