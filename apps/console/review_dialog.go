package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"citydesk/libs/gateway"
)

type ReviewKind string

const (
	ReviewFloodReport ReviewKind = entityFloodReport
	ReviewFeedback    ReviewKind = entityFeedback
)

type reviewState int

const (
	reviewClosed reviewState = iota
	reviewOpen
	reviewSubmitting
)

var (
	errDialogNotOpen   = errors.New("review dialog is not open")
	errDialogBusy      = errors.New("review is already being submitted")
	errNotTerminal     = errors.New("only reviewed items can be edited or deleted")
	errReviewViewOnly  = errors.New("this item has already been reviewed")
	errAINotApplicable = errors.New("AI analysis is only available for flood reports")
)

// reviewBackend is the slice of the gateway the dialog drives.
type reviewBackend interface {
	ReviewFloodReport(ctx context.Context, id int, status, waterLevel, note string) error
	UpdateFloodReport(ctx context.Context, id int, edit gateway.FloodReportEdit) error
	DeleteFloodReport(ctx context.Context, id int) error
	AnalyzeFloodImage(ctx context.Context, id int) (*gateway.FloodAnalysis, error)
	RespondFeedback(ctx context.Context, id int, status, response string) error
	UpdateFeedback(ctx context.Context, id int, edit gateway.FeedbackEdit) error
	DeleteFeedback(ctx context.Context, id int) error
}

// reviewTarget is the item under review, flattened across kinds.
type reviewTarget struct {
	Kind          ReviewKind
	ID            int
	Status        string
	Title         string
	Description   string
	Address       string
	Category      string
	ImageURL      string
	WaterLevel    string
	AdminNote     string
	AdminResponse string
	CreatedAt     string
	Submitter     string
}

func floodReviewTarget(report gateway.FloodReport) reviewTarget {
	return reviewTarget{
		Kind:        ReviewFloodReport,
		ID:          report.ID,
		Status:      report.Status,
		Title:       report.Title,
		Description: report.Description,
		Address:     report.Address,
		ImageURL:    report.ImageURL,
		WaterLevel:  report.WaterLevel,
		AdminNote:   report.AdminNote,
		CreatedAt:   report.CreatedAt,
		Submitter:   firstNonEmpty(report.UserName, report.UserEmail),
	}
}

func feedbackReviewTarget(feedback gateway.Feedback) reviewTarget {
	return reviewTarget{
		Kind:          ReviewFeedback,
		ID:            feedback.ID,
		Status:        feedback.Status,
		Title:         feedback.Title,
		Description:   feedback.Description,
		Category:      feedback.Category,
		ImageURL:      feedback.ImageURL,
		AdminResponse: feedback.AdminResponse,
		CreatedAt:     feedback.CreatedAt,
		Submitter:     firstNonEmpty(feedback.UserName, feedback.UserEmail),
	}
}

type ReviewDraft struct {
	WaterLevel    string
	AdminNote     string
	AdminResponse string
}

// EditDraft is the full editable record used in edit mode.
type EditDraft struct {
	Title         string
	Description   string
	Address       string
	Category      string
	WaterLevel    string
	AdminNote     string
	AdminResponse string
}

// ReviewDialog drives one review of one item:
// Closed -> OpenForReview -> Submitting -> Closed on success, or back to
// OpenForReview with LastError and the draft kept on failure.
type ReviewDialog struct {
	backend reviewBackend

	mu          sync.Mutex
	state       reviewState
	target      reviewTarget
	proposed    string
	draft       ReviewDraft
	editing     bool
	edit        EditDraft
	fieldErrors map[string]string
	lastError   string
	aiError     string
	aiApplied   bool
}

// OpenReview opens a dialog for moving target to proposed. A reviewed item
// may be opened with its own status, which is the view mode offering edit and
// delete.
func OpenReview(backend reviewBackend, target reviewTarget, proposed string) (*ReviewDialog, error) {
	entity := string(target.Kind)
	viewMode := proposed == target.Status && isTerminalStatus(entity, target.Status)
	if !viewMode && !transitionAllowed(entity, target.Status, proposed) {
		return nil, &gateway.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot move %s #%d from %s to %s", target.Kind, target.ID, target.Status, proposed),
		}
	}

	dialog := &ReviewDialog{
		backend:     backend,
		state:       reviewOpen,
		target:      target,
		proposed:    proposed,
		fieldErrors: map[string]string{},
		draft: ReviewDraft{
			WaterLevel:    target.WaterLevel,
			AdminNote:     target.AdminNote,
			AdminResponse: target.AdminResponse,
		},
	}
	return dialog, nil
}

func reviewKey(kind ReviewKind, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func (d *ReviewDialog) Key() string {
	return reviewKey(d.target.Kind, d.target.ID)
}

func (d *ReviewDialog) Kind() ReviewKind {
	return d.target.Kind
}

func (d *ReviewDialog) Target() reviewTarget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

func (d *ReviewDialog) Proposed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.proposed
}

func (d *ReviewDialog) State() reviewState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *ReviewDialog) Draft() ReviewDraft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

func (d *ReviewDialog) Editing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editing
}

func (d *ReviewDialog) EditDraft() EditDraft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.edit
}

func (d *ReviewDialog) FieldErrors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := make(map[string]string, len(d.fieldErrors))
	for key, value := range d.fieldErrors {
		copied[key] = value
	}
	return copied
}

func (d *ReviewDialog) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastError
}

func (d *ReviewDialog) AIError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.aiError
}

func (d *ReviewDialog) AIApplied() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.aiApplied
}

// ViewOnly reports whether the dialog was opened on an already reviewed item.
func (d *ReviewDialog) ViewOnly() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewOnlyLocked()
}

func (d *ReviewDialog) viewOnlyLocked() bool {
	return d.proposed == d.target.Status && isTerminalStatus(string(d.target.Kind), d.target.Status)
}

// CanSubmitReview is false for reviewed flood reports; a reviewed feedback
// may be answered again.
func (d *ReviewDialog) CanSubmitReview() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.viewOnlyLocked() || d.target.Kind == ReviewFeedback
}

func (d *ReviewDialog) CanEdit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return isTerminalStatus(string(d.target.Kind), d.target.Status)
}

func (d *ReviewDialog) CanAnalyze() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target.Kind == ReviewFloodReport &&
		d.target.Status == gateway.StatusPending &&
		strings.TrimSpace(d.target.ImageURL) != ""
}

func (d *ReviewDialog) SetDraft(draft ReviewDraft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draft = draft
}

func (d *ReviewDialog) SetEditDraft(edit EditDraft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.edit = edit
}

// BeginEdit switches to the full editable record. Only reviewed items can be
// edited.
func (d *ReviewDialog) BeginEdit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != reviewOpen {
		return errDialogNotOpen
	}
	if !isTerminalStatus(string(d.target.Kind), d.target.Status) {
		return errNotTerminal
	}
	waterLevel := d.target.WaterLevel
	if waterLevel == "" {
		waterLevel = gateway.WaterLevels[0]
	}
	d.editing = true
	d.fieldErrors = map[string]string{}
	d.lastError = ""
	d.edit = EditDraft{
		Title:         d.target.Title,
		Description:   d.target.Description,
		Address:       d.target.Address,
		Category:      d.target.Category,
		WaterLevel:    waterLevel,
		AdminNote:     d.target.AdminNote,
		AdminResponse: d.target.AdminResponse,
	}
	return nil
}

func (d *ReviewDialog) CancelEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editing = false
	d.edit = EditDraft{}
	d.fieldErrors = map[string]string{}
}

// Validate checks the draft for the pending submission and records field
// errors. It never touches the network.
func (d *ReviewDialog) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validateLocked()
}

func (d *ReviewDialog) validateLocked() error {
	d.fieldErrors = map[string]string{}
	var first *gateway.ValidationError
	fail := func(field, message string) {
		d.fieldErrors[field] = message
		if first == nil {
			first = &gateway.ValidationError{Field: field, Message: message}
		}
	}

	if d.editing {
		if strings.TrimSpace(d.edit.Title) == "" {
			fail("title", "title is required")
		}
		if d.target.Kind == ReviewFloodReport && !gateway.IsWaterLevel(d.edit.WaterLevel) {
			fail("waterLevel", "choose a water level")
		}
		if d.target.Kind == ReviewFeedback && d.edit.Category != "" && !containsString(gateway.FeedbackCategories, d.edit.Category) {
			fail("category", "unknown category")
		}
	} else {
		switch d.target.Kind {
		case ReviewFloodReport:
			if d.viewOnlyLocked() {
				fail("status", errReviewViewOnly.Error())
			} else if d.proposed == gateway.StatusApproved && !gateway.IsWaterLevel(d.draft.WaterLevel) {
				fail("waterLevel", "choose a water level before approving")
			}
		case ReviewFeedback:
			if strings.TrimSpace(d.draft.AdminResponse) == "" {
				fail("adminResponse", "a response is required")
			}
		}
	}

	if first != nil {
		return first
	}
	return nil
}

// Submit validates, then sends the review or the edit. It reports whether the
// list should be refetched.
func (d *ReviewDialog) Submit(ctx context.Context) (bool, error) {
	d.mu.Lock()
	if d.state == reviewSubmitting {
		d.mu.Unlock()
		return false, errDialogBusy
	}
	if d.state != reviewOpen {
		d.mu.Unlock()
		return false, errDialogNotOpen
	}
	if err := d.validateLocked(); err != nil {
		d.mu.Unlock()
		return false, err
	}
	d.state = reviewSubmitting
	d.lastError = ""
	target, proposed, draft, editing, edit := d.target, d.proposed, d.draft, d.editing, d.edit
	d.mu.Unlock()

	err := d.send(ctx, target, proposed, draft, editing, edit)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = reviewOpen
		d.lastError = gateway.Message(err)
		return false, err
	}
	d.state = reviewClosed
	return true, nil
}

func (d *ReviewDialog) send(ctx context.Context, target reviewTarget, proposed string, draft ReviewDraft, editing bool, edit EditDraft) error {
	switch target.Kind {
	case ReviewFloodReport:
		if editing {
			return d.backend.UpdateFloodReport(ctx, target.ID, gateway.FloodReportEdit{
				Title:       strings.TrimSpace(edit.Title),
				Description: edit.Description,
				Address:     edit.Address,
				WaterLevel:  edit.WaterLevel,
				AdminNote:   edit.AdminNote,
			})
		}
		return d.backend.ReviewFloodReport(ctx, target.ID, proposed, draft.WaterLevel, draft.AdminNote)
	case ReviewFeedback:
		if editing {
			return d.backend.UpdateFeedback(ctx, target.ID, gateway.FeedbackEdit{
				Title:         strings.TrimSpace(edit.Title),
				Description:   edit.Description,
				Category:      edit.Category,
				AdminResponse: edit.AdminResponse,
			})
		}
		return d.backend.RespondFeedback(ctx, target.ID, proposed, strings.TrimSpace(draft.AdminResponse))
	}
	return fmt.Errorf("unsupported review kind %q", target.Kind)
}

// Delete removes a reviewed item and closes the dialog.
func (d *ReviewDialog) Delete(ctx context.Context) error {
	d.mu.Lock()
	if d.state != reviewOpen {
		d.mu.Unlock()
		return errDialogNotOpen
	}
	if !isTerminalStatus(string(d.target.Kind), d.target.Status) {
		d.mu.Unlock()
		return errNotTerminal
	}
	d.state = reviewSubmitting
	target := d.target
	d.mu.Unlock()

	var err error
	switch target.Kind {
	case ReviewFloodReport:
		err = d.backend.DeleteFloodReport(ctx, target.ID)
	case ReviewFeedback:
		err = d.backend.DeleteFeedback(ctx, target.ID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = reviewOpen
		d.lastError = gateway.Message(err)
		return err
	}
	d.state = reviewClosed
	return nil
}

// ApplyAIAnalysis asks the AI collaborator to classify the report photo and
// pre-fills the water level and note. It never submits; on failure the draft
// is left as it was.
func (d *ReviewDialog) ApplyAIAnalysis(ctx context.Context, lang string) error {
	d.mu.Lock()
	if d.target.Kind != ReviewFloodReport {
		d.mu.Unlock()
		return errAINotApplicable
	}
	if d.state != reviewOpen {
		d.mu.Unlock()
		return errDialogNotOpen
	}
	if strings.TrimSpace(d.target.ImageURL) == "" {
		d.mu.Unlock()
		return &gateway.ValidationError{Field: "imageUrl", Message: "report has no image to analyze"}
	}
	d.aiError = ""
	id := d.target.ID
	d.mu.Unlock()

	analysis, err := d.backend.AnalyzeFloodImage(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.aiError = gateway.Message(err)
		return err
	}
	if gateway.IsWaterLevel(analysis.WaterLevel) {
		d.draft.WaterLevel = analysis.WaterLevel
	}
	d.draft.AdminNote = formatAIReviewNote(lang, *analysis)
	d.aiApplied = true
	return nil
}

// ConfirmPrompt names the item and both statuses for the confirm step.
func (d *ReviewDialog) ConfirmPrompt(lang string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	kind := adminText(lang, "kind_"+string(d.target.Kind))
	if d.editing {
		return fmt.Sprintf(adminText(lang, "confirm_edit"), kind, d.target.ID)
	}
	return fmt.Sprintf(
		adminText(lang, "confirm_review"),
		kind,
		d.target.ID,
		adminStatusLabel(lang, d.target.Status),
		adminStatusLabel(lang, d.proposed),
	)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
