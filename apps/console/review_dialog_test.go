package main

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"citydesk/libs/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReviewBackend counts calls and fails with err when set.
type recordingReviewBackend struct {
	err      error
	analysis *gateway.FloodAnalysis
	calls    []string

	lastStatus     string
	lastWaterLevel string
	lastNote       string
	lastFeedback   gateway.FeedbackEdit
}

func (b *recordingReviewBackend) ReviewFloodReport(ctx context.Context, id int, status, waterLevel, note string) error {
	b.calls = append(b.calls, "review_flood")
	b.lastStatus, b.lastWaterLevel, b.lastNote = status, waterLevel, note
	return b.err
}

func (b *recordingReviewBackend) UpdateFloodReport(ctx context.Context, id int, edit gateway.FloodReportEdit) error {
	b.calls = append(b.calls, "update_flood")
	b.lastWaterLevel = edit.WaterLevel
	return b.err
}

func (b *recordingReviewBackend) DeleteFloodReport(ctx context.Context, id int) error {
	b.calls = append(b.calls, "delete_flood")
	return b.err
}

func (b *recordingReviewBackend) AnalyzeFloodImage(ctx context.Context, id int) (*gateway.FloodAnalysis, error) {
	b.calls = append(b.calls, "analyze")
	if b.err != nil {
		return nil, &gateway.AIAnalysisError{Err: b.err}
	}
	return b.analysis, nil
}

func (b *recordingReviewBackend) RespondFeedback(ctx context.Context, id int, status, response string) error {
	b.calls = append(b.calls, "respond_feedback")
	b.lastStatus, b.lastNote = status, response
	return b.err
}

func (b *recordingReviewBackend) UpdateFeedback(ctx context.Context, id int, edit gateway.FeedbackEdit) error {
	b.calls = append(b.calls, "update_feedback")
	b.lastFeedback = edit
	return b.err
}

func (b *recordingReviewBackend) DeleteFeedback(ctx context.Context, id int) error {
	b.calls = append(b.calls, "delete_feedback")
	return b.err
}

func pendingFloodTarget() reviewTarget {
	return reviewTarget{Kind: ReviewFloodReport, ID: 7, Status: gateway.StatusPending, Title: "Ngập", ImageURL: "http://localhost:5000/uploads/7.jpg"}
}

func TestOpenReviewRejectsIllegalTransition(t *testing.T) {
	backend := &recordingReviewBackend{}
	_, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusResolved)
	require.Error(t, err)

	approved := pendingFloodTarget()
	approved.Status = gateway.StatusApproved
	_, err = OpenReview(backend, approved, gateway.StatusRejected)
	require.Error(t, err)

	dialog, err := OpenReview(backend, approved, gateway.StatusApproved)
	require.NoError(t, err, "a reviewed item opens in view mode")
	assert.True(t, dialog.ViewOnly())
	assert.False(t, dialog.CanSubmitReview())
	assert.True(t, dialog.CanEdit())
	assert.Empty(t, backend.calls)
}

func TestReviewDialogApproveNeedsWaterLevel(t *testing.T) {
	backend := &recordingReviewBackend{}
	dialog, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)

	dialog.SetDraft(ReviewDraft{AdminNote: "ghi chú"})
	refetch, err := dialog.Submit(context.Background())
	require.Error(t, err)
	assert.False(t, refetch)
	assert.Contains(t, dialog.FieldErrors(), "waterLevel")
	assert.Empty(t, backend.calls, "validation failures never reach the backend")
	assert.Equal(t, reviewOpen, dialog.State())

	dialog.SetDraft(ReviewDraft{WaterLevel: "Dangerous", AdminNote: "ghi chú"})
	refetch, err = dialog.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, refetch)
	assert.Equal(t, []string{"review_flood"}, backend.calls)
	assert.Equal(t, "Dangerous", backend.lastWaterLevel)
	assert.Equal(t, reviewClosed, dialog.State())

	_, err = dialog.Submit(context.Background())
	assert.ErrorIs(t, err, errDialogNotOpen)
}

func TestReviewDialogRejectDoesNotNeedWaterLevel(t *testing.T) {
	backend := &recordingReviewBackend{}
	dialog, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusRejected)
	require.NoError(t, err)

	_, err = dialog.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusRejected, backend.lastStatus)
}

func TestReviewDialogFailureKeepsDraft(t *testing.T) {
	backend := &recordingReviewBackend{err: &gateway.Error{Status: 500, Message: "database unavailable"}}
	dialog, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)

	draft := ReviewDraft{WaterLevel: "Low", AdminNote: "giữ lại"}
	dialog.SetDraft(draft)
	_, err = dialog.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, reviewOpen, dialog.State())
	assert.Equal(t, "database unavailable", dialog.LastError())
	assert.Equal(t, draft, dialog.Draft())
}

func TestReviewDialogFeedbackNeedsResponse(t *testing.T) {
	backend := &recordingReviewBackend{}
	target := reviewTarget{Kind: ReviewFeedback, ID: 3, Status: gateway.StatusPending, Title: "Đèn đường"}
	dialog, err := OpenReview(backend, target, gateway.StatusProcessing)
	require.NoError(t, err)

	dialog.SetDraft(ReviewDraft{AdminResponse: "   "})
	require.Error(t, dialog.Validate())
	assert.Contains(t, dialog.FieldErrors(), "adminResponse")

	dialog.SetDraft(ReviewDraft{AdminResponse: "  Đã tiếp nhận  "})
	_, err = dialog.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Đã tiếp nhận", backend.lastNote)
	assert.Equal(t, gateway.StatusProcessing, backend.lastStatus)
}

func TestReviewDialogEditMode(t *testing.T) {
	backend := &recordingReviewBackend{}
	pending := reviewTarget{Kind: ReviewFeedback, ID: 3, Status: gateway.StatusPending, Title: "Đèn đường"}
	dialog, err := OpenReview(backend, pending, gateway.StatusProcessing)
	require.NoError(t, err)
	assert.ErrorIs(t, dialog.BeginEdit(), errNotTerminal)

	resolved := pending
	resolved.Status = gateway.StatusResolved
	resolved.Category = "Infrastructure"
	dialog, err = OpenReview(backend, resolved, gateway.StatusResolved)
	require.NoError(t, err)
	require.NoError(t, dialog.BeginEdit())
	assert.Equal(t, "Đèn đường", dialog.EditDraft().Title)

	dialog.SetEditDraft(EditDraft{Title: "", Category: "Weather"})
	require.Error(t, dialog.Validate())
	errs := dialog.FieldErrors()
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "category")

	dialog.SetEditDraft(EditDraft{Title: "Đèn đường quận 3", Category: "Infrastructure", AdminResponse: "đã sửa"})
	_, err = dialog.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"update_feedback"}, backend.calls)
	assert.Equal(t, "Đèn đường quận 3", backend.lastFeedback.Title)
}

func TestReviewDialogDeleteOnlyReviewed(t *testing.T) {
	backend := &recordingReviewBackend{}
	dialog, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)
	assert.ErrorIs(t, dialog.Delete(context.Background()), errNotTerminal)
	assert.Empty(t, backend.calls)

	rejected := pendingFloodTarget()
	rejected.Status = gateway.StatusRejected
	dialog, err = OpenReview(backend, rejected, gateway.StatusRejected)
	require.NoError(t, err)
	require.NoError(t, dialog.Delete(context.Background()))
	assert.Equal(t, []string{"delete_flood"}, backend.calls)
	assert.Equal(t, reviewClosed, dialog.State())
}

func TestReviewDialogApplyAIAnalysis(t *testing.T) {
	backend := &recordingReviewBackend{analysis: &gateway.FloodAnalysis{
		WaterLevel:      "High",
		EstimatedDepth:  "40-60cm",
		Confidence:      "85%",
		Analysis:        "Nước ngập quá bánh xe máy.",
		Recommendations: "Cấm xe máy lưu thông.",
	}}
	dialog, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)
	assert.True(t, dialog.CanAnalyze())

	require.NoError(t, dialog.ApplyAIAnalysis(context.Background(), "en"))
	draft := dialog.Draft()
	assert.Equal(t, "High", draft.WaterLevel)
	assert.Contains(t, draft.AdminNote, "40-60cm")
	assert.Contains(t, draft.AdminNote, "Cấm xe máy lưu thông.")
	assert.True(t, dialog.AIApplied())
	assert.Equal(t, reviewOpen, dialog.State(), "analysis never submits")
	assert.Equal(t, []string{"analyze"}, backend.calls)
}

func TestReviewDialogAIFailureLeavesDraft(t *testing.T) {
	backend := &recordingReviewBackend{err: &gateway.Error{Status: 504, Message: "model timed out"}}
	dialog, err := OpenReview(backend, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)
	dialog.SetDraft(ReviewDraft{WaterLevel: "Low", AdminNote: "tự nhập"})

	require.Error(t, dialog.ApplyAIAnalysis(context.Background(), "vi"))
	assert.Equal(t, "model timed out", dialog.AIError())
	assert.Equal(t, ReviewDraft{WaterLevel: "Low", AdminNote: "tự nhập"}, dialog.Draft())
	assert.False(t, dialog.AIApplied())
}

func TestReviewDialogAIRequiresImage(t *testing.T) {
	backend := &recordingReviewBackend{}
	target := pendingFloodTarget()
	target.ImageURL = ""
	dialog, err := OpenReview(backend, target, gateway.StatusApproved)
	require.NoError(t, err)
	assert.False(t, dialog.CanAnalyze())
	require.Error(t, dialog.ApplyAIAnalysis(context.Background(), "vi"))
	assert.Empty(t, backend.calls)
}

func TestTruncateAIReviewNote(t *testing.T) {
	short := "ngắn"
	assert.Equal(t, short, truncateAIReviewNote("vi", short))

	long := strings.Repeat("ư", aiNoteMaxRunes+10)
	truncated := truncateAIReviewNote("en", long)
	assert.True(t, utf8.ValidString(truncated))
	assert.LessOrEqual(t, utf8.RuneCountInString(truncated), aiNoteMaxRunes)
	assert.True(t, strings.HasSuffix(truncated, adminText("en", "ai_note_truncated")))
	assert.True(t, strings.HasPrefix(truncated, strings.Repeat("ư", aiNoteKeepRunes)))

	exact := strings.Repeat("a", aiNoteMaxRunes)
	assert.Equal(t, exact, truncateAIReviewNote("en", exact))
}

func TestConfirmPromptNamesBothStatuses(t *testing.T) {
	dialog, err := OpenReview(&recordingReviewBackend{}, pendingFloodTarget(), gateway.StatusApproved)
	require.NoError(t, err)
	prompt := dialog.ConfirmPrompt("en")
	assert.Contains(t, prompt, "#7")
	assert.Contains(t, prompt, adminStatusLabel("en", gateway.StatusPending))
	assert.Contains(t, prompt, adminStatusLabel("en", gateway.StatusApproved))
}
