package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
)

// reviewCollection is a list controller seen through reviewTarget, so flood
// reports and feedback share one set of handlers.
type reviewCollection interface {
	Load(ctx context.Context, filter string) error
	Ensure(ctx context.Context, filter string, maxAge time.Duration, force bool) error
	Mutate(ctx context.Context, mutation func(ctx context.Context) error) error
	Filter() string
	Targets(query ListQuery) ListView[reviewTarget]
	Target(id int) (reviewTarget, bool)
}

type reviewList[T any] struct {
	*ListController[T]
	target func(T) reviewTarget
}

func (l reviewList[T]) Targets(query ListQuery) ListView[reviewTarget] {
	view := l.View(query)
	items := make([]reviewTarget, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, l.target(item))
	}
	return ListView[reviewTarget]{
		Items:    items,
		Total:    view.Total,
		Page:     view.Page,
		PageSize: view.PageSize,
		SortKey:  view.SortKey,
		SortDesc: view.SortDesc,
		State:    view.State,
		Error:    view.Error,
	}
}

func (l reviewList[T]) Target(id int) (reviewTarget, bool) {
	item, ok := l.Find(id)
	if !ok {
		return reviewTarget{}, false
	}
	return l.target(item), true
}

type reviewResource struct {
	kind       ReviewKind
	basePath   string
	titleKey   string
	nav        string
	statuses   []string
	sortKeys   []string
	collection func(ws *workspace) reviewCollection
}

var floodReviewResource = reviewResource{
	kind:     ReviewFloodReport,
	basePath: "/admin/flood-reports",
	titleKey: "page_title_flood_reports",
	nav:      "flood_reports",
	statuses: floodReportStatuses,
	sortKeys: []string{"createdAt", "title", "status"},
	collection: func(ws *workspace) reviewCollection {
		return reviewList[gateway.FloodReport]{ListController: ws.floodReports, target: floodReviewTarget}
	},
}

var feedbackReviewResource = reviewResource{
	kind:     ReviewFeedback,
	basePath: "/admin/feedback",
	titleKey: "page_title_feedback",
	nav:      "feedback",
	statuses: feedbackStatuses,
	sortKeys: []string{"createdAt", "title", "category", "status"},
	collection: func(ws *workspace) reviewCollection {
		return reviewList[gateway.Feedback]{ListController: ws.feedback, target: feedbackReviewTarget}
	},
}

func (r reviewResource) itemURL(id int) string {
	return fmt.Sprintf("%s/%d", r.basePath, id)
}

func (r reviewResource) reviewURL(id int, status string) string {
	target := fmt.Sprintf("%s/%d/review", r.basePath, id)
	if status != "" {
		target += "?status=" + url.QueryEscape(status)
	}
	return target
}

func (a *App) registerReviewRoutes(group *gin.RouterGroup, res reviewResource) {
	group.GET("", a.reviewListHandler(res))
	group.GET("/:id", a.reviewDetailHandler(res))
	group.GET("/:id/review", a.reviewOpenHandler(res))
	group.POST("/:id/review", a.reviewSaveHandler(res))
	group.POST("/:id/review/confirm", a.reviewConfirmHandler(res))
	group.POST("/:id/review/cancel", a.reviewCloseHandler(res))
	group.POST("/:id/review/edit", a.reviewBeginEditHandler(res))
	group.POST("/:id/review/edit/cancel", a.reviewCancelEditHandler(res))
	group.GET("/:id/review/delete", a.reviewDeletePageHandler(res))
	group.POST("/:id/review/delete", a.reviewDeleteSubmitHandler(res))
	if res.kind == ReviewFloodReport {
		group.POST("/:id/review/ai", a.reviewAIHandler(res))
	}
}

func (a *App) reviewListHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		coll := res.collection(a.adminWorkspace(c))

		filter := strings.TrimSpace(c.Query("status"))
		if !containsString(res.statuses, filter) {
			filter = ""
		}
		query := parseAdminListQuery(c.Request.URL.Query())

		status := http.StatusOK
		if err := coll.Ensure(c.Request.Context(), filter, listFreshnessWindow, c.Query("refresh") == "1"); err != nil {
			if a.redirectOnUnauthorized(c, err) {
				return
			}
			a.log.Warn("load review list failed", "kind", res.kind, "error", err, "request_id", c.GetString("requestID"))
			status = http.StatusBadGateway
		}

		view := coll.Targets(query)
		rows := make([]adminReviewRowView, 0, len(view.Items))
		for _, target := range view.Items {
			rows = append(rows, a.reviewRow(lang, res, target))
		}

		chrome := newAdminListChrome(res.basePath, filter, query, view, res.sortKeys...)
		chrome.Filters = adminStatusFilters(lang, filter, res.statuses)
		chrome.ShowFilters = true
		if chrome.LoadError != "" {
			chrome.LoadError = adminText(lang, "error_load_failed") + " " + chrome.LoadError
		}

		subtitleKey := "col_address"
		if res.kind == ReviewFeedback {
			subtitleKey = "col_category"
		}
		a.renderAdminTemplate(c, status, adminTemplateReviewListPath, adminReviewListViewData{
			adminListChrome:   chrome,
			adminBaseViewData: a.adminBaseData(c, res.titleKey, res.nav),
			Kind:              res.kind,
			KindLabel:         adminText(lang, "kind_"+string(res.kind)),
			ShowLevel:         res.kind == ReviewFloodReport,
			SubtitleKey:       subtitleKey,
			Rows:              rows,
		})
	}
}

func (a *App) reviewRow(lang string, res reviewResource, target reviewTarget) adminReviewRowView {
	row := adminReviewRowView{
		ID:          target.ID,
		Title:       target.Title,
		Status:      target.Status,
		StatusLabel: adminStatusLabel(lang, target.Status),
		Submitter:   firstNonEmpty(target.Submitter, adminText(lang, "common_dash")),
		CreatedAt:   formatAdminTimestamp(target.CreatedAt),
		DetailURL:   res.itemURL(target.ID),
		Actions: buildAdminStatusActions(lang, string(res.kind), target.Status, func(status string) string {
			return res.reviewURL(target.ID, status)
		}),
	}
	if res.kind == ReviewFloodReport {
		row.Subtitle = firstNonEmpty(target.Address, adminText(lang, "review_no_address"))
		row.WaterLevel = adminLabel(lang, "water_", target.WaterLevel)
	} else {
		row.Subtitle = adminLabel(lang, "category_", target.Category)
	}
	if isTerminalStatus(string(res.kind), target.Status) {
		row.ViewURL = res.reviewURL(target.ID, target.Status)
	}
	return row
}

// findReviewTarget looks the item up in the cached list, loading it when it
// is not there. An item hidden by the current status filter is found by
// reloading without the filter.
func (a *App) findReviewTarget(ctx context.Context, lang string, coll reviewCollection, id int) (reviewTarget, error) {
	if target, ok := coll.Target(id); ok {
		return target, nil
	}
	if err := coll.Ensure(ctx, coll.Filter(), listFreshnessWindow, false); err != nil {
		return reviewTarget{}, err
	}
	if target, ok := coll.Target(id); ok {
		return target, nil
	}
	if coll.Filter() != "" {
		if err := coll.Load(ctx, ""); err != nil {
			return reviewTarget{}, err
		}
		if target, ok := coll.Target(id); ok {
			return target, nil
		}
	}
	return reviewTarget{}, &apiError{Status: http.StatusNotFound, Code: "not_found", Message: adminText(lang, "error_not_found")}
}

func (a *App) reviewDetailHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		id, ok := parseAdminID(c)
		if !ok {
			redirectAdminWithMessage(c, res.basePath, "error", adminText(lang, "error_not_found"))
			return
		}
		coll := res.collection(a.adminWorkspace(c))
		target, err := a.findReviewTarget(c.Request.Context(), lang, coll, id)
		if err != nil {
			a.handleBackendError(c, err, res.basePath, "error_load_failed")
			return
		}

		data := adminReviewDetailViewData{
			adminBaseViewData: a.adminBaseData(c, res.titleKey, res.nav),
			Kind:              res.kind,
			KindLabel:         adminText(lang, "kind_"+string(res.kind)),
			Target:            target,
			StatusLabel:       adminStatusLabel(lang, target.Status),
			CategoryText:      adminLabel(lang, "category_", target.Category),
			WaterText:         adminLabel(lang, "water_", target.WaterLevel),
			CreatedAt:         formatAdminTimestamp(target.CreatedAt),
			Image:             a.probeImageState(c.Request.Context(), a.backend.ImageURL(target.ImageURL)),
			Actions: buildAdminStatusActions(lang, string(res.kind), target.Status, func(status string) string {
				return res.reviewURL(id, status)
			}),
			BackURL: res.basePath,
		}
		if isTerminalStatus(string(res.kind), target.Status) {
			data.ViewURL = res.reviewURL(id, target.Status)
		}
		a.renderAdminTemplate(c, http.StatusOK, adminTemplateReviewDetailPath, data)
	}
}

// reviewOpenHandler shows the dialog. Without a status it resumes the dialog
// already open for the item; with one it opens a fresh dialog unless the open
// one proposes the same status.
func (a *App) reviewOpenHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		id, ok := parseAdminID(c)
		if !ok {
			redirectAdminWithMessage(c, res.basePath, "error", adminText(lang, "error_not_found"))
			return
		}
		ws := a.adminWorkspace(c)
		proposed := strings.TrimSpace(c.Query("status"))

		if dialog, open := ws.dialog(res.kind, id); open && (proposed == "" || proposed == dialog.Proposed()) {
			a.renderReviewDialog(c, res, dialog, http.StatusOK)
			return
		}
		if proposed == "" {
			redirectAdminWithMessage(c, res.itemURL(id), "error", adminText(lang, "error_review_closed"))
			return
		}

		target, err := a.findReviewTarget(c.Request.Context(), lang, res.collection(ws), id)
		if err != nil {
			a.handleBackendError(c, err, res.basePath, "error_load_failed")
			return
		}
		dialog, err := OpenReview(a.backend, target, proposed)
		if err != nil {
			redirectAdminWithMessage(c, res.basePath, "error", normalizeAdminErrorMessage(err, lang, "error_invalid_status"))
			return
		}
		ws.openDialog(dialog)
		a.renderReviewDialog(c, res, dialog, http.StatusOK)
	}
}

// openReviewDialog resolves the dialog a POST refers to. It responds itself
// when there is none.
func (a *App) openReviewDialog(c *gin.Context, res reviewResource) (*workspace, *ReviewDialog, int, bool) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, res.basePath, "error", adminText(lang, "error_not_found"))
		return nil, nil, 0, false
	}
	ws := a.adminWorkspace(c)
	dialog, open := ws.dialog(res.kind, id)
	if !open {
		redirectAdminWithMessage(c, res.itemURL(id), "error", adminText(lang, "error_review_closed"))
		return nil, nil, 0, false
	}
	return ws, dialog, id, true
}

func (a *App) reviewSaveHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		_, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		storeReviewForm(c, dialog)

		if err := dialog.Validate(); err != nil {
			a.renderReviewDialog(c, res, dialog, http.StatusUnprocessableEntity)
			return
		}

		a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
			adminBaseViewData: a.adminBaseData(c, "page_title_confirm", res.nav),
			Prompt:            dialog.ConfirmPrompt(lang),
			ActionURL:         fmt.Sprintf("%s/%d/review/confirm", res.basePath, id),
			CancelURL:         res.reviewURL(id, ""),
			ConfirmLabel:      adminText(lang, "common_confirm"),
			Hidden:            []adminHiddenField{{Name: "confirmed", Value: "yes"}},
		})
	}
}

// storeReviewForm copies the posted form into the dialog's draft.
func storeReviewForm(c *gin.Context, dialog *ReviewDialog) {
	if dialog.Editing() {
		dialog.SetEditDraft(EditDraft{
			Title:         c.PostForm("title"),
			Description:   c.PostForm("description"),
			Address:       c.PostForm("address"),
			Category:      c.PostForm("category"),
			WaterLevel:    c.PostForm("water_level"),
			AdminNote:     c.PostForm("admin_note"),
			AdminResponse: c.PostForm("admin_response"),
		})
		return
	}
	dialog.SetDraft(ReviewDraft{
		WaterLevel:    c.PostForm("water_level"),
		AdminNote:     c.PostForm("admin_note"),
		AdminResponse: c.PostForm("admin_response"),
	})
}

func (a *App) reviewConfirmHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		ws, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		if c.PostForm("confirmed") != "yes" {
			c.Redirect(http.StatusSeeOther, res.reviewURL(id, ""))
			return
		}

		target, proposed, editing := dialog.Target(), dialog.Proposed(), dialog.Editing()
		draft, edit := dialog.Draft(), dialog.EditDraft()

		err := res.collection(ws).Mutate(c.Request.Context(), func(ctx context.Context) error {
			_, submitErr := dialog.Submit(ctx)
			return submitErr
		})
		if err != nil {
			var validationErr *gateway.ValidationError
			if errors.As(err, &validationErr) {
				a.renderReviewDialog(c, res, dialog, http.StatusUnprocessableEntity)
				return
			}
			a.handleBackendError(c, err, res.reviewURL(id, ""), "error_review_failed")
			return
		}
		ws.closeDialog(res.kind)

		decision := a.newReviewDecision(c, target)
		decision.Action = "review"
		decision.Status = proposed
		decision.WaterLevel = draft.WaterLevel
		decision.Note = firstNonEmpty(draft.AdminNote, draft.AdminResponse)
		notice := "notice_review_saved"
		if editing {
			decision.Action = "edit"
			decision.Status = target.Status
			decision.WaterLevel = edit.WaterLevel
			decision.Note = firstNonEmpty(edit.AdminNote, edit.AdminResponse)
			notice = "notice_item_updated"
		}
		if target.Kind != ReviewFloodReport || decision.Status != gateway.StatusApproved {
			decision.WaterLevel = ""
		}
		a.recordReviewDecision(c.Request.Context(), decision)

		redirectAdminWithMessage(c, res.basePath, "notice", adminText(lang, notice))
	}
}

func (a *App) newReviewDecision(c *gin.Context, target reviewTarget) reviewDecision {
	session, _ := getAdminSession(c)
	return reviewDecision{
		Kind:           target.Kind,
		TargetID:       target.ID,
		Title:          target.Title,
		PreviousStatus: target.Status,
		Reviewer:       firstNonEmpty(session.User.FullName, session.User.Email),
		RequestID:      c.GetString("requestID"),
		DecidedAt:      a.clock(),
	}
}

func (a *App) reviewCloseHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.adminWorkspace(c).closeDialog(res.kind)
		c.Redirect(http.StatusSeeOther, res.basePath)
	}
}

func (a *App) reviewBeginEditHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		_, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		if err := dialog.BeginEdit(); err != nil {
			redirectAdminWithMessage(c, res.reviewURL(id, ""), "error", firstNonEmpty(err.Error(), adminText(lang, "error_update_failed")))
			return
		}
		c.Redirect(http.StatusSeeOther, res.reviewURL(id, ""))
	}
}

func (a *App) reviewCancelEditHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		dialog.CancelEdit()
		c.Redirect(http.StatusSeeOther, res.reviewURL(id, ""))
	}
}

func (a *App) reviewDeletePageHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		_, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		if !dialog.CanEdit() {
			redirectAdminWithMessage(c, res.reviewURL(id, ""), "error", errNotTerminal.Error())
			return
		}
		target := dialog.Target()
		a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
			adminBaseViewData: a.adminBaseData(c, "page_title_confirm", res.nav),
			Prompt:            fmt.Sprintf(adminText(lang, "confirm_delete"), adminText(lang, "kind_"+string(res.kind)), id),
			Details:           []string{target.Title},
			ActionURL:         fmt.Sprintf("%s/%d/review/delete", res.basePath, id),
			CancelURL:         res.reviewURL(id, ""),
			ConfirmLabel:      adminText(lang, "common_delete"),
			Danger:            true,
			Hidden:            []adminHiddenField{{Name: "confirmed", Value: "yes"}},
		})
	}
}

func (a *App) reviewDeleteSubmitHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		ws, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		if c.PostForm("confirmed") != "yes" {
			c.Redirect(http.StatusSeeOther, res.reviewURL(id, ""))
			return
		}

		target := dialog.Target()
		if err := res.collection(ws).Mutate(c.Request.Context(), dialog.Delete); err != nil {
			a.handleBackendError(c, err, res.reviewURL(id, ""), "error_delete_failed")
			return
		}
		ws.closeDialog(res.kind)

		decision := a.newReviewDecision(c, target)
		decision.Action = "delete"
		decision.Status = target.Status
		a.recordReviewDecision(c.Request.Context(), decision)

		redirectAdminWithMessage(c, res.basePath, "notice", adminText(lang, "notice_item_deleted"))
	}
}

// reviewAIHandler fills the draft from the AI analysis. The reviewer still
// has to submit and confirm.
func (a *App) reviewAIHandler(res reviewResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := a.adminLanguageFromRequest(c)
		_, dialog, id, ok := a.openReviewDialog(c, res)
		if !ok {
			return
		}
		if !dialog.Editing() {
			storeReviewForm(c, dialog)
		}

		if err := dialog.ApplyAIAnalysis(c.Request.Context(), lang); err != nil {
			a.handleBackendError(c, err, res.reviewURL(id, ""), "error_review_failed")
			return
		}
		redirectAdminWithMessage(c, res.reviewURL(id, ""), "notice", adminText(lang, "notice_ai_applied"))
	}
}

func (a *App) renderReviewDialog(c *gin.Context, res reviewResource, dialog *ReviewDialog, status int) {
	lang := a.adminLanguageFromRequest(c)
	target := dialog.Target()
	proposed := dialog.Proposed()
	kindLabel := adminText(lang, "kind_"+string(res.kind))
	viewOnly := dialog.ViewOnly()
	draft := dialog.Draft()
	edit := dialog.EditDraft()
	editing := dialog.Editing()

	heading := fmt.Sprintf(adminText(lang, "review_title_open"), kindLabel, target.ID, adminStatusLabel(lang, proposed))
	if viewOnly {
		heading = fmt.Sprintf(adminText(lang, "review_title_view"), kindLabel, target.ID)
	}

	level := draft.WaterLevel
	if editing {
		level = edit.WaterLevel
	}

	a.renderAdminTemplate(c, status, adminTemplateReviewPath, adminReviewDialogViewData{
		adminBaseViewData: a.adminBaseData(c, "page_title_review", res.nav),
		Kind:              res.kind,
		KindLabel:         kindLabel,
		Heading:           heading,
		Target:            target,
		StatusLabel:       adminStatusLabel(lang, target.Status),
		ProposedLabel:     adminStatusLabel(lang, proposed),
		Proposed:          proposed,
		Draft:             draft,
		Editing:           editing,
		Edit:              edit,
		FieldErrors:       dialog.FieldErrors(),
		LastError:         dialog.LastError(),
		AIError:           dialog.AIError(),
		AIApplied:         dialog.AIApplied(),
		ViewOnly:          viewOnly,
		CanSubmit:         dialog.CanSubmitReview(),
		CanEdit:           dialog.CanEdit(),
		CanAnalyze:        dialog.CanAnalyze(),
		NeedsLevel:        res.kind == ReviewFloodReport && proposed == gateway.StatusApproved && !viewOnly,
		WaterLevels:       adminOptions(lang, "water_", gateway.WaterLevels, level),
		Categories:        adminOptions(lang, "category_", gateway.FeedbackCategories, edit.Category),
		Image:             a.adminImageState(target.ImageURL),
		BasePath:          fmt.Sprintf("%s/%d/review", res.basePath, target.ID),
		BackURL:           res.basePath,
	})
}
