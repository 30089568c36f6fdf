package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
)

const adminEventsPath = "/admin/events"

func (a *App) adminEventsPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	banners := a.adminWorkspace(c).eventBanners
	query := parseAdminListQuery(c.Request.URL.Query())

	status := http.StatusOK
	if err := banners.Ensure(c.Request.Context(), "", listFreshnessWindow, c.Query("refresh") == "1"); err != nil {
		if a.redirectOnUnauthorized(c, err) {
			return
		}
		a.log.Warn("load event banners failed", "error", err, "request_id", c.GetString("requestID"))
		status = http.StatusBadGateway
	}

	view := banners.View(query)
	returnURL := adminListURL(adminEventsPath, "", query)
	rows := make([]adminEventRowView, 0, len(view.Items))
	for _, banner := range view.Items {
		rows = append(rows, adminEventRowView{
			ID:          banner.ID,
			Title:       banner.Title,
			Description: banner.Description,
			Image:       a.adminImageState(banner.ImageURL),
			CreatedAt:   formatAdminTimestamp(banner.CreatedAt),
			Selected:    banners.IsSelected(banner.ID),
			EditURL:     fmt.Sprintf("%s/%d/edit", adminEventsPath, banner.ID),
			DeleteURL:   fmt.Sprintf("%s/%d/delete", adminEventsPath, banner.ID),
		})
	}

	chrome := newAdminListChrome(adminEventsPath, "", query, view, "createdAt", "title")
	if chrome.LoadError != "" {
		chrome.LoadError = adminText(lang, "error_load_failed") + " " + chrome.LoadError
	}
	a.renderAdminTemplate(c, status, adminTemplateEventsPath, adminEventsViewData{
		adminListChrome:   chrome,
		adminBaseViewData: a.adminBaseData(c, "page_title_events", "events"),
		Rows:              rows,
		SelectedCount:     len(banners.Selected()),
		ReturnURL:         returnURL,
	})
}

func (a *App) adminEventSelectSubmitHandler(c *gin.Context) {
	id, ok := parseAdminID(c)
	if ok {
		a.adminWorkspace(c).eventBanners.Toggle(id)
	}
	c.Redirect(http.StatusSeeOther, eventsReturnTarget(c))
}

func (a *App) adminEventsSelectAllSubmitHandler(c *gin.Context) {
	banners := a.adminWorkspace(c).eventBanners
	if c.PostForm("all") == "1" {
		banners.SelectAll()
	} else {
		banners.ClearSelection()
	}
	c.Redirect(http.StatusSeeOther, eventsReturnTarget(c))
}

func eventsReturnTarget(c *gin.Context) string {
	target := sanitizeAdminRedirectTarget(c.PostForm("return"))
	if !strings.HasPrefix(target, adminEventsPath) {
		return adminEventsPath
	}
	return target
}

func (a *App) adminEventsBulkDeletePageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	banners := a.adminWorkspace(c).eventBanners
	ids := banners.Selected()
	if len(ids) == 0 {
		redirectAdminWithMessage(c, adminEventsPath, "error", adminText(lang, "error_bulk_no_selection"))
		return
	}

	details := make([]string, 0, len(ids))
	for _, id := range ids {
		if banner, found := banners.Find(id); found {
			details = append(details, fmt.Sprintf("#%d %s", banner.ID, banner.Title))
		}
	}
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
		adminBaseViewData: a.adminBaseData(c, "page_title_confirm", "events"),
		Prompt:            fmt.Sprintf(adminText(lang, "confirm_bulk_delete"), len(ids)),
		Details:           details,
		ActionURL:         adminEventsPath + "/bulk-delete",
		CancelURL:         adminEventsPath,
		ConfirmLabel:      adminText(lang, "common_delete"),
		Danger:            true,
		Hidden:            []adminHiddenField{{Name: "confirmed", Value: "yes"}},
	})
}

func (a *App) adminEventsBulkDeleteSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	if c.PostForm("confirmed") != "yes" {
		c.Redirect(http.StatusSeeOther, adminEventsPath)
		return
	}
	banners := a.adminWorkspace(c).eventBanners
	ids := banners.Selected()
	if len(ids) == 0 {
		redirectAdminWithMessage(c, adminEventsPath, "error", adminText(lang, "error_bulk_no_selection"))
		return
	}

	err := banners.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return a.backend.DeleteEventBanners(ctx, ids)
	})
	if err != nil {
		a.handleBackendError(c, err, adminEventsPath, "error_delete_failed")
		return
	}
	a.log.Info("event banners deleted", "count", len(ids), "request_id", c.GetString("requestID"))
	redirectAdminWithMessage(c, adminEventsPath, "notice", fmt.Sprintf(adminText(lang, "notice_bulk_deleted"), len(ids)))
}

func (a *App) adminEventCreatePageHandler(c *gin.Context) {
	a.renderEventForm(c, http.StatusOK, 0, gateway.EventBannerInput{}, nil)
}

func (a *App) adminEventEditPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminEventsPath, "error", adminText(lang, "error_not_found"))
		return
	}

	banner, found := a.adminWorkspace(c).eventBanners.Find(id)
	if !found {
		fetched, err := a.backend.GetEventBanner(c.Request.Context(), id)
		if err != nil {
			a.handleBackendError(c, err, adminEventsPath, "error_not_found")
			return
		}
		banner = *fetched
	}
	a.renderEventForm(c, http.StatusOK, id, gateway.EventBannerInput{
		Title:       banner.Title,
		Description: banner.Description,
		ImageURL:    banner.ImageURL,
	}, nil)
}

func (a *App) adminEventCreateSubmitHandler(c *gin.Context) {
	a.saveEventBanner(c, 0)
}

func (a *App) adminEventUpdateSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminEventsPath, "error", adminText(lang, "error_not_found"))
		return
	}
	a.saveEventBanner(c, id)
}

// saveEventBanner creates (id 0) or updates a banner. A file chosen on the
// form is uploaded first and replaces the image URL.
func (a *App) saveEventBanner(c *gin.Context, id int) {
	lang := a.adminLanguageFromRequest(c)
	input := eventBannerForm(c)

	imageURL, uploaded, err := a.uploadEventImage(c)
	if err != nil {
		a.eventFormFailure(c, id, input, err, "error_upload_failed")
		return
	}
	if uploaded {
		input.ImageURL = imageURL
	}

	if err := gateway.ValidateEventBanner(input); err != nil {
		a.renderEventForm(c, http.StatusUnprocessableEntity, id, input, validationFieldErrors(err))
		return
	}

	banners := a.adminWorkspace(c).eventBanners
	err = banners.Mutate(c.Request.Context(), func(ctx context.Context) error {
		if id == 0 {
			return a.backend.CreateEventBanner(ctx, input)
		}
		return a.backend.UpdateEventBanner(ctx, id, input)
	})
	if err != nil {
		a.eventFormFailure(c, id, input, err, "error_save_failed")
		return
	}

	notice := "notice_event_updated"
	if id == 0 {
		notice = "notice_event_created"
	}
	redirectAdminWithMessage(c, adminEventsPath, "notice", adminText(lang, notice))
}

func (a *App) adminEventUploadSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	input := eventBannerForm(c)
	id, _ := strconv.Atoi(c.PostForm("id"))
	if id < 0 {
		id = 0
	}

	imageURL, uploaded, err := a.uploadEventImage(c)
	if err == nil && !uploaded {
		err = &gateway.ValidationError{Field: "file", Message: "an image file is required"}
	}
	if err != nil {
		a.eventFormFailure(c, id, input, err, "error_upload_failed")
		return
	}

	input.ImageURL = imageURL
	a.renderEventFormNotice(c, http.StatusOK, id, input, nil, adminText(lang, "notice_image_uploaded"))
}

func eventBannerForm(c *gin.Context) gateway.EventBannerInput {
	return gateway.EventBannerInput{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		ImageURL:    strings.TrimSpace(c.PostForm("image_url")),
	}
}

func (a *App) uploadEventImage(c *gin.Context) (string, bool, error) {
	upload, err := readAdminUpload(c, "image")
	if err != nil || upload == nil {
		return "", false, err
	}
	imageURL, err := a.uploader.Upload(c.Request.Context(), upload)
	if err != nil {
		return "", false, err
	}
	a.log.Info("event image uploaded", "provider", a.uploader.Name(), "filename", upload.Filename, "request_id", c.GetString("requestID"))
	return imageURL, true, nil
}

// eventFormFailure keeps the reviewer on the form for validation errors and
// falls back to the usual redirect for everything else.
func (a *App) eventFormFailure(c *gin.Context, id int, input gateway.EventBannerInput, err error, fallbackKey string) {
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		a.renderEventForm(c, http.StatusUnprocessableEntity, id, input, validationFieldErrors(err))
		return
	}
	target := adminEventsPath + "/new"
	if id > 0 {
		target = fmt.Sprintf("%s/%d/edit", adminEventsPath, id)
	}
	a.handleBackendError(c, err, target, fallbackKey)
}

func (a *App) renderEventForm(c *gin.Context, status, id int, input gateway.EventBannerInput, fieldErrors map[string]string) {
	a.renderEventFormNotice(c, status, id, input, fieldErrors, "")
}

func (a *App) renderEventFormNotice(c *gin.Context, status, id int, input gateway.EventBannerInput, fieldErrors map[string]string, notice string) {
	titleKey := "page_title_event_new"
	actionURL := adminEventsPath
	if id > 0 {
		titleKey = "page_title_event_edit"
		actionURL = fmt.Sprintf("%s/%d", adminEventsPath, id)
	}
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	base := a.adminBaseData(c, titleKey, "events")
	if notice != "" {
		base.NoticeMessage = notice
	}
	a.renderAdminTemplate(c, status, adminTemplateEventFormPath, adminEventFormViewData{
		adminBaseViewData: base,
		ID:                id,
		BannerTitle:       input.Title,
		Description:       input.Description,
		ImageURL:          input.ImageURL,
		Image:             a.adminImageState(input.ImageURL),
		FieldErrors:       fieldErrors,
		ActionURL:         actionURL,
		UploadURL:         adminEventsPath + "/upload",
		BackURL:           adminEventsPath,
	})
}

func (a *App) adminEventDeletePageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminEventsPath, "error", adminText(lang, "error_not_found"))
		return
	}
	var details []string
	if banner, found := a.adminWorkspace(c).eventBanners.Find(id); found {
		details = append(details, banner.Title)
	}
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
		adminBaseViewData: a.adminBaseData(c, "page_title_confirm", "events"),
		Prompt:            fmt.Sprintf(adminText(lang, "confirm_delete"), adminText(lang, "kind_event_banner"), id),
		Details:           details,
		ActionURL:         fmt.Sprintf("%s/%d/delete", adminEventsPath, id),
		CancelURL:         adminEventsPath,
		ConfirmLabel:      adminText(lang, "common_delete"),
		Danger:            true,
		Hidden:            []adminHiddenField{{Name: "confirmed", Value: "yes"}},
	})
}

func (a *App) adminEventDeleteSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok || c.PostForm("confirmed") != "yes" {
		c.Redirect(http.StatusSeeOther, adminEventsPath)
		return
	}
	err := a.adminWorkspace(c).eventBanners.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return a.backend.DeleteEventBanner(ctx, id)
	})
	if err != nil {
		a.handleBackendError(c, err, adminEventsPath, "error_delete_failed")
		return
	}
	redirectAdminWithMessage(c, adminEventsPath, "notice", adminText(lang, "notice_item_deleted"))
}
