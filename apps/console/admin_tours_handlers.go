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

const adminToursPath = "/admin/tours"

func (a *App) adminToursPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	tours := a.adminWorkspace(c).tours
	query := parseAdminListQuery(c.Request.URL.Query())

	status := http.StatusOK
	if err := tours.Ensure(c.Request.Context(), "", listFreshnessWindow, c.Query("refresh") == "1"); err != nil {
		if a.redirectOnUnauthorized(c, err) {
			return
		}
		a.log.Warn("load tours failed", "error", err, "request_id", c.GetString("requestID"))
		status = http.StatusBadGateway
	}

	view := tours.View(query)
	rows := make([]adminTourRowView, 0, len(view.Items))
	for _, tour := range view.Items {
		rows = append(rows, a.tourRow(tour))
	}

	chrome := newAdminListChrome(adminToursPath, "", query, view, "nameTour", "tourType", "price", "maxPeople")
	if chrome.LoadError != "" {
		chrome.LoadError = adminText(lang, "error_load_failed") + " " + chrome.LoadError
	}
	a.renderAdminTemplate(c, status, adminTemplateToursPath, adminToursViewData{
		adminListChrome:   chrome,
		adminBaseViewData: a.adminBaseData(c, "page_title_tours", "tours"),
		Rows:              rows,
	})
}

func (a *App) tourRow(tour gateway.Tour) adminTourRowView {
	return adminTourRowView{
		ID:        tour.ID,
		Name:      tour.NameTour,
		TourType:  tour.TourType,
		Price:     formatVND(tour.Price),
		Duration:  tour.Duration,
		MaxPeople: tour.MaxPeople,
		Cover:     a.adminImageState(tour.CoverImageURL),
		DetailURL: fmt.Sprintf("%s/%d", adminToursPath, tour.ID),
		EditURL:   fmt.Sprintf("%s/%d/edit", adminToursPath, tour.ID),
		DeleteURL: fmt.Sprintf("%s/%d/delete", adminToursPath, tour.ID),
	}
}

// findTour prefers the cached list and falls back to the single-tour call.
func (a *App) findTour(c *gin.Context, id int) (gateway.Tour, error) {
	if tour, ok := a.adminWorkspace(c).tours.Find(id); ok {
		return tour, nil
	}
	tour, err := a.backend.GetTour(c.Request.Context(), id)
	if err != nil {
		return gateway.Tour{}, err
	}
	return *tour, nil
}

func (a *App) adminTourDetailPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminToursPath, "error", adminText(lang, "error_not_found"))
		return
	}
	tour, err := a.findTour(c, id)
	if err != nil {
		a.handleBackendError(c, err, adminToursPath, "error_not_found")
		return
	}

	gallery := make([]imageState, 0, len(tour.GalleryImageURLs))
	for _, raw := range tour.GalleryImageURLs {
		gallery = append(gallery, a.adminImageState(raw))
	}
	base := a.adminBaseData(c, "page_title_tours", "tours")
	base.Title = tour.NameTour
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateTourDetailPath, adminTourDetailViewData{
		adminBaseViewData: base,
		Tour:              a.tourRow(tour),
		Timeline:          tour.Timeline,
		Content:           tour.Content,
		Gallery:           gallery,
		BackURL:           adminToursPath,
	})
}

func (a *App) adminTourCreatePageHandler(c *gin.Context) {
	a.renderTourForm(c, http.StatusOK, 0, tourFormValues{}, nil)
}

func (a *App) adminTourEditPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminToursPath, "error", adminText(lang, "error_not_found"))
		return
	}
	tour, err := a.findTour(c, id)
	if err != nil {
		a.handleBackendError(c, err, adminToursPath, "error_not_found")
		return
	}
	a.renderTourForm(c, http.StatusOK, id, tourFormValues{
		NameTour:  tour.NameTour,
		Content:   tour.Content,
		Price:     strconv.FormatInt(tour.Price, 10),
		TourType:  tour.TourType,
		Duration:  tour.Duration,
		MaxPeople: strconv.Itoa(tour.MaxPeople),
		Timeline:  tour.Timeline,
		Gallery:   strings.Join(tour.GalleryImageURLs, "\n"),
		Cover:     tour.CoverImageURL,
	}, nil)
}

func (a *App) adminTourCreateSubmitHandler(c *gin.Context) {
	a.saveTour(c, 0)
}

func (a *App) adminTourUpdateSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminToursPath, "error", adminText(lang, "error_not_found"))
		return
	}
	a.saveTour(c, id)
}

// tourFormValues is the form as typed, so a rejected submission can be shown
// again unchanged.
type tourFormValues struct {
	NameTour  string
	Content   string
	Price     string
	TourType  string
	Duration  string
	MaxPeople string
	Timeline  string
	Gallery   string
	Cover     string
}

func tourFormFromRequest(c *gin.Context) tourFormValues {
	return tourFormValues{
		NameTour:  strings.TrimSpace(c.PostForm("name_tour")),
		Content:   c.PostForm("content"),
		Price:     strings.TrimSpace(c.PostForm("price")),
		TourType:  strings.TrimSpace(c.PostForm("tour_type")),
		Duration:  strings.TrimSpace(c.PostForm("duration")),
		MaxPeople: strings.TrimSpace(c.PostForm("max_people")),
		Timeline:  c.PostForm("timeline"),
		Gallery:   c.PostForm("gallery"),
		Cover:     strings.TrimSpace(c.PostForm("cover_url")),
	}
}

// input converts the typed form. Number fields are checked here since the
// gateway only sees parsed values.
func (v tourFormValues) input() (gateway.TourInput, error) {
	in := gateway.TourInput{
		NameTour:         v.NameTour,
		Content:          v.Content,
		TourType:         v.TourType,
		Duration:         v.Duration,
		Timeline:         v.Timeline,
		GalleryImageURLs: joinGalleryLines(v.Gallery),
	}
	if v.Price != "" {
		price, err := strconv.ParseInt(strings.ReplaceAll(v.Price, ".", ""), 10, 64)
		if err != nil {
			return in, &gateway.ValidationError{Field: "price", Message: "price must be a whole number"}
		}
		in.Price = price
	}
	if v.MaxPeople != "" {
		maxPeople, err := strconv.Atoi(v.MaxPeople)
		if err != nil {
			return in, &gateway.ValidationError{Field: "maxPeople", Message: "max people must be a whole number"}
		}
		in.MaxPeople = maxPeople
	}
	return in, nil
}

// joinGalleryLines turns one URL per line into the comma separated list the
// backend stores.
func joinGalleryLines(raw string) string {
	var urls []string
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' }) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return strings.Join(urls, ",")
}

func (a *App) saveTour(c *gin.Context, id int) {
	lang := a.adminLanguageFromRequest(c)
	values := tourFormFromRequest(c)
	creating := id == 0

	in, err := values.input()
	if err == nil {
		in.CoverImage, err = readAdminUpload(c, "cover_image")
	}
	if err == nil {
		err = gateway.ValidateTour(in, creating)
	}
	if err != nil {
		a.tourFormFailure(c, id, values, err)
		return
	}

	err = a.adminWorkspace(c).tours.Mutate(c.Request.Context(), func(ctx context.Context) error {
		if creating {
			return a.backend.CreateTour(ctx, in)
		}
		return a.backend.UpdateTour(ctx, id, in)
	})
	if err != nil {
		a.tourFormFailure(c, id, values, err)
		return
	}

	notice := "notice_tour_updated"
	if creating {
		notice = "notice_tour_created"
	}
	redirectAdminWithMessage(c, adminToursPath, "notice", adminText(lang, notice))
}

func (a *App) tourFormFailure(c *gin.Context, id int, values tourFormValues, err error) {
	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		a.renderTourForm(c, http.StatusUnprocessableEntity, id, values, validationFieldErrors(err))
		return
	}
	target := adminToursPath + "/new"
	if id > 0 {
		target = fmt.Sprintf("%s/%d/edit", adminToursPath, id)
	}
	a.handleBackendError(c, err, target, "error_save_failed")
}

func (a *App) renderTourForm(c *gin.Context, status, id int, values tourFormValues, fieldErrors map[string]string) {
	titleKey := "page_title_tour_new"
	actionURL := adminToursPath
	if id > 0 {
		titleKey = "page_title_tour_edit"
		actionURL = fmt.Sprintf("%s/%d", adminToursPath, id)
	}
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	data := adminTourFormViewData{
		adminBaseViewData: a.adminBaseData(c, titleKey, "tours"),
		ID:                id,
		Creating:          id == 0,
		NameTour:          values.NameTour,
		Content:           values.Content,
		Price:             values.Price,
		TourType:          values.TourType,
		Duration:          values.Duration,
		MaxPeople:         values.MaxPeople,
		Timeline:          values.Timeline,
		Gallery:           values.Gallery,
		FieldErrors:       fieldErrors,
		ActionURL:         actionURL,
		BackURL:           adminToursPath,
	}
	if values.Cover != "" {
		data.Cover = a.adminImageState(values.Cover)
	}
	a.renderAdminTemplate(c, status, adminTemplateTourFormPath, data)
}

func (a *App) adminTourDeletePageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok {
		redirectAdminWithMessage(c, adminToursPath, "error", adminText(lang, "error_not_found"))
		return
	}
	var details []string
	if tour, found := a.adminWorkspace(c).tours.Find(id); found {
		details = append(details, tour.NameTour)
	}
	a.renderAdminTemplate(c, http.StatusOK, adminTemplateConfirmPath, adminConfirmViewData{
		adminBaseViewData: a.adminBaseData(c, "page_title_confirm", "tours"),
		Prompt:            fmt.Sprintf(adminText(lang, "confirm_delete"), adminText(lang, "kind_tour"), id),
		Details:           details,
		ActionURL:         fmt.Sprintf("%s/%d/delete", adminToursPath, id),
		CancelURL:         adminToursPath,
		ConfirmLabel:      adminText(lang, "common_delete"),
		Danger:            true,
		Hidden:            []adminHiddenField{{Name: "confirmed", Value: "yes"}},
	})
}

func (a *App) adminTourDeleteSubmitHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	id, ok := parseAdminID(c)
	if !ok || c.PostForm("confirmed") != "yes" {
		c.Redirect(http.StatusSeeOther, adminToursPath)
		return
	}
	err := a.adminWorkspace(c).tours.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return a.backend.DeleteTour(ctx, id)
	})
	if err != nil {
		a.handleBackendError(c, err, adminToursPath, "error_delete_failed")
		return
	}
	redirectAdminWithMessage(c, adminToursPath, "notice", adminText(lang, "notice_item_deleted"))
}
