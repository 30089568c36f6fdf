package main

import (
	"net/http"

	"citydesk/libs/gateway"

	"github.com/gin-gonic/gin"
)

const adminUsersPath = "/admin/users"

func (a *App) adminUsersPageHandler(c *gin.Context) {
	lang := a.adminLanguageFromRequest(c)
	users := a.adminWorkspace(c).users
	query := parseAdminListQuery(c.Request.URL.Query())

	status := http.StatusOK
	if err := users.Ensure(c.Request.Context(), "", listFreshnessWindow, c.Query("refresh") == "1"); err != nil {
		if a.redirectOnUnauthorized(c, err) {
			return
		}
		a.log.Warn("load users failed", "error", err, "request_id", c.GetString("requestID"))
		status = http.StatusBadGateway
	}

	view := users.View(query)
	rows := make([]adminUserRowView, 0, len(view.Items))
	for _, user := range view.Items {
		rows = append(rows, userRow(lang, user))
	}

	chrome := newAdminListChrome(adminUsersPath, "", query, view, "email", "fullName", "createdAt")
	if chrome.LoadError != "" {
		chrome.LoadError = adminText(lang, "error_load_failed") + " " + chrome.LoadError
	}
	a.renderAdminTemplate(c, status, adminTemplateUsersPath, adminUsersViewData{
		adminListChrome:   chrome,
		adminBaseViewData: a.adminBaseData(c, "page_title_users", "users"),
		Rows:              rows,
	})
}

func userRow(lang string, user gateway.User) adminUserRowView {
	dash := adminText(lang, "common_dash")
	return adminUserRowView{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  firstNonEmpty(user.FullName, dash),
		Phone:     firstNonEmpty(user.PhoneNumber, dash),
		Role:      firstNonEmpty(user.Role, dash),
		CreatedAt: formatAdminTimestamp(user.CreatedAt),
	}
}
