package main

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	adminDefaultPage    = 1
	adminDefaultPerPage = 25
)

func parseAdminPage(rawPage string) int {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < adminDefaultPage {
		return adminDefaultPage
	}
	return page
}

// parseAdminListQuery reads search, sort and page from the query string.
func parseAdminListQuery(values url.Values) ListQuery {
	return ListQuery{
		Search:   strings.TrimSpace(values.Get("q")),
		SortKey:  strings.TrimSpace(values.Get("sort")),
		SortDesc: values.Get("desc") == "1",
		Page:     parseAdminPage(values.Get("page")),
		PageSize: adminDefaultPerPage,
	}
}

// adminListURL rebuilds a list URL keeping filters, search and sort. page is
// dropped when it is the first one.
func adminListURL(basePath string, filter string, query ListQuery) string {
	params := url.Values{}
	if filter != "" {
		params.Set("status", filter)
	}
	if query.Search != "" {
		params.Set("q", query.Search)
	}
	if query.SortKey != "" {
		params.Set("sort", query.SortKey)
		if query.SortDesc {
			params.Set("desc", "1")
		}
	}
	if query.Page > adminDefaultPage {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if encoded := params.Encode(); encoded != "" {
		return basePath + "?" + encoded
	}
	return basePath
}

// adminSortURL links a column header. Clicking the active column flips the
// direction.
func adminSortURL(basePath, filter string, query ListQuery, activeKey string, activeDesc bool, column string) string {
	next := ListQuery{Search: query.Search, SortKey: column}
	if activeKey == column {
		next.SortDesc = !activeDesc
	}
	return adminListURL(basePath, filter, next)
}

func buildAdminPaginationView(totalCount, currentPage, pageSize int, pageURL string) adminPaginationViewData {
	if pageSize < 1 {
		pageSize = adminDefaultPerPage
	}
	if currentPage < adminDefaultPage {
		currentPage = adminDefaultPage
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	pageSeparator := "?"
	if strings.Contains(pageURL, "?") {
		pageSeparator = "&"
	}

	return adminPaginationViewData{
		CurrentPage:   currentPage,
		TotalPages:    totalPages,
		TotalCount:    totalCount,
		NextPage:      currentPage + 1,
		PrevPage:      currentPage - 1,
		HasNext:       currentPage < totalPages,
		HasPrev:       currentPage > adminDefaultPage,
		PageURL:       pageURL,
		PageSeparator: pageSeparator,
	}
}

// listPagination builds the pager for a derived list view. The page URL
// carries everything except page.
func listPagination[T any](basePath, filter string, query ListQuery, view ListView[T]) adminPaginationViewData {
	pageURL := adminListURL(basePath, filter, ListQuery{Search: query.Search, SortKey: query.SortKey, SortDesc: query.SortDesc})
	return buildAdminPaginationView(view.Total, view.Page, view.PageSize, pageURL)
}
