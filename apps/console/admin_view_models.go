package main

import (
	"sync"
	"time"
)

const (
	adminLanguageCookieName        = "citydesk_admin_language"
	adminDefaultLanguage           = "vi"
	adminLanguageCookieMaxAge      = 180 * 24 * time.Hour
	adminDisplayTimestampLayout    = "2006-01-02 15:04"
	adminTemplateLoginPath         = "templates/admin/login.tmpl"
	adminTemplateDashboardPath     = "templates/admin/dashboard.tmpl"
	adminTemplateReviewListPath    = "templates/admin/review_list.tmpl"
	adminTemplateReviewDetailPath  = "templates/admin/review_detail.tmpl"
	adminTemplateReviewPath        = "templates/admin/review.tmpl"
	adminTemplateConfirmPath       = "templates/admin/confirm.tmpl"
	adminTemplateEventsPath        = "templates/admin/events.tmpl"
	adminTemplateEventFormPath     = "templates/admin/event_form.tmpl"
	adminTemplateToursPath         = "templates/admin/tours.tmpl"
	adminTemplateTourFormPath      = "templates/admin/tour_form.tmpl"
	adminTemplateTourDetailPath    = "templates/admin/tour_detail.tmpl"
	adminTemplateBookingsPath      = "templates/admin/bookings.tmpl"
	adminTemplateUsersPath         = "templates/admin/users.tmpl"
	adminStatusActionLabelTemplate = "action_mark_%s"
)

var (
	adminTranslations = map[string]map[string]string{
		"vi": {
			"app_title":           "CityDesk Quản trị",
			"workspace_signed_in": "Đăng nhập với",
			"language_label":      "Ngôn ngữ",
			"language_apply":      "Đổi",
			"language_vi":         "Tiếng Việt",
			"language_en":         "English",
			"nav_dashboard":       "Tổng quan",
			"nav_flood_reports":   "Báo cáo ngập",
			"nav_feedback":        "Phản ánh",
			"nav_events":          "Sự kiện",
			"nav_tours":           "Tour du lịch",
			"nav_bookings":        "Đặt tour",
			"nav_users":           "Người dùng",
			"nav_logout":          "Đăng xuất",

			"page_title_login":         "Đăng nhập quản trị",
			"page_title_dashboard":     "Tổng quan",
			"page_title_flood_reports": "Báo cáo ngập",
			"page_title_feedback":      "Phản ánh",
			"page_title_review":        "Xét duyệt",
			"page_title_confirm":       "Xác nhận",
			"page_title_events":        "Banner sự kiện",
			"page_title_event_new":     "Thêm banner",
			"page_title_event_edit":    "Sửa banner",
			"page_title_tours":         "Tour du lịch",
			"page_title_tour_new":      "Thêm tour",
			"page_title_tour_edit":     "Sửa tour",
			"page_title_bookings":      "Đặt tour",
			"page_title_users":         "Người dùng",

			"login_title":                "Đăng nhập quản trị viên",
			"login_hint":                 "Chỉ tài khoản Admin mới được truy cập.",
			"login_email":                "Email",
			"login_password":             "Mật khẩu",
			"login_button":               "Đăng nhập",
			"error_invalid_credentials":  "Email hoặc mật khẩu không đúng.",
			"error_login_failed":         "Đăng nhập thất bại.",
			"error_admin_role_required":  "Truy cập bị từ chối: cần quyền Admin.",
			"error_session_expired":      "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại.",
			"error_load_failed":          "Lỗi tải dữ liệu.",
			"error_review_failed":        "Cập nhật thất bại.",
			"error_update_failed":        "Lưu thay đổi thất bại.",
			"error_delete_failed":        "Xoá thất bại.",
			"error_bulk_no_selection":    "Vui lòng chọn ít nhất một mục.",
			"error_upload_failed":        "Tải ảnh lên thất bại.",
			"error_save_failed":          "Lưu thất bại.",
			"error_not_found":            "Không tìm thấy mục này.",
			"error_ai_failed":            "Lỗi phân tích AI: %s",
			"error_invalid_status":       "Trạng thái không hợp lệ.",
			"error_dashboard_degraded":   "Không tải được số liệu mới, đang hiển thị dữ liệu gần nhất.",
			"error_export_failed":        "Xuất báo cáo thất bại.",
			"error_review_closed":        "Phiên xét duyệt đã đóng, vui lòng mở lại.",
			"notice_review_saved":        "Cập nhật thành công!",
			"notice_item_updated":        "Đã lưu thay đổi.",
			"notice_item_deleted":        "Đã xoá.",
			"notice_bulk_deleted":        "Đã xoá %d mục.",
			"notice_event_created":       "Đã thêm banner.",
			"notice_event_updated":       "Đã cập nhật banner.",
			"notice_image_uploaded":      "Đã tải ảnh lên.",
			"notice_tour_created":        "Đã thêm tour.",
			"notice_tour_updated":        "Đã cập nhật tour.",
			"notice_booking_updated":     "Đã cập nhật đặt tour.",
			"notice_booking_cancelled":   "Đã huỷ đặt tour.",
			"notice_ai_applied":          "AI đã phân tích xong! Vui lòng kiểm tra và xác nhận.",
			"notice_selection_cleared":   "Đã bỏ chọn tất cả.",
			"common_dash":                "-",
			"common_back":                "Quay lại",
			"common_cancel":              "Huỷ",
			"common_close":               "Đóng",
			"common_save":                "Lưu",
			"common_search":              "Tìm kiếm",
			"common_refresh":             "Làm mới",
			"common_all":                 "Tất cả",
			"common_confirm":             "Xác nhận",
			"common_delete":              "Xoá",
			"common_edit":                "Sửa",
			"common_view":                "Xem",
			"common_loading":             "Đang tải...",
			"common_empty":               "Không có dữ liệu.",
			"common_prev":                "Trước",
			"common_next":                "Sau",
			"common_page":                "Trang",
			"common_select":              "Chọn",
			"common_select_all":          "Chọn tất cả",
			"common_clear_selection":     "Bỏ chọn",
			"common_selected":            "đã chọn",
			"common_actions":             "Thao tác",
			"common_created":             "Ngày tạo",
			"common_status":              "Trạng thái",
			"common_title":               "Tiêu đề",
			"common_description":         "Mô tả",
			"common_image":               "Hình ảnh",
			"common_image_failed":        "Không tải được hình ảnh",
			"common_image_unchecked":     "Hình ảnh chưa được kiểm tra",
			"common_submitter":           "Người gửi",
			"common_total":               "Tổng",
			"filter_status":              "Trạng thái",
			"placeholder_search":         "Tìm kiếm...",
			"status_Pending":             "Chờ duyệt",
			"status_Approved":            "Đã duyệt",
			"status_Rejected":            "Từ chối",
			"status_Processing":          "Đang xử lý",
			"status_Resolved":            "Đã giải quyết",
			"status_Confirmed":           "Đã xác nhận",
			"status_Cancelled":           "Đã huỷ",
			"status_Completed":           "Hoàn thành",
			"status_Unknown":             "Không rõ",
			"action_mark_Approved":       "Duyệt",
			"action_mark_Rejected":       "Từ chối",
			"action_mark_Processing":     "Xử lý",
			"action_mark_Resolved":       "Giải quyết",
			"action_mark_Confirmed":      "Xác nhận",
			"action_mark_Cancelled":      "Huỷ",
			"kind_flood_report":          "Báo cáo ngập",
			"kind_feedback":              "Phản ánh",
			"kind_booking":               "Đặt tour",
			"kind_user":                  "Người dùng",
			"kind_event_banner":          "Banner",
			"kind_tour":                  "Tour",
			"water_Low":                  "Thấp",
			"water_Medium":               "Trung bình",
			"water_High":                 "Cao",
			"water_Dangerous":            "Nguy hiểm",
			"category_Infrastructure":    "Hạ tầng",
			"category_Traffic":           "Giao thông",
			"category_Environment":       "Môi trường",
			"category_Security":          "An ninh",
			"category_Other":             "Khác",
			"col_address":                "Địa chỉ",
			"col_water_level":            "Mức độ ngập",
			"col_category":               "Danh mục",
			"review_title_open":          "Chuyển %s #%d sang %s",
			"review_title_view":          "Chi tiết %s #%d",
			"review_water_level":         "Mức độ ngập",
			"review_choose_level":        "Chọn mức độ ngập",
			"review_admin_note":          "Ghi chú của quản trị viên",
			"review_admin_response":      "Phản hồi của quản trị viên",
			"review_submit":              "Gửi",
			"review_ai_title":            "AI phân tích hình ảnh",
			"review_ai_button":           "Phân tích ngay",
			"review_ai_applied":          "Kết quả AI đã được điền vào biểu mẫu.",
			"review_edit_button":         "Chỉnh sửa",
			"review_delete_button":       "Xoá",
			"review_view_only":           "Mục này đã được xét duyệt.",
			"review_current_status":      "Trạng thái hiện tại",
			"review_proposed_status":     "Trạng thái mới",
			"review_no_address":          "Không có thông tin địa chỉ",
			"review_open_detail":         "Chi tiết",
			"confirm_review":             "Xác nhận chuyển %s #%d từ \"%s\" sang \"%s\"?",
			"confirm_edit":               "Lưu thay đổi cho %s #%d?",
			"confirm_delete":             "Xoá %s #%d? Thao tác này không thể hoàn tác.",
			"confirm_bulk_delete":        "Xoá %d banner đã chọn? Thao tác này không thể hoàn tác.",
			"confirm_booking_status":     "Chuyển đặt tour #%d từ \"%s\" sang \"%s\"?",
			"confirm_booking_cancel":     "Huỷ đặt tour #%d?",
			"dashboard_users":            "Người dùng",
			"dashboard_event_banners":    "Banner sự kiện",
			"dashboard_feedback":         "Phản ánh",
			"dashboard_flood_reports":    "Báo cáo ngập",
			"dashboard_bookings":         "Đặt tour",
			"dashboard_pending":          "chờ xử lý",
			"dashboard_flood_status":     "Trạng thái báo cáo ngập",
			"dashboard_feedback_status":  "Trạng thái phản ánh",
			"dashboard_booking_status":   "Trạng thái đặt tour",
			"dashboard_activity":         "Hoạt động gần đây",
			"dashboard_recent_banners":   "Banner mới nhất",
			"dashboard_export_pdf":       "Xuất PDF",
			"dashboard_export_csv":       "Xuất CSV",
			"dashboard_generated":        "Cập nhật lúc",
			"dashboard_empty_activity":   "Chưa có hoạt động.",
			"events_new":                 "Thêm banner",
			"events_bulk_delete":         "Xoá đã chọn",
			"event_form_title":           "Tiêu đề",
			"event_form_description":     "Mô tả",
			"event_form_image_url":       "URL hình ảnh",
			"event_form_upload":          "Tải ảnh lên",
			"event_form_upload_button":   "Tải lên",
			"event_form_save":            "Lưu banner",
			"tour_new":                   "Thêm tour",
			"tour_name":                  "Tên tour",
			"tour_type":                  "Loại tour",
			"tour_price":                 "Giá (VNĐ)",
			"tour_duration":              "Thời lượng",
			"tour_max_people":            "Số người tối đa",
			"tour_timeline":              "Lịch trình",
			"tour_content":               "Nội dung (Markdown)",
			"tour_gallery":               "Ảnh thư viện (mỗi dòng một URL)",
			"tour_cover":                 "Ảnh bìa",
			"tour_cover_hint":            "Bắt buộc khi thêm mới; để trống để giữ ảnh hiện tại.",
			"tour_save":                  "Lưu tour",
			"col_booking_customer":       "Khách hàng",
			"col_booking_tour":           "Tour",
			"col_booking_travel_date":    "Ngày đi",
			"col_booking_people":         "Số người",
			"col_booking_total":          "Tổng tiền",
			"col_booking_date":           "Ngày đặt",
			"booking_cancel":             "Huỷ đặt tour",
			"col_user_email":             "Email",
			"col_user_name":              "Họ tên",
			"col_user_phone":             "Số điện thoại",
			"col_user_role":              "Vai trò",
			"col_user_created":           "Ngày đăng ký",
			"ai_note_heading":            "AI Phân tích:",
			"ai_note_level":              "Mức độ",
			"ai_note_depth":              "Độ sâu",
			"ai_note_confidence":         "Tin cậy",
			"ai_note_details":            "Chi tiết",
			"ai_note_recommendations":    "Khuyến nghị",
			"ai_note_no_analysis":        "Không có phân tích",
			"ai_note_no_recommendations": "Không có khuyến nghị",
			"ai_note_truncated":          "...(đã rút gọn)",
			"time_unknown":               "Không rõ thời gian",
			"time_just_now":              "Vừa xong",
			"time_minutes_ago":           "%d phút trước",
			"time_hours_ago":             "%d giờ trước",
			"time_days_ago":              "%d ngày trước",
		},
		"en": {
			"app_title":           "CityDesk Admin",
			"workspace_signed_in": "Signed in as",
			"language_label":      "Language",
			"language_apply":      "Apply",
			"language_vi":         "Tiếng Việt",
			"language_en":         "English",
			"nav_dashboard":       "Dashboard",
			"nav_flood_reports":   "Flood reports",
			"nav_feedback":        "Feedback",
			"nav_events":          "Events",
			"nav_tours":           "Tours",
			"nav_bookings":        "Bookings",
			"nav_users":           "Users",
			"nav_logout":          "Logout",

			"page_title_login":         "Admin login",
			"page_title_dashboard":     "Dashboard",
			"page_title_flood_reports": "Flood reports",
			"page_title_feedback":      "Feedback",
			"page_title_review":        "Review",
			"page_title_confirm":       "Confirm",
			"page_title_events":        "Event banners",
			"page_title_event_new":     "New banner",
			"page_title_event_edit":    "Edit banner",
			"page_title_tours":         "Tours",
			"page_title_tour_new":      "New tour",
			"page_title_tour_edit":     "Edit tour",
			"page_title_bookings":      "Bookings",
			"page_title_users":         "Users",

			"login_title":                "Administrator login",
			"login_hint":                 "Only Admin accounts may sign in.",
			"login_email":                "Email",
			"login_password":             "Password",
			"login_button":               "Sign in",
			"error_invalid_credentials":  "Invalid email or password.",
			"error_login_failed":         "Login failed.",
			"error_admin_role_required":  "Access denied: admin role required.",
			"error_session_expired":      "Your session expired, please sign in again.",
			"error_load_failed":          "Failed to load data.",
			"error_review_failed":        "Update failed.",
			"error_update_failed":        "Saving changes failed.",
			"error_delete_failed":        "Delete failed.",
			"error_bulk_no_selection":    "Select at least one item.",
			"error_upload_failed":        "Image upload failed.",
			"error_save_failed":          "Save failed.",
			"error_not_found":            "Item not found.",
			"error_ai_failed":            "AI analysis failed: %s",
			"error_invalid_status":       "Invalid status.",
			"error_dashboard_degraded":   "Could not refresh the statistics; showing the last known values.",
			"error_export_failed":        "Export failed.",
			"error_review_closed":        "The review was closed, please open it again.",
			"notice_review_saved":        "Updated successfully!",
			"notice_item_updated":        "Changes saved.",
			"notice_item_deleted":        "Deleted.",
			"notice_bulk_deleted":        "%d items deleted.",
			"notice_event_created":       "Banner created.",
			"notice_event_updated":       "Banner updated.",
			"notice_image_uploaded":      "Image uploaded.",
			"notice_tour_created":        "Tour created.",
			"notice_tour_updated":        "Tour updated.",
			"notice_booking_updated":     "Booking updated.",
			"notice_booking_cancelled":   "Booking cancelled.",
			"notice_ai_applied":          "AI analysis done. Please check and confirm.",
			"notice_selection_cleared":   "Selection cleared.",
			"common_dash":                "-",
			"common_back":                "Back",
			"common_cancel":              "Cancel",
			"common_close":               "Close",
			"common_save":                "Save",
			"common_search":              "Search",
			"common_refresh":             "Refresh",
			"common_all":                 "All",
			"common_confirm":             "Confirm",
			"common_delete":              "Delete",
			"common_edit":                "Edit",
			"common_view":                "View",
			"common_loading":             "Loading...",
			"common_empty":               "Nothing here.",
			"common_prev":                "Previous",
			"common_next":                "Next",
			"common_page":                "Page",
			"common_select":              "Select",
			"common_select_all":          "Select all",
			"common_clear_selection":     "Clear selection",
			"common_selected":            "selected",
			"common_actions":             "Actions",
			"common_created":             "Created",
			"common_status":              "Status",
			"common_title":               "Title",
			"common_description":         "Description",
			"common_image":               "Image",
			"common_image_failed":        "Image could not be loaded",
			"common_image_unchecked":     "Image not checked",
			"common_submitter":           "Submitted by",
			"common_total":               "Total",
			"filter_status":              "Status",
			"placeholder_search":         "Search...",
			"status_Pending":             "Pending",
			"status_Approved":            "Approved",
			"status_Rejected":            "Rejected",
			"status_Processing":          "Processing",
			"status_Resolved":            "Resolved",
			"status_Confirmed":           "Confirmed",
			"status_Cancelled":           "Cancelled",
			"status_Completed":           "Completed",
			"status_Unknown":             "Unknown",
			"action_mark_Approved":       "Approve",
			"action_mark_Rejected":       "Reject",
			"action_mark_Processing":     "Process",
			"action_mark_Resolved":       "Resolve",
			"action_mark_Confirmed":      "Confirm",
			"action_mark_Cancelled":      "Cancel",
			"kind_flood_report":          "Flood report",
			"kind_feedback":              "Feedback",
			"kind_booking":               "Booking",
			"kind_user":                  "User",
			"kind_event_banner":          "Banner",
			"kind_tour":                  "Tour",
			"water_Low":                  "Low",
			"water_Medium":               "Medium",
			"water_High":                 "High",
			"water_Dangerous":            "Dangerous",
			"category_Infrastructure":    "Infrastructure",
			"category_Traffic":           "Traffic",
			"category_Environment":       "Environment",
			"category_Security":          "Security",
			"category_Other":             "Other",
			"col_address":                "Address",
			"col_water_level":            "Water level",
			"col_category":               "Category",
			"review_title_open":          "Move %s #%d to %s",
			"review_title_view":          "%s #%d details",
			"review_water_level":         "Water level",
			"review_choose_level":        "Choose a water level",
			"review_admin_note":          "Admin note",
			"review_admin_response":      "Admin response",
			"review_submit":              "Submit",
			"review_ai_title":            "AI image analysis",
			"review_ai_button":           "Analyze now",
			"review_ai_applied":          "The AI result was filled into the form.",
			"review_edit_button":         "Edit",
			"review_delete_button":       "Delete",
			"review_view_only":           "This item has already been reviewed.",
			"review_current_status":      "Current status",
			"review_proposed_status":     "New status",
			"review_no_address":          "No address information",
			"review_open_detail":         "Details",
			"confirm_review":             "Move %s #%d from \"%s\" to \"%s\"?",
			"confirm_edit":               "Save changes to %s #%d?",
			"confirm_delete":             "Delete %s #%d? This cannot be undone.",
			"confirm_bulk_delete":        "Delete %d selected banners? This cannot be undone.",
			"confirm_booking_status":     "Move booking #%d from \"%s\" to \"%s\"?",
			"confirm_booking_cancel":     "Cancel booking #%d?",
			"dashboard_users":            "Users",
			"dashboard_event_banners":    "Event banners",
			"dashboard_feedback":         "Feedback",
			"dashboard_flood_reports":    "Flood reports",
			"dashboard_bookings":         "Bookings",
			"dashboard_pending":          "pending",
			"dashboard_flood_status":     "Flood report status",
			"dashboard_feedback_status":  "Feedback status",
			"dashboard_booking_status":   "Booking status",
			"dashboard_activity":         "Recent activity",
			"dashboard_recent_banners":   "Latest banners",
			"dashboard_export_pdf":       "Export PDF",
			"dashboard_export_csv":       "Export CSV",
			"dashboard_generated":        "Updated",
			"dashboard_empty_activity":   "No activity yet.",
			"events_new":                 "New banner",
			"events_bulk_delete":         "Delete selected",
			"event_form_title":           "Title",
			"event_form_description":     "Description",
			"event_form_image_url":       "Image URL",
			"event_form_upload":          "Upload image",
			"event_form_upload_button":   "Upload",
			"event_form_save":            "Save banner",
			"tour_new":                   "New tour",
			"tour_name":                  "Tour name",
			"tour_type":                  "Tour type",
			"tour_price":                 "Price (VND)",
			"tour_duration":              "Duration",
			"tour_max_people":            "Max people",
			"tour_timeline":              "Timeline",
			"tour_content":               "Content (Markdown)",
			"tour_gallery":               "Gallery images (one URL per line)",
			"tour_cover":                 "Cover image",
			"tour_cover_hint":            "Required for a new tour; leave empty to keep the current one.",
			"tour_save":                  "Save tour",
			"col_booking_customer":       "Customer",
			"col_booking_tour":           "Tour",
			"col_booking_travel_date":    "Travel date",
			"col_booking_people":         "People",
			"col_booking_total":          "Total",
			"col_booking_date":           "Booked",
			"booking_cancel":             "Cancel booking",
			"col_user_email":             "Email",
			"col_user_name":              "Full name",
			"col_user_phone":             "Phone",
			"col_user_role":              "Role",
			"col_user_created":           "Joined",
			"ai_note_heading":            "AI analysis:",
			"ai_note_level":              "Level",
			"ai_note_depth":              "Depth",
			"ai_note_confidence":         "Confidence",
			"ai_note_details":            "Details",
			"ai_note_recommendations":    "Recommendations",
			"ai_note_no_analysis":        "No analysis",
			"ai_note_no_recommendations": "No recommendations",
			"ai_note_truncated":          "...(truncated)",
			"time_unknown":               "Unknown time",
			"time_just_now":              "Just now",
			"time_minutes_ago":           "%d minutes ago",
			"time_hours_ago":             "%d hours ago",
			"time_days_ago":              "%d days ago",
		},
	}

	adminTimeZoneOnce sync.Once
	adminTimeZone     *time.Location
)

type adminBaseViewData struct {
	Title         string
	Lang          string
	Text          map[string]string
	Session       *AdminSession
	CurrentPath   string
	ActiveNav     string
	ErrorMessage  string
	NoticeMessage string
}

type adminLoginViewData struct {
	adminBaseViewData
	Email string
	Next  string
}

type adminStatusActionView struct {
	Status string
	Label  string
	URL    string
}

type adminOptionView struct {
	Value    string
	Label    string
	Selected bool
}

type adminPaginationViewData struct {
	CurrentPage   int
	TotalPages    int
	TotalCount    int
	NextPage      int
	PrevPage      int
	HasNext       bool
	HasPrev       bool
	PageURL       string
	PageSeparator string
}

type adminColumnView struct {
	Label  string
	URL    string
	Active bool
	Desc   bool
}

// adminListChrome is shared by every list page.
type adminListChrome struct {
	BasePath    string
	Search      string
	Filter      string
	Filters     []adminOptionView
	Columns     map[string]adminColumnView
	Pagination  adminPaginationViewData
	State       string
	LoadError   string
	RefreshURL  string
	ShowSearch  bool
	ShowFilters bool
}

type adminActivityRowView struct {
	KindLabel   string
	Title       string
	StatusLabel string
	When        string
	URL         string
}

type adminHistogramRowView struct {
	Label   string
	Count   int
	Percent int
}

type adminBannerCardView struct {
	ID    int
	Title string
	Image imageState
}

type adminDashboardViewData struct {
	adminBaseViewData
	Counts         DashboardCounts
	FloodStatus    []adminHistogramRowView
	FeedbackStatus []adminHistogramRowView
	BookingStatus  []adminHistogramRowView
	Activity       []adminActivityRowView
	Banners        []adminBannerCardView
	GeneratedAt    string
	Degraded       bool
}

type adminReviewRowView struct {
	ID          int
	Title       string
	Subtitle    string
	Status      string
	StatusLabel string
	WaterLevel  string
	Submitter   string
	CreatedAt   string
	DetailURL   string
	ViewURL     string
	Actions     []adminStatusActionView
}

type adminReviewListViewData struct {
	adminListChrome
	adminBaseViewData
	Kind        ReviewKind
	KindLabel   string
	ShowLevel   bool
	SubtitleKey string
	Rows        []adminReviewRowView
}

type adminReviewDetailViewData struct {
	adminBaseViewData
	Kind         ReviewKind
	KindLabel    string
	Target       reviewTarget
	StatusLabel  string
	CategoryText string
	WaterText    string
	CreatedAt    string
	Image        imageState
	Actions      []adminStatusActionView
	ViewURL      string
	BackURL      string
}

type adminReviewDialogViewData struct {
	adminBaseViewData
	Kind          ReviewKind
	KindLabel     string
	Heading       string
	Target        reviewTarget
	StatusLabel   string
	ProposedLabel string
	Proposed      string
	Draft         ReviewDraft
	Editing       bool
	Edit          EditDraft
	FieldErrors   map[string]string
	LastError     string
	AIError       string
	AIApplied     bool
	ViewOnly      bool
	CanSubmit     bool
	CanEdit       bool
	CanAnalyze    bool
	NeedsLevel    bool
	WaterLevels   []adminOptionView
	Categories    []adminOptionView
	Image         imageState
	BasePath      string
	BackURL       string
}

type adminHiddenField struct {
	Name  string
	Value string
}

type adminConfirmViewData struct {
	adminBaseViewData
	Prompt       string
	Details      []string
	ActionURL    string
	CancelURL    string
	ConfirmLabel string
	Danger       bool
	Hidden       []adminHiddenField
}

type adminEventRowView struct {
	ID          int
	Title       string
	Description string
	Image       imageState
	CreatedAt   string
	Selected    bool
	EditURL     string
	DeleteURL   string
}

type adminEventsViewData struct {
	adminListChrome
	adminBaseViewData
	Rows          []adminEventRowView
	SelectedCount int
	ReturnURL     string
}

type adminEventFormViewData struct {
	adminBaseViewData
	ID          int
	BannerTitle string
	Description string
	ImageURL    string
	Image       imageState
	FieldErrors map[string]string
	ActionURL   string
	UploadURL   string
	BackURL     string
}

type adminTourRowView struct {
	ID        int
	Name      string
	TourType  string
	Price     string
	Duration  string
	MaxPeople int
	Cover     imageState
	DetailURL string
	EditURL   string
	DeleteURL string
}

type adminToursViewData struct {
	adminListChrome
	adminBaseViewData
	Rows []adminTourRowView
}

type adminTourFormViewData struct {
	adminBaseViewData
	ID          int
	Creating    bool
	NameTour    string
	Content     string
	Price       string
	TourType    string
	Duration    string
	MaxPeople   string
	Timeline    string
	Gallery     string
	Cover       imageState
	FieldErrors map[string]string
	ActionURL   string
	BackURL     string
}

type adminTourDetailViewData struct {
	adminBaseViewData
	Tour     adminTourRowView
	Timeline string
	Content  string
	Gallery  []imageState
	BackURL  string
}

type adminBookingRowView struct {
	ID          int
	Customer    string
	Email       string
	TourName    string
	TravelDate  string
	People      int
	Total       string
	Status      string
	StatusLabel string
	BookedAt    string
	Actions     []adminStatusActionView
	CancelURL   string
}

type adminBookingsViewData struct {
	adminListChrome
	adminBaseViewData
	Rows []adminBookingRowView
}

type adminUserRowView struct {
	ID        int
	Email     string
	FullName  string
	Phone     string
	Role      string
	CreatedAt string
}

type adminUsersViewData struct {
	adminListChrome
	adminBaseViewData
	Rows []adminUserRowView
}
