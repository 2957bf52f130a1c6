package models

// Session 代表目前訪客的登入狀態
type Session struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	UserName   string `json:"user_name"`
}

// NavState is the slice of cart and session state shown in the navigation bar.
type NavState struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	UserName   string `json:"user_name"`
	CartCount  int64  `json:"cart_count"`
}
