// Package session holds the login state of one visitor.
package session

import "goflare.io/storefront/models"

// State owns the logged-in flag and display name of a visitor.
// Both fields only ever change together.
//
// State is not safe for concurrent use; callers serialise access per visitor.
type State struct {
	isLoggedIn bool
	userName   string
}

// NewState returns a logged-out State.
func NewState() *State {
	return &State{}
}

// Login marks the visitor as authenticated under name. Credentials are checked by the caller.
func (s *State) Login(name string) {
	s.isLoggedIn, s.userName = true, name
}

// Logout resets the visitor to anonymous.
func (s *State) Logout() {
	s.isLoggedIn, s.userName = false, ""
}

// State returns a copy of the current session record.
func (s *State) State() models.Session {
	return models.Session{IsLoggedIn: s.isLoggedIn, UserName: s.userName}
}
