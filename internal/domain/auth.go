package domain

// AuthState is the persisted session. IsAuthenticated is true exactly when
// User is set.
type AuthState struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// SignedIn builds the state for an authenticated user.
func SignedIn(user User) AuthState {
	return AuthState{User: &user, IsAuthenticated: true}
}

// SignedOut is the unauthenticated default.
func SignedOut() AuthState {
	return AuthState{}
}

// Normalize keeps IsAuthenticated consistent with User after a decode of
// hand-edited or partial data.
func (s AuthState) Normalize() AuthState {
	s.IsAuthenticated = s.User != nil
	return s
}
