package domain

// Session is the authentication context a caller passes into the
// reconciliation engine. It is a plain value, never ambient state: delete
// policy and push behavior branch on it explicitly.
type Session struct {
	UserID   string
	SignedIn bool
}

// Anonymous is the signed-out session: mutations stay local-only and
// deletes are hard removes.
func Anonymous() Session {
	return Session{}
}

// SignedIn builds an authenticated session for the given identity
func SignedIn(userID string) Session {
	return Session{UserID: userID, SignedIn: true}
}
