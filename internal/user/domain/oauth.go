package domain

// RemoteProfile is the subset of the identity provider's /v2/me payload we
// care about. It round-trips through the client as session_data while the
// user picks a username, so it carries JSON tags matching that contract.
type RemoteProfile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     string `json:"username"`
}
