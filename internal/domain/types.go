package domain

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the request comes from an admin account.
func (rc RequestContext) IsAdmin() bool {
	return rc.Role == "admin"
}
