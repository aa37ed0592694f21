package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	EmployeeID string `json:"employee_id"`
	Role       Role   `json:"role"`
}
