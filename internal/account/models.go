package account

// Roles recognized by the system.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleUser  = "user"
)

// Account statuses. Rejection deletes the record outright, so there is no
// rejected terminal state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// EntityType is the store namespace for user records.
const EntityType = "user"

// User is the typed view of a user field map. The password hash never leaves
// the service layer.
type User struct {
	Username         string            `json:"username"`
	Role             string            `json:"role"`
	Status           string            `json:"status"`
	LoggedIn         bool              `json:"loggedIn"`
	IsAssigned       bool              `json:"isAssigned"`
	LastDevice       string            `json:"lastDevice,omitempty"`
	AssignedResident map[string]string `json:"assignedResident,omitempty"`
}

// Staff is a staff member's profile. The profile is linked to the user
// account bearing Username; deleting the profile removes the account too.
type Staff struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	CreatedAt string `json:"createdAt"`
}

// PendingUser is the projection returned by the pending-approval listing.
type PendingUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResult carries the issued credential plus the claims the frontend
// needs immediately.
type LoginResult struct {
	Token            string            `json:"token"`
	Role             string            `json:"role"`
	AssignedResident map[string]string `json:"assignedResident,omitempty"`
}
