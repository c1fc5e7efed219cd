package certificate

// EntityType is the store namespace for certificate records.
const EntityType = "certificate"

// Certificate request statuses. Admin may set any of the four directly;
// only Completed is terminal and revokes ownership-index membership.
const (
	StatusPending        = "Pending"
	StatusProcessing     = "Processing"
	StatusReadyForPickup = "Ready for pick-up"
	StatusCompleted      = "Completed"
)

var validStatuses = map[string]bool{
	StatusPending:        true,
	StatusProcessing:     true,
	StatusReadyForPickup: true,
	StatusCompleted:      true,
}

var validTypes = map[string]bool{
	"barangayClearance":           true,
	"barangayIndigency":           true,
	"barangayResidency":           true,
	"barangayGoodMoral":           true,
	"barangayGuardianship":        true,
	"barangaySoloParent":          true,
	"barangayFinancialAssistance": true,
	"barangayDeath":               true,
}

// Certificate is the typed view of a certificate field map. Optional detail
// fields are always present in storage, as empty strings when unused.
type Certificate struct {
	CertificateID   string `json:"certificateId"`
	Username        string `json:"username"`
	CertificateType string `json:"certificateType"`
	ChildName       string `json:"childName"`
	Relationship    string `json:"relationship"`
	FatherOrMother  string `json:"fatherOrMother"`
	DeadName        string `json:"deadName"`
	DeadAge         string `json:"deadAge"`
	Status          string `json:"status"`
}

// PendingCertificate is the admin listing row: the certificate plus a
// human-readable details line and the requester's role.
type PendingCertificate struct {
	Certificate
	Details  string `json:"details"`
	UserRole string `json:"userRole"`
}

// Request carries the caller-supplied fields for submit and update.
type Request struct {
	CertificateType string `json:"certificateType"`
	ChildName       string `json:"childName"`
	Relationship    string `json:"relationship"`
	FatherOrMother  string `json:"fatherOrMother"`
	DeadName        string `json:"deadName"`
	DeadAge         string `json:"deadAge"`
}
