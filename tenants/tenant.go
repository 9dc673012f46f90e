package tenants

import "time"

// Status is the tenant lifecycle state. Deletion is modelled as an explicit
// status transition with a recorded instant rather than a boolean flag.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

type Tenant struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}
