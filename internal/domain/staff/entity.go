// internal/domain/staff/entity.go
package staff

import (
	"time"

	"github.com/lib/pq"
)

type EmploymentStatus string

const (
	StatusActive        EmploymentStatus = "active"
	StatusPendingReview EmploymentStatus = "pending_review"
	StatusRemoved       EmploymentStatus = "removed"
)

// StaffRecord is one employed therapist or staff member of a spa.
type StaffRecord struct {
	ID               int64            `json:"id" db:"id"`
	SpaID            int64            `json:"spa_id" db:"spa_id"`
	Name             string           `json:"name" db:"name"`
	Email            string           `json:"email" db:"email"`
	Phone            string           `json:"phone,omitempty" db:"phone"`
	Specialties      pq.StringArray   `json:"specialties" db:"specialties"`
	EmploymentStatus EmploymentStatus `json:"employment_status" db:"employment_status"`
	JoinedAt         time.Time        `json:"joined_at" db:"joined_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// Employed reports whether the record still counts against the spa's roster.
func (s *StaffRecord) Employed() bool {
	return s.EmploymentStatus != StatusRemoved
}
