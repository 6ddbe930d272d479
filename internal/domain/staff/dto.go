// internal/domain/staff/dto.go
package staff

import "time"

// StaffView is a roster entry as served to clients.
type StaffView struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone,omitempty"`
	Specialties      []string         `json:"specialties"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	JoinedAt         time.Time        `json:"joined_at"`
}

// NewStaffView projects a staff record for API responses.
func NewStaffView(s *StaffRecord) StaffView {
	return StaffView{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.Email,
		Phone:            s.Phone,
		Specialties:      []string(s.Specialties),
		EmploymentStatus: s.EmploymentStatus,
		JoinedAt:         s.JoinedAt,
	}
}
