package mapper

import (
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
)

const dateLayout = "2006-01-02"

// Deadline is the HTTP representation of a cutoff row.
type Deadline struct {
	ID       int64     `json:"id"`
	Date     string    `json:"date"`
	Cutoff   time.Time `json:"cutoff"`
	OfficeID *int64    `json:"officeId,omitempty"`
	CafeID   *int64    `json:"cafeId,omitempty"`
	Active   bool      `json:"active"`
}

// CreateRequest schedules a cutoff for a date. Cutoff is RFC 3339.
type CreateRequest struct {
	Date     string    `json:"date" binding:"required"`
	Cutoff   time.Time `json:"cutoff" binding:"required"`
	OfficeID *int64    `json:"officeId"`
	CafeID   *int64    `json:"cafeId"`
}

// UpdateRequest changes the cutoff or toggles the row; omitted fields stay as they are.
type UpdateRequest struct {
	Cutoff *time.Time `json:"cutoff"`
	Active *bool      `json:"active"`
}

// Window answers whether a date is still open.
type Window struct {
	Date      string     `json:"date"`
	CanOrder  bool       `json:"canOrder"`
	CanCancel bool       `json:"canCancel"`
	Cutoff    *time.Time `json:"cutoff,omitempty"`
}

func FromDomainDeadline(d *domain.Deadline) Deadline {
	if d == nil {
		return Deadline{}
	}
	return Deadline{
		ID:       d.ID,
		Date:     d.Date.Format(dateLayout),
		Cutoff:   d.Cutoff,
		OfficeID: d.OfficeID,
		CafeID:   d.CafeID,
		Active:   d.Active,
	}
}

func FromDomainDeadlines(list []*domain.Deadline) []Deadline {
	result := make([]Deadline, 0, len(list))
	for _, d := range list {
		result = append(result, FromDomainDeadline(d))
	}
	return result
}

func ToScope(officeID, cafeID *int64) domain.Scope {
	return domain.Scope{OfficeID: officeID, CafeID: cafeID}
}
