package livehub

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
)

// Filter вибирає події однієї таблиці з необов'язковою рівністю по одній колонці.
type Filter struct {
	Table  models.Table `json:"table"`
	Column string       `json:"column,omitempty"`
	Value  string       `json:"value,omitempty"`
}

func (f Filter) Matches(ev models.ChangeEvent) bool {
	if ev.Table != f.Table {
		return false
	}
	return f.Column == "" || ev.Column(f.Column) == f.Value
}

func (f Filter) String() string {
	if f.Column == "" {
		return string(f.Table)
	}
	return fmt.Sprintf("%s:%s=eq.%s", f.Table, f.Column, f.Value)
}

// ParseFilter checks the table and filter column of a subscription request.
func ParseFilter(table, column, value string) (Filter, error) {
	f := Filter{Table: models.Table(table), Column: column, Value: value}
	if !f.Table.Valid() {
		return Filter{}, apperr.InvalidField("table", "Unknown table")
	}
	switch column {
	case "":
		f.Value = ""
	case models.ColumnID, models.ColumnStudentID:
	case models.ColumnComplaintID, models.ColumnSenderID:
		if f.Table != models.TableMessages {
			return Filter{}, apperr.InvalidField("column", "Unknown filter column")
		}
	default:
		return Filter{}, apperr.InvalidField("column", "Unknown filter column")
	}
	if column != "" && value == "" {
		return Filter{}, apperr.InvalidField("value", "Filter value is required")
	}
	return f, nil
}

type ComplaintLookup interface {
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
}

// Authorize перевіряє, чи може принципал підписатися на фільтр.
// Адміністратори бачать усе; студенти лише рядки власних скарг.
func Authorize(ctx context.Context, p models.Principal, f Filter, complaints ComplaintLookup) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent:
	default:
		return apperr.Forbidden("not permitted")
	}

	switch {
	case f.Column == models.ColumnStudentID && f.Value == p.ID:
		return nil
	case f.Table == models.TableMessages && f.Column == models.ColumnComplaintID,
		f.Table == models.TableComplaints && f.Column == models.ColumnID:
		c, err := complaints.GetComplaintByID(ctx, f.Value)
		if err != nil {
			return apperr.Internal("Failed to authorize subscription", err)
		}
		if c != nil && c.OwnedBy(p.ID) {
			return nil
		}
	}
	return apperr.Forbidden("You cannot subscribe to this channel")
}
