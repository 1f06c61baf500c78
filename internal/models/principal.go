package models

// Principal is the authenticated caller of a service operation.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name"`
}

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// CanAccess reports whether the principal participates in the complaint:
// its owning student or any admin.
func (p Principal) CanAccess(c *Complaint) bool {
	if c == nil {
		return false
	}
	return p.IsAdmin() || (p.IsStudent() && c.StudentID == p.ID)
}
