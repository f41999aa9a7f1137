package enums

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDietician Role = "DIETICIAN"
	RolePatient   Role = "PATIENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDietician, RolePatient:
		return true
	}
	return false
}
