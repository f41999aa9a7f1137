package enums

// Action codes assigned to roles by the backend. The list a user actually
// holds comes back on /auth/me; these constants only name the ones the
// client itself gates on.
const (
	ActionViewPatient            = "VIEW_PATIENT"
	ActionCreatePatient          = "CREATE_PATIENT"
	ActionUpdatePatient          = "UPDATE_PATIENT"
	ActionDeletePatient          = "DELETE_PATIENT"
	ActionActivatePatient        = "ACTIVATE_PATIENT"
	ActionDeactivatePatient      = "DEACTIVATE_PATIENT"
	ActionResetPatientPassword   = "RESET_PATIENT_PASSWORD"
	ActionViewDietician          = "VIEW_DIETICIAN"
	ActionCreateDietician        = "CREATE_DIETICIAN"
	ActionUpdateDietician        = "UPDATE_DIETICIAN"
	ActionDeleteDietician        = "DELETE_DIETICIAN"
	ActionActivateDietician      = "ACTIVATE_DIETICIAN"
	ActionDeactivateDietician    = "DEACTIVATE_DIETICIAN"
	ActionResetDieticianPassword = "RESET_DIETICIAN_PASSWORD"
	ActionManageRoles            = "MANAGE_ROLES"
)
