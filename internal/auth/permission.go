package auth

import "stage-cue/internal/domain"

// Action is a role-gated operator action
type Action string

const (
	ActionEdit        Action = "edit"
	ActionReset       Action = "reset"
	ActionAddMessage  Action = "addMessage"
	ActionViewDevices Action = "viewDevices"
	ActionUpload      Action = "upload"
	ActionAdminPanel  Action = "adminPanel"
)

// Actions lists every gated action
var Actions = []Action{
	ActionEdit, ActionReset, ActionAddMessage, ActionViewDevices, ActionUpload, ActionAdminPanel,
}

// HasPermission reports whether role may perform action. Unknown actions are denied.
func HasPermission(role domain.Role, action Action) bool {
	switch action {
	case ActionAdminPanel:
		return role == domain.RoleAdmin
	case ActionEdit, ActionReset, ActionUpload, ActionAddMessage, ActionViewDevices:
		return true
	default:
		return false
	}
}

// NextRole is the role an admin toggle moves a user to
func NextRole(current domain.Role) domain.Role {
	switch current {
	case domain.RoleAdmin:
		return domain.RoleProgramDirector
	case domain.RoleProgramDirector:
		return domain.RoleUser
	default:
		return domain.RoleProgramDirector
	}
}
