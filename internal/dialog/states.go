package dialog

// State is a step of the per-user conversation. The set is closed: every
// value is listed in allStates and has a prompt.
type State string

const (
	Terminal State = "terminal"

	AwaitingGender       State = "awaiting_gender"
	AwaitingName         State = "awaiting_name"
	AwaitingAge          State = "awaiting_age"
	AwaitingCourse       State = "awaiting_course"
	AwaitingBio          State = "awaiting_bio"
	AwaitingPhoto        State = "awaiting_photo"
	AwaitingConfirmation State = "awaiting_confirmation"

	MainMenu     State = "main_menu"
	Browsing     State = "browsing"
	SettingsMenu State = "settings_menu"
	EditMenu     State = "edit_menu"

	EditingGender State = "editing_gender"
	EditingName   State = "editing_name"
	EditingAge    State = "editing_age"
	EditingCourse State = "editing_course"
	EditingBio    State = "editing_bio"
	EditingPhoto  State = "editing_photo"

	AdminPanel              State = "admin_panel"
	BanManagement           State = "ban_management"
	AdminMaintenanceMessage State = "admin_maintenance_message"
	BanAwaitingTarget       State = "ban_awaiting_target"
	UnbanAwaitingTarget     State = "unban_awaiting_target"
)

var allStates = []State{
	Terminal,
	AwaitingGender, AwaitingName, AwaitingAge, AwaitingCourse, AwaitingBio, AwaitingPhoto, AwaitingConfirmation,
	MainMenu, Browsing, SettingsMenu, EditMenu,
	EditingGender, EditingName, EditingAge, EditingCourse, EditingBio, EditingPhoto,
	AdminPanel, BanManagement, AdminMaintenanceMessage, BanAwaitingTarget, UnbanAwaitingTarget,
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	for _, known := range allStates {
		if s == known {
			return true
		}
	}
	return false
}

func (s State) adminOnly() bool {
	switch s {
	case AdminPanel, BanManagement, AdminMaintenanceMessage, BanAwaitingTarget, UnbanAwaitingTarget:
		return true
	}
	return false
}
