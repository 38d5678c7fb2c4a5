package domain

// Screen is a tagged description of what should be rendered to one caller.
// Screens are produced on demand by the router and interpreted by the
// transport; they are never stored.
type Screen interface {
	screen()
}

type WelcomeScreen struct{}

// MenuScreen is the role-specific main menu.
type MenuScreen struct {
	Role Role
}

// RegistrationScreen is shown to unverified callers requesting content.
type RegistrationScreen struct{}

type CategoryScreen struct {
	Categories []Category
}

type InstrumentListScreen struct {
	Category    Category
	Instruments []Instrument
}

type DurationListScreen struct {
	Instrument Instrument
	Durations  []string
}

type ResultScreen struct {
	Signal Signal
}

type InstructionScreen struct{}

type SupportScreen struct{}

// StaleNavigationScreen replaces a crash when a duration pick arrives with no
// instrument selected; it routes the caller back to the category screen.
type StaleNavigationScreen struct {
	Categories []Category
}

type AccessDeniedScreen struct{}

// UnhandledScreen acknowledges tokens that match no route.
type UnhandledScreen struct{}

type AdminPanelScreen struct{}

type AdminUserRow struct {
	User UserRecord
	Role Role
}

type AdminUserListScreen struct {
	Users []AdminUserRow
}

type AdminSignalControlScreen struct {
	AutoSuggestions bool
}

type AdminCommandsScreen struct{}

type BroadcastPromptScreen struct{}

// BroadcastReportScreen summarizes a finished broadcast, including the ids
// that could not be reached.
type BroadcastReportScreen struct {
	Sent   int
	Failed []int64
}

// VerificationAckScreen acknowledges a submitted reference.
type VerificationAckScreen struct {
	State VerificationState
}

func (WelcomeScreen) screen()            {}
func (MenuScreen) screen()               {}
func (RegistrationScreen) screen()       {}
func (CategoryScreen) screen()           {}
func (InstrumentListScreen) screen()     {}
func (DurationListScreen) screen()       {}
func (ResultScreen) screen()             {}
func (InstructionScreen) screen()        {}
func (SupportScreen) screen()            {}
func (StaleNavigationScreen) screen()    {}
func (AccessDeniedScreen) screen()       {}
func (UnhandledScreen) screen()          {}
func (AdminPanelScreen) screen()         {}
func (AdminUserListScreen) screen()      {}
func (AdminSignalControlScreen) screen() {}
func (AdminCommandsScreen) screen()      {}
func (BroadcastPromptScreen) screen()    {}
func (BroadcastReportScreen) screen()    {}
func (VerificationAckScreen) screen()    {}
