package router

import (
	"strconv"
	"strings"

	"pocket-signal-pro/internal/domain"
)

// Action is the decoded form of an inbound token. Tokens are untrusted
// strings off the wire; they are decoded exactly once, here, so the route
// switch in the router can be exhaustive over a closed set of types.
type Action interface {
	action()
}

type StartAction struct{}

type OpenMenuAction struct{}

type GetSignalAction struct{}

type CategoryAction struct {
	Category domain.Category
}

type InstrumentAction struct {
	InstrumentID string
}

type DurationAction struct {
	Label string
}

type InstructionAction struct{}

type SupportAction struct{}

type AdminPanelAction struct{}

type AdminUsersAction struct{}

type AdminVerifyAction struct {
	TargetID int64
}

type AdminSignalControlAction struct{}

type AdminToggleAction struct {
	Enable bool
}

type AdminCommandsAction struct{}

type BroadcastPromptAction struct{}

// UnknownAction carries any token that matched no route.
type UnknownAction struct {
	Raw string
}

func (StartAction) action()              {}
func (OpenMenuAction) action()           {}
func (GetSignalAction) action()          {}
func (CategoryAction) action()           {}
func (InstrumentAction) action()         {}
func (DurationAction) action()           {}
func (InstructionAction) action()        {}
func (SupportAction) action()            {}
func (AdminPanelAction) action()         {}
func (AdminUsersAction) action()         {}
func (AdminVerifyAction) action()        {}
func (AdminSignalControlAction) action() {}
func (AdminToggleAction) action()        {}
func (AdminCommandsAction) action()      {}
func (BroadcastPromptAction) action()    {}
func (UnknownAction) action()            {}

// Token wire names. Buttons carry these as callback data; EncodeAction and
// DecodeToken are the only places that know the flat string shape.
const (
	tokenStart         = "start"
	tokenMenu          = "menu"
	tokenSignal        = "signal"
	tokenCategory      = "category"
	tokenInstrument    = "instrument"
	tokenDuration      = "duration"
	tokenInstruction   = "instruction"
	tokenSupport       = "support"
	tokenAdmin         = "admin"
	tokenAdminUsers    = "admin:users"
	tokenAdminVerify   = "admin:verify"
	tokenAdminSignals  = "admin:signals"
	tokenAdminToggle   = "admin:toggle"
	tokenAdminCommands = "admin:commands"
	tokenBroadcast     = "admin:broadcast"
)

// DecodeToken turns a raw token into a tagged Action. Matching is by exact
// route name after splitting off the embedded parameter; anything else comes
// back as UnknownAction, never an error.
func DecodeToken(raw string) Action {
	token := strings.TrimSpace(raw)

	switch token {
	case tokenStart:
		return StartAction{}
	case tokenMenu:
		return OpenMenuAction{}
	case tokenSignal:
		return GetSignalAction{}
	case tokenInstruction:
		return InstructionAction{}
	case tokenSupport:
		return SupportAction{}
	case tokenAdmin:
		return AdminPanelAction{}
	case tokenAdminUsers:
		return AdminUsersAction{}
	case tokenAdminSignals:
		return AdminSignalControlAction{}
	case tokenAdminCommands:
		return AdminCommandsAction{}
	case tokenBroadcast:
		return BroadcastPromptAction{}
	}

	if param, ok := strings.CutPrefix(token, tokenCategory+":"); ok && param != "" {
		return CategoryAction{Category: domain.Category(param)}
	}
	if param, ok := strings.CutPrefix(token, tokenInstrument+":"); ok && param != "" {
		return InstrumentAction{InstrumentID: param}
	}
	if param, ok := strings.CutPrefix(token, tokenDuration+":"); ok && param != "" {
		return DurationAction{Label: param}
	}
	if param, ok := strings.CutPrefix(token, tokenAdminVerify+":"); ok {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil || id <= 0 {
			return UnknownAction{Raw: token}
		}
		return AdminVerifyAction{TargetID: id}
	}
	if param, ok := strings.CutPrefix(token, tokenAdminToggle+":"); ok {
		switch param {
		case "on":
			return AdminToggleAction{Enable: true}
		case "off":
			return AdminToggleAction{Enable: false}
		}
		return UnknownAction{Raw: token}
	}

	return UnknownAction{Raw: token}
}

// EncodeAction is the inverse of DecodeToken for the actions that buttons
// emit.
func EncodeAction(a Action) string {
	switch act := a.(type) {
	case StartAction:
		return tokenStart
	case OpenMenuAction:
		return tokenMenu
	case GetSignalAction:
		return tokenSignal
	case CategoryAction:
		return tokenCategory + ":" + string(act.Category)
	case InstrumentAction:
		return tokenInstrument + ":" + act.InstrumentID
	case DurationAction:
		return tokenDuration + ":" + act.Label
	case InstructionAction:
		return tokenInstruction
	case SupportAction:
		return tokenSupport
	case AdminPanelAction:
		return tokenAdmin
	case AdminUsersAction:
		return tokenAdminUsers
	case AdminVerifyAction:
		return tokenAdminVerify + ":" + strconv.FormatInt(act.TargetID, 10)
	case AdminSignalControlAction:
		return tokenAdminSignals
	case AdminToggleAction:
		if act.Enable {
			return tokenAdminToggle + ":on"
		}
		return tokenAdminToggle + ":off"
	case AdminCommandsAction:
		return tokenAdminCommands
	case BroadcastPromptAction:
		return tokenBroadcast
	case UnknownAction:
		return act.Raw
	}
	return ""
}
