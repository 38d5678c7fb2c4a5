package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/router"

	tele "gopkg.in/telebot.v3"
)

// Renderer turns screens into Telegram message text plus an inline keyboard.
// Every button's callback data is an action token, so pressing it feeds the
// router again.
type Renderer struct {
	RegisterLink    string
	PromoCode       string
	SupportUsername string
}

func NewRenderer(registerLink, promoCode, supportUsername string) *Renderer {
	return &Renderer{
		RegisterLink:    registerLink,
		PromoCode:       promoCode,
		SupportUsername: supportUsername,
	}
}

func (r *Renderer) Render(screen domain.Screen) (string, *tele.ReplyMarkup) {
	switch s := screen.(type) {
	case domain.WelcomeScreen:
		return "Welcome to Pocket Signal Pro.\n\nTap the button below to open the menu.",
			keyboard(row(menuButton("Open menu")))

	case domain.MenuScreen:
		return r.renderMenu(s)

	case domain.RegistrationScreen:
		text := fmt.Sprintf(
			"Access to signals is for registered traders only.\n\n"+
				"1. Register a new account: %s\n"+
				"2. Use promo code %s during signup.\n"+
				"3. Send me your account ID as a message.\n\n"+
				"Support will confirm your account shortly after.",
			r.RegisterLink, r.PromoCode,
		)
		return text, keyboard(
			row(urlButton("Register", r.RegisterLink)),
			row(menuButton("Back to menu")),
		)

	case domain.CategoryScreen:
		return "Choose a market:", categoryKeyboard(s.Categories)

	case domain.InstrumentListScreen:
		rows := make([][]tele.InlineButton, 0, len(s.Instruments)+1)
		for _, inst := range s.Instruments {
			rows = append(rows, row(dataButton(inst.ID, router.InstrumentAction{InstrumentID: inst.ID})))
		}
		rows = append(rows, row(dataButton("Back", router.GetSignalAction{})))
		return fmt.Sprintf("Pairs in %s:", s.Category), keyboard(rows...)

	case domain.DurationListScreen:
		rows := make([][]tele.InlineButton, 0, len(s.Durations)+1)
		for _, label := range s.Durations {
			rows = append(rows, row(dataButton(label, router.DurationAction{Label: label})))
		}
		// Back returns to the instrument list of the pair's own market, so
		// stale keyboards cannot strand the caller.
		rows = append(rows, row(dataButton("Back", router.CategoryAction{Category: s.Instrument.Category})))
		return fmt.Sprintf("Choose expiry time for %s:", s.Instrument.ID), keyboard(rows...)

	case domain.ResultScreen:
		return formatSignal(s.Signal), keyboard(
			row(dataButton("New signal", router.GetSignalAction{})),
			row(menuButton("Menu")),
		)

	case domain.InstructionScreen:
		text := fmt.Sprintf(
			"How to trade with the signals:\n\n"+
				"1. Register at %s and top up your balance.\n"+
				"2. Press Get signal and pick a market, pair and expiry.\n"+
				"3. Open a trade in the shown direction for the chosen expiry.\n"+
				"4. If a trade loses, double the next amount to recover.",
			r.RegisterLink,
		)
		return text, keyboard(row(menuButton("Back to menu")))

	case domain.SupportScreen:
		return fmt.Sprintf("Questions? Write to support: @%s", r.SupportUsername),
			keyboard(row(menuButton("Back to menu")))

	case domain.StaleNavigationScreen:
		return "That menu has expired. Pick a market again:", categoryKeyboard(s.Categories)

	case domain.AccessDeniedScreen:
		return "This section is for administrators only.",
			keyboard(row(menuButton("Back to menu")))

	case domain.UnhandledScreen:
		return "That button is no longer active. Use /start to begin again.",
			keyboard(row(menuButton("Open menu")))

	case domain.AdminPanelScreen:
		return "Admin panel", keyboard(
			row(dataButton("Users", router.AdminUsersAction{})),
			row(dataButton("Signal control", router.AdminSignalControlAction{})),
			row(dataButton("Broadcast", router.BroadcastPromptAction{})),
			row(dataButton("Commands", router.AdminCommandsAction{})),
			row(menuButton("Back to menu")),
		)

	case domain.AdminUserListScreen:
		return renderUserList(s)

	case domain.AdminSignalControlScreen:
		state := "OFF"
		toggle := dataButton("Enable auto suggestions", router.AdminToggleAction{Enable: true})
		if s.AutoSuggestions {
			state = "ON"
			toggle = dataButton("Disable auto suggestions", router.AdminToggleAction{Enable: false})
		}
		return fmt.Sprintf("Automatic signal suggestions: %s", state), keyboard(
			row(toggle),
			row(dataButton("Back", router.AdminPanelAction{})),
		)

	case domain.AdminCommandsScreen:
		return "Available commands:\n" +
				"/start - open the welcome screen\n" +
				"/admin - open this panel\n\n" +
				"Panel actions: user review, signal control, broadcast.",
			keyboard(row(dataButton("Back", router.AdminPanelAction{})))

	case domain.BroadcastPromptScreen:
		return "Send the broadcast text as your next message.",
			keyboard(row(dataButton("Cancel", router.AdminPanelAction{})))

	case domain.BroadcastReportScreen:
		text := fmt.Sprintf("Broadcast delivered to %d users.", s.Sent)
		if len(s.Failed) > 0 {
			ids := make([]string, len(s.Failed))
			for i, id := range s.Failed {
				ids[i] = strconv.FormatInt(id, 10)
			}
			text += fmt.Sprintf("\nUnreachable: %s", strings.Join(ids, ", "))
		}
		return text, keyboard(row(dataButton("Back", router.AdminPanelAction{})))

	case domain.VerificationAckScreen:
		if s.State == domain.StateVerified {
			return "You are verified. Welcome aboard!",
				keyboard(row(menuButton("Open menu")))
		}
		return "Thanks! Your details were forwarded to support.\n" +
				"You will be notified as soon as your account is confirmed.",
			keyboard(row(menuButton("Back to menu")))
	}

	return "Use /start to begin.", keyboard(row(menuButton("Open menu")))
}

func (r *Renderer) renderMenu(s domain.MenuScreen) (string, *tele.ReplyMarkup) {
	rows := [][]tele.InlineButton{
		row(dataButton("Get signal", router.GetSignalAction{})),
		row(dataButton("Instruction", router.InstructionAction{})),
		row(dataButton("Support", router.SupportAction{})),
	}
	if s.Role == domain.RoleAdmin {
		rows = append(rows, row(dataButton("Admin panel", router.AdminPanelAction{})))
	}

	text := "Main menu"
	if s.Role == domain.RoleUnverified {
		text = "Main menu\n\nYour account is not confirmed yet. " +
			"Press Get signal to see the registration steps."
	}
	return text, keyboard(rows...)
}

func renderUserList(s domain.AdminUserListScreen) (string, *tele.ReplyMarkup) {
	if len(s.Users) == 0 {
		return "No users yet.", keyboard(row(dataButton("Back", router.AdminPanelAction{})))
	}

	lines := make([]string, 0, len(s.Users)+1)
	lines = append(lines, fmt.Sprintf("Users (%d):", len(s.Users)))
	var rows [][]tele.InlineButton
	for _, u := range s.Users {
		name := u.User.DisplayName
		if name == "" {
			name = "unknown"
		}
		lines = append(lines, fmt.Sprintf("%d  %s  %s  %s", u.User.ID, name, u.User.State, u.Role))
		if u.User.State == domain.StatePending {
			rows = append(rows, row(dataButton(
				fmt.Sprintf("Verify %d", u.User.ID),
				router.AdminVerifyAction{TargetID: u.User.ID},
			)))
		}
	}
	rows = append(rows, row(dataButton("Back", router.AdminPanelAction{})))
	return strings.Join(lines, "\n"), keyboard(rows...)
}

func formatSignal(s domain.Signal) string {
	return fmt.Sprintf(
		"Signal for %s\n\nDirection: %s\nExpiry: %s\nConfidence: %.1f%%\nTime: %s",
		s.Instrument,
		strings.ToUpper(string(s.Direction)),
		s.Duration,
		s.Confidence,
		s.Timestamp.UTC().Format(time.RFC822),
	)
}

func categoryKeyboard(categories []domain.Category) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, len(categories)+1)
	for _, cat := range categories {
		rows = append(rows, row(dataButton(string(cat), router.CategoryAction{Category: cat})))
	}
	rows = append(rows, row(menuButton("Back to menu")))
	return keyboard(rows...)
}

func menuButton(text string) tele.InlineButton {
	return dataButton(text, router.OpenMenuAction{})
}

func dataButton(text string, action router.Action) tele.InlineButton {
	return tele.InlineButton{Text: text, Data: router.EncodeAction(action)}
}

func urlButton(text, url string) tele.InlineButton {
	return tele.InlineButton{Text: text, URL: url}
}

func row(buttons ...tele.InlineButton) []tele.InlineButton {
	return buttons
}

func keyboard(rows ...[]tele.InlineButton) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
