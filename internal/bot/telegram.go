package bot

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/router"

	tele "gopkg.in/telebot.v3"
)

// Advisor answers free-form questions from verified users.
type Advisor interface {
	Ask(ctx context.Context, chatID int64, message string) (string, error)
}

type ChartRenderer interface {
	RenderSignal(signal domain.Signal) ([]byte, error)
}

// StartTelegramBot wires the Telegram long poller to the router. It returns
// the bot handle, or nil when no token is configured.
func StartTelegramBot(rt *router.Router, renderer *Renderer, charts ChartRenderer, advisor Advisor, dispatcher *Dispatcher) *tele.Bot {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	dispatcher.Bind(b)

	b.Handle("/start", func(c tele.Context) error {
		return dispatchToken(c, rt, renderer, charts, "start")
	})

	b.Handle("/admin", func(c tele.Context) error {
		return dispatchToken(c, rt, renderer, charts, "admin")
	})

	b.Handle(tele.OnCallback, func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		// telebot prefixes raw callback data with \f.
		data := strings.TrimPrefix(cb.Data, "\f")
		if err := c.Respond(); err != nil {
			log.Printf("callback ack for chat %d failed: %v", c.Chat().ID, err)
		}
		return dispatchToken(c, rt, renderer, charts, data)
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())
		if text == "" {
			return nil
		}
		instr := rt.Handle(context.Background(), router.Event{
			ChatID:      c.Chat().ID,
			DisplayName: displayName(c),
			Kind:        router.KindText,
			Payload:     text,
		})
		if instr.Screen != nil {
			return deliver(c, renderer, charts, instr.Screen)
		}
		if advisor == nil {
			return nil
		}
		return handleAdvisorQuery(c, advisor, text)
	})

	log.Println("Telegram bot started")
	go b.Start()
	return b
}

func dispatchToken(c tele.Context, rt *router.Router, renderer *Renderer, charts ChartRenderer, token string) error {
	instr := rt.Handle(context.Background(), router.Event{
		ChatID:      c.Chat().ID,
		DisplayName: displayName(c),
		Kind:        router.KindToken,
		Payload:     token,
	})
	if instr.Screen == nil {
		return nil
	}
	return deliver(c, renderer, charts, instr.Screen)
}

func deliver(c tele.Context, renderer *Renderer, charts ChartRenderer, screen domain.Screen) error {
	text, markup := renderer.Render(screen)

	if result, ok := screen.(domain.ResultScreen); ok && charts != nil {
		if image, err := charts.RenderSignal(result.Signal); err == nil && len(image) > 0 {
			photo := &tele.Photo{
				File:    tele.FromReader(bytes.NewReader(image)),
				Caption: text,
			}
			return c.Send(photo, markup)
		}
	}
	return c.Send(text, markup)
}

func handleAdvisorQuery(c tele.Context, adv Advisor, question string) error {
	_ = c.Notify(tele.Typing)

	reply, err := adv.Ask(context.Background(), c.Chat().ID, question)
	if err != nil {
		log.Printf("advisor error for chat %d: %v", c.Chat().ID, err)
		return c.Send("Sorry, I'm having trouble right now. Please try again in a minute.")
	}

	if len(reply) > 4000 {
		reply = reply[:4000] + "\n\n[truncated]"
	}
	return c.Send(reply)
}

func displayName(c tele.Context) string {
	sender := c.Sender()
	if sender == nil {
		return ""
	}
	if sender.Username != "" {
		return sender.Username
	}
	return strings.TrimSpace(sender.FirstName + " " + sender.LastName)
}
