package tui

import (
	"bytes"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	gossh "golang.org/x/crypto/ssh"
)

// SSHConfig holds the listener settings for the admin terminal.
type SSHConfig struct {
	Bind               string
	Port               int
	HostKeyPath        string
	AuthorizedKeysPath string
}

// NewSSHServer builds a wish server that drops each authenticated session
// into the admin TUI. When no authorized_keys file is configured every key
// is accepted, which is only suitable for local development.
func NewSSHServer(cfg SSHConfig, base Services) (*ssh.Server, error) {
	authorized, err := loadAuthorizedKeys(cfg.AuthorizedKeysPath)
	if err != nil {
		return nil, fmt.Errorf("load authorized keys: %w", err)
	}
	if len(authorized) == 0 {
		log.Println("SSH admin terminal accepts any public key; set SSH_AUTHORIZED_KEYS to restrict access")
	}

	teaHandler := func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		svc := base
		svc.Username = s.User()

		m := NewAppModel(svc)
		pty, _, _ := s.Pty()
		if pty.Window.Width > 0 {
			m.SetSize(pty.Window.Width, pty.Window.Height)
		}
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}

	return wish.NewServer(
		wish.WithAddress(net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port))),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPublicKeyAuth(func(_ ssh.Context, key ssh.PublicKey) bool {
			if len(authorized) == 0 {
				return true
			}
			for _, ak := range authorized {
				if keysEqual(key, ak) {
					return true
				}
			}
			return false
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
}

func loadAuthorizedKeys(path string) ([]gossh.PublicKey, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []gossh.PublicKey
	for len(raw) > 0 {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			break
		}
		key, _, _, rest, err := gossh.ParseAuthorizedKey(trimmed)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		raw = rest
	}
	return keys, nil
}

func keysEqual(a ssh.PublicKey, b gossh.PublicKey) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type() == b.Type() && bytes.Equal(a.Marshal(), b.Marshal())
}
