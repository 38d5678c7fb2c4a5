package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	AdminChatIDs    []int64
	VerifyPolicy    string
	RegisterLink    string
	PromoCode       string
	SupportUsername string

	MinConfidence  float64
	MaxConfidence  float64
	SessionTTLSecs int

	HTTPEnabled  bool
	HTTPBind     string
	HTTPPort     int
	APIAuthToken string

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	OpenAIAPIKey string
	OpenAIModel  string

	SSHEnabled        bool
	SSHBind           string
	SSHPort           int
	SSHHostKeyPath    string
	SSHAuthorizedKeys string

	SuggestionPollSecs int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIAuthToken:     os.Getenv("API_AUTH_TOKEN"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, users will not survive restarts")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, selection state stays in memory")
	}

	cfg.AdminChatIDs = ParseAdminIDs(os.Getenv("ADMIN_CHAT_IDS"))
	if len(cfg.AdminChatIDs) == 0 {
		log.Println("Warning: ADMIN_CHAT_IDS not set, admin panel is unreachable")
	}

	cfg.VerifyPolicy = strings.ToLower(strings.TrimSpace(os.Getenv("VERIFY_POLICY")))
	if cfg.VerifyPolicy == "" {
		cfg.VerifyPolicy = "manual"
	}
	if cfg.VerifyPolicy != "manual" && cfg.VerifyPolicy != "auto" {
		log.Printf("Warning: unsupported VERIFY_POLICY=%q, defaulting to manual", cfg.VerifyPolicy)
		cfg.VerifyPolicy = "manual"
	}

	cfg.RegisterLink = strings.TrimSpace(os.Getenv("REGISTER_LINK"))
	if cfg.RegisterLink == "" {
		cfg.RegisterLink = "https://pocketoption.com"
	}

	cfg.PromoCode = strings.TrimSpace(os.Getenv("PROMO_CODE"))
	if cfg.PromoCode == "" {
		cfg.PromoCode = "SIGNAL50"
	}

	cfg.SupportUsername = strings.TrimPrefix(strings.TrimSpace(os.Getenv("SUPPORT_USERNAME")), "@")
	if cfg.SupportUsername == "" {
		cfg.SupportUsername = "signal_support"
	}

	cfg.MinConfidence = 70
	if v := strings.TrimSpace(os.Getenv("CONFIDENCE_MIN")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 100 {
			cfg.MinConfidence = n
		}
	}

	cfg.MaxConfidence = 95
	if v := strings.TrimSpace(os.Getenv("CONFIDENCE_MAX")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > cfg.MinConfidence && n <= 100 {
			cfg.MaxConfidence = n
		}
	}

	cfg.SessionTTLSecs = 1800
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSecs = n
		}
	}

	cfg.HTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("HTTP_ENABLED")), "true")

	cfg.HTTPBind = strings.TrimSpace(os.Getenv("HTTP_BIND"))
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = "127.0.0.1"
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SSHEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("SSH_ENABLED")), "true")

	cfg.SSHBind = strings.TrimSpace(os.Getenv("SSH_BIND"))
	if cfg.SSHBind == "" {
		cfg.SSHBind = "127.0.0.1"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/signal_admin_host_key"
	}

	cfg.SSHAuthorizedKeys = strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_KEYS"))

	cfg.SuggestionPollSecs = 3600
	if v := strings.TrimSpace(os.Getenv("SUGGESTION_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SuggestionPollSecs = n
		}
	}

	return cfg
}

// ParseAdminIDs reads a comma-separated list of chat ids, dropping anything
// that is not a positive integer and deduplicating the rest.
func ParseAdminIDs(raw string) []int64 {
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	seen := make(map[int64]struct{}, len(parts))
	for _, part := range parts {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
