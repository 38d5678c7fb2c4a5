package advisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel   = openai.ChatModelGPT4oMini
	maxHistoryLen  = 20
	requestTimeout = 15 * time.Second
)

const systemPrompt = "You are the support assistant of a trading signal bot. " +
	"Users ask about registration, signals, expiry times and payouts. " +
	"Answer briefly and in plain language. Never promise guaranteed profits."

// Service answers free-form questions from verified users, keeping a short
// per-chat conversation history.
type Service struct {
	client openai.Client
	model  string

	mu      sync.Mutex
	history map[int64][]openai.ChatCompletionMessageParamUnion
}

// New returns nil when OPENAI_API_KEY is not set; the caller treats a nil
// advisor as a disabled feature.
func New() *Service {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil
	}

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = defaultModel
	}

	return &Service{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		history: make(map[int64][]openai.ChatCompletionMessageParamUnion),
	}
}

func (s *Service) Ask(ctx context.Context, chatID int64, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("empty question")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	messages := s.contextFor(chatID, message)
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("advisor request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("advisor: empty response")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.remember(chatID, message, reply)
	return reply, nil
}

// Forget drops the stored conversation for one chat.
func (s *Service) Forget(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, chatID)
}

func (s *Service) contextFor(chatID int64, message string) []openai.ChatCompletionMessageParamUnion {
	s.mu.Lock()
	defer s.mu.Unlock()

	past := s.history[chatID]
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(past)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	messages = append(messages, past...)
	messages = append(messages, openai.UserMessage(message))
	return messages
}

func (s *Service) remember(chatID int64, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(question),
		openai.AssistantMessage(answer),
	}
	history := append(s.history[chatID], turn...)
	if len(history) > maxHistoryLen {
		history = history[len(history)-maxHistoryLen:]
	}
	s.history[chatID] = history
}
