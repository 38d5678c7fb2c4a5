package job

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/signalgen"
	"pocket-signal-pro/internal/store"
	"pocket-signal-pro/internal/verify"

	"go.opentelemetry.io/otel/trace"
)

// SuggestionPoller pushes unsolicited signal suggestions to verified users
// while the auto-suggestion flag is on. Each tick covers one instrument,
// rotating through the catalog.
type SuggestionPoller struct {
	tracer    trace.Tracer
	flags     *store.FeatureFlags
	users     *store.UserStore
	generator *signalgen.Generator
	catalog   *domain.Catalog
	notifier  verify.Notifier
	interval  time.Duration

	instIndex int
	durIndex  int
}

func NewSuggestionPoller(
	tracer trace.Tracer,
	flags *store.FeatureFlags,
	users *store.UserStore,
	generator *signalgen.Generator,
	catalog *domain.Catalog,
	notifier verify.Notifier,
	interval time.Duration,
) *SuggestionPoller {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SuggestionPoller{
		tracer:    tracer,
		flags:     flags,
		users:     users,
		generator: generator,
		catalog:   catalog,
		notifier:  notifier,
		interval:  interval,
	}
}

// Start blocks until ctx is cancelled.
func (p *SuggestionPoller) Start(ctx context.Context) {
	if p.notifier == nil {
		log.Println("Suggestion poller disabled: no notifier")
		<-ctx.Done()
		return
	}

	log.Println("Suggestion poller starting...")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Suggestion poller stopped")
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *SuggestionPoller) runOnce(ctx context.Context) {
	if !p.flags.AutoSuggestions() {
		return
	}

	ctx, span := p.tracer.Start(ctx, "job.suggest")
	defer span.End()

	instruments := p.catalog.Instruments()
	if len(instruments) == 0 {
		return
	}
	inst := instruments[p.instIndex%len(instruments)]
	p.instIndex++

	durations := domain.DurationsFor(inst)
	duration := durations[p.durIndex%len(durations)]
	p.durIndex++

	signal := p.generator.Generate(inst.ID, duration)
	text := formatSuggestion(signal)

	for _, user := range p.users.List() {
		if user.State != domain.StateVerified {
			continue
		}
		if err := p.notifier.Notify(ctx, user.ID, text); err != nil {
			log.Printf("suggestion to chat %d failed: %v", user.ID, err)
		}
	}
}

func formatSuggestion(s domain.Signal) string {
	return fmt.Sprintf(
		"Suggested trade\n\nPair: %s\nDirection: %s\nExpiry: %s\nConfidence: %.1f%%",
		s.Instrument,
		strings.ToUpper(string(s.Direction)),
		s.Duration,
		s.Confidence,
	)
}
