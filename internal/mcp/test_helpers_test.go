package mcp

import (
	"context"
	"encoding/json"
	"time"

	"pocket-signal-pro/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubDirectory struct {
	users []domain.UserRecord
}

func (s *stubDirectory) List() []domain.UserRecord {
	return append([]domain.UserRecord(nil), s.users...)
}

type stubPromoter struct {
	lastID  int64
	changed bool
	result  domain.UserRecord
}

func (s *stubPromoter) Promote(_ context.Context, targetID int64) (domain.UserRecord, bool) {
	s.lastID = targetID
	return s.result, s.changed
}

type stubMCPBroadcaster struct {
	lastText string
	sent     int
	failed   []int64
}

func (s *stubMCPBroadcaster) Broadcast(_ context.Context, text string) (int, []int64) {
	s.lastText = text
	return s.sent, s.failed
}

type stubSuggester struct {
	lastInstrument string
	lastDuration   string
}

func (s *stubSuggester) Generate(instrument, duration string) domain.Signal {
	s.lastInstrument = instrument
	s.lastDuration = duration
	return domain.Signal{
		Instrument: instrument,
		Duration:   duration,
		Direction:  domain.DirectionBuy,
		Confidence: 82.5,
		Timestamp:  time.Unix(0, 0).UTC(),
	}
}

type stubFlags struct {
	enabled bool
}

func (s *stubFlags) AutoSuggestions() bool           { return s.enabled }
func (s *stubFlags) SetAutoSuggestions(enabled bool) { s.enabled = enabled }

type testDeps struct {
	users       *stubDirectory
	promoter    *stubPromoter
	broadcaster *stubMCPBroadcaster
	suggester   *stubSuggester
	flags       *stubFlags
}

func testServer() (*sdkmcp.Server, *testDeps) {
	seen := time.Unix(0, 0).UTC()
	deps := &testDeps{
		users: &stubDirectory{users: []domain.UserRecord{
			{ID: 7, DisplayName: "ann", State: domain.StatePending, SubmittedReference: "ABC123", FirstSeenAt: seen},
			{ID: 8, DisplayName: "bob", State: domain.StateVerified, FirstSeenAt: seen},
		}},
		promoter: &stubPromoter{
			changed: true,
			result:  domain.UserRecord{ID: 7, DisplayName: "ann", State: domain.StateVerified, FirstSeenAt: seen},
		},
		broadcaster: &stubMCPBroadcaster{sent: 2, failed: []int64{9}},
		suggester:   &stubSuggester{},
		flags:       &stubFlags{},
	}

	srv := NewServer(nil, Deps{
		Users:       deps.users,
		Promoter:    deps.promoter,
		Broadcaster: deps.broadcaster,
		Suggester:   deps.suggester,
		Flags:       deps.flags,
		Catalog:     domain.DefaultCatalog(),
	}, ServerConfig{RequestTimeout: time.Second})
	return srv, deps
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
