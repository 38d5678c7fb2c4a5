package signalgen

import (
	"math/rand"
	"sync"
	"time"

	"pocket-signal-pro/internal/domain"
)

const (
	DefaultMinConfidence = 70.0
	DefaultMaxConfidence = 95.0
)

// Generator produces directional calls. It is a pure random source: a fair
// coin for direction and a uniform confidence within the configured bounds.
// Nothing is persisted or memoized.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	minConf float64
	maxConf float64
	now     func() time.Time
}

func NewGenerator(minConf, maxConf float64, now func() time.Time) *Generator {
	if minConf <= 0 || maxConf <= minConf {
		minConf = DefaultMinConfidence
		maxConf = DefaultMaxConfidence
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(now().UnixNano())),
		minConf: minConf,
		maxConf: maxConf,
		now:     now,
	}
}

// Generate returns one call for the given pick. Confidence is rounded to one
// decimal and always stays within the configured bounds.
func (g *Generator) Generate(instrument, duration string) domain.Signal {
	g.mu.Lock()
	coin := g.rng.Float64()
	spread := g.rng.Float64()
	g.mu.Unlock()

	direction := domain.DirectionBuy
	if coin < 0.5 {
		direction = domain.DirectionSell
	}

	confidence := g.minConf + spread*(g.maxConf-g.minConf)
	confidence = float64(int(confidence*10+0.5)) / 10
	if confidence > g.maxConf {
		confidence = g.maxConf
	}

	return domain.Signal{
		Instrument: instrument,
		Duration:   duration,
		Direction:  direction,
		Confidence: confidence,
		Timestamp:  g.now().UTC(),
	}
}

// Bounds returns the configured confidence range.
func (g *Generator) Bounds() (float64, float64) {
	return g.minConf, g.maxConf
}
