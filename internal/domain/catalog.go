package domain

import "sort"

type Category string

const (
	CategoryForex  Category = "forex"
	CategoryCrypto Category = "crypto"
	CategoryOTC    Category = "otc"
)

// Instrument is one tradeable pair. AlwaysOpen marks markets that never close
// (OTC-style), which unlocks sub-minute durations.
type Instrument struct {
	ID         string   `json:"id"`
	Category   Category `json:"category"`
	AlwaysOpen bool     `json:"always_open"`
}

// Catalog is the static instrument universe the bot offers. Lookup is by the
// instrument's own ID so navigation can always recover an instrument's
// category from the instrument itself.
type Catalog struct {
	instruments []Instrument
	byID        map[string]Instrument
}

func NewCatalog(instruments []Instrument) *Catalog {
	byID := make(map[string]Instrument, len(instruments))
	for _, inst := range instruments {
		byID[inst.ID] = inst
	}
	return &Catalog{instruments: instruments, byID: byID}
}

// DefaultCatalog returns the stock pair list.
func DefaultCatalog() *Catalog {
	var instruments []Instrument
	add := func(cat Category, alwaysOpen bool, ids ...string) {
		for _, id := range ids {
			instruments = append(instruments, Instrument{ID: id, Category: cat, AlwaysOpen: alwaysOpen})
		}
	}
	add(CategoryForex, false, "EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD", "NZD/USD", "EUR/GBP")
	add(CategoryCrypto, false, "BTC/USDT", "ETH/USDT", "SOL/USDT", "XRP/USDT", "DOGE/USDT")
	add(CategoryOTC, true, "EUR/USD OTC", "GBP/USD OTC", "USD/JPY OTC", "BTC/USDT OTC", "ETH/USDT OTC")
	return NewCatalog(instruments)
}

func (c *Catalog) Lookup(id string) (Instrument, bool) {
	inst, ok := c.byID[id]
	return inst, ok
}

func (c *Catalog) Instruments() []Instrument {
	out := make([]Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Categories returns every category present in the catalog, sorted for stable
// menu ordering.
func (c *Catalog) Categories() []Category {
	seen := make(map[Category]struct{})
	var out []Category
	for _, inst := range c.instruments {
		if _, ok := seen[inst.Category]; ok {
			continue
		}
		seen[inst.Category] = struct{}{}
		out = append(out, inst.Category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Catalog) ByCategory(cat Category) []Instrument {
	var out []Instrument
	for _, inst := range c.instruments {
		if inst.Category == cat {
			out = append(out, inst)
		}
	}
	return out
}

func (c *Catalog) HasCategory(cat Category) bool {
	for _, inst := range c.instruments {
		if inst.Category == cat {
			return true
		}
	}
	return false
}

var (
	alwaysOpenDurations = []string{"5 sec", "15 sec", "30 sec", "1 min", "2 min", "5 min"}
	regularDurations    = []string{"1 min", "2 min", "5 min", "15 min"}
)

// DurationsFor is total: every instrument maps to exactly one duration class.
// Always-open markets additionally offer sub-minute expiries.
func DurationsFor(inst Instrument) []string {
	src := regularDurations
	if inst.AlwaysOpen {
		src = alwaysOpenDurations
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidDuration reports whether label is offered for the given instrument.
func ValidDuration(inst Instrument, label string) bool {
	for _, d := range DurationsFor(inst) {
		if d == label {
			return true
		}
	}
	return false
}
