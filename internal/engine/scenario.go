package engine

import (
	"math/rand"

	"trading-audit-lab/internal/domain"
)

// ScenarioGenerator supplies the randomized outcomes of the simulated
// trading session. Injectable so tests can substitute a deterministic
// generator for true randomness.
type ScenarioGenerator interface {
	// NextTrade produces one synthetic trade outcome for the session.
	NextTrade(symbol string, cfg domain.SessionConfig) domain.SimulatedTrade
}

// RandomGenerator draws trade outcomes from a seeded PRNG.
// Wins pay out up to 5% of position value, losses cost up to 3%.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator creates a generator seeded for reproducible runs.
func NewRandomGenerator(seed int64) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewSource(seed))}
}

var _ ScenarioGenerator = (*RandomGenerator)(nil)

// NextTrade decides win/loss against the target success rate and draws
// a proportional P&L.
func (g *RandomGenerator) NextTrade(symbol string, cfg domain.SessionConfig) domain.SimulatedTrade {
	win := g.rng.Float64() < cfg.TargetSuccessRate
	var pnl float64
	if win {
		pnl = cfg.PositionValue * 0.05 * g.rng.Float64()
	} else {
		pnl = -cfg.PositionValue * 0.03 * g.rng.Float64()
	}
	return domain.SimulatedTrade{Symbol: symbol, Win: win, PnL: pnl}
}

// FixedGenerator replays a predetermined win/loss sequence.
// Used by tests and by fixture demo runs.
type FixedGenerator struct {
	wins []bool
	pnls []float64
	next int
}

// NewFixedGenerator creates a generator that cycles through the given
// outcomes. pnls may be shorter than wins; missing entries default to
// +1 for wins and -1 for losses.
func NewFixedGenerator(wins []bool, pnls []float64) *FixedGenerator {
	return &FixedGenerator{wins: wins, pnls: pnls}
}

var _ ScenarioGenerator = (*FixedGenerator)(nil)

// NextTrade returns the next outcome in the sequence, cycling.
func (g *FixedGenerator) NextTrade(symbol string, _ domain.SessionConfig) domain.SimulatedTrade {
	if len(g.wins) == 0 {
		return domain.SimulatedTrade{Symbol: symbol, Win: true, PnL: 1}
	}
	i := g.next % len(g.wins)
	g.next++

	win := g.wins[i]
	var pnl float64
	if i < len(g.pnls) {
		pnl = g.pnls[i]
	} else if win {
		pnl = 1
	} else {
		pnl = -1
	}
	return domain.SimulatedTrade{Symbol: symbol, Win: win, PnL: pnl}
}
