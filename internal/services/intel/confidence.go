package intel

import (
	"fmt"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// ConfidenceResult grades how much the report can be trusted
type ConfidenceResult struct {
	Level   domain.Confidence `json:"level"`
	Reasons []string          `json:"reasons"`
}

// Grade combines trait coverage and dimension score spread, with a penalty
// when the competitor's site blocks automated access.
func Grade(traits []Trait, card ScoreCard) ConfidenceResult {
	resolved := 0
	for _, t := range traits {
		if t.Value != ValueUnknown {
			resolved++
		}
	}

	spread := 0
	if len(card.Scores) > 0 {
		lo, hi := card.Scores[0].Score, card.Scores[0].Score
		for _, s := range card.Scores {
			if s.Score < lo {
				lo = s.Score
			}
			if s.Score > hi {
				hi = s.Score
			}
		}
		spread = hi - lo
	}

	blocked := TraitValue(traits, TraitBotMitigation) == "blocked"

	var reasons []string
	reasons = append(reasons, fmt.Sprintf("%d of %d traits resolved", resolved, len(traits)))
	reasons = append(reasons, fmt.Sprintf("dimension score spread of %d points", spread))

	level := domain.ConfidenceLow
	switch {
	case resolved >= 7 && spread >= 20:
		level = domain.ConfidenceHigh
	case resolved >= 4:
		level = domain.ConfidenceMedium
	}

	if blocked {
		reasons = append(reasons, "site blocks automated access; signals may be incomplete")
		switch level {
		case domain.ConfidenceHigh:
			level = domain.ConfidenceMedium
		case domain.ConfidenceMedium:
			level = domain.ConfidenceLow
		}
	}

	return ConfidenceResult{Level: level, Reasons: reasons}
}
