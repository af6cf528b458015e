// Package intel turns accumulated snapshots and changes into a ranked,
// explained intelligence report. Every stage past the raw signal builder is
// a pure function: identical raw signals always yield identical output,
// narrative text included.
package intel

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/domain"
)

// RawSignals is the normalized aggregate input for one competitor.
// Recomputed on demand, never persisted.
type RawSignals struct {
	CompetitorID     string                                  `json:"competitor_id"`
	TrackedPageTypes []domain.PageType                       `json:"tracked_page_types"`
	ChangesLast30d   int                                     `json:"changes_last_30d"`
	PageSignals      map[domain.PageType]domain.PageSignals  `json:"page_signals"`
	Themes           SignalThemes                            `json:"themes"`
	BotBlocked       bool                                    `json:"bot_blocked"`
}

// SignalThemes are webpage-signal changes collapsed into four strategic
// themes by regex extraction over their stored text.
type SignalThemes struct {
	Messaging        []string `json:"messaging,omitempty"`
	GTMMotion        []string `json:"gtm_motion,omitempty"`
	PricingNarrative []string `json:"pricing_narrative,omitempty"`
	CapabilityFocus  []string `json:"capability_focus,omitempty"`
}

var (
	gtmSalesRe     = regexp.MustCompile(`(?i)\b(demo|contact sales|talk to|book a call)\b`)
	gtmSelfServeRe = regexp.MustCompile(`(?i)\b(sign ?up|free trial|get started|start free)\b`)
)

// Builder aggregates stored snapshots and changes into RawSignals
type Builder struct {
	snapshots domain.SnapshotRepository
	changes   domain.ChangeRepository
	window    time.Duration
}

// NewBuilder creates a raw signal builder. window is the recent-change
// horizon, normally 30 days.
func NewBuilder(snapshots domain.SnapshotRepository, changes domain.ChangeRepository, window time.Duration) *Builder {
	return &Builder{snapshots: snapshots, changes: changes, window: window}
}

// Build assembles RawSignals for a competitor. Missing data never fails the
// build; absent inputs resolve to empty values the trait engine maps to
// "unknown".
func (b *Builder) Build(ctx context.Context, competitorID uuid.UUID) (RawSignals, error) {
	raw := RawSignals{
		CompetitorID: competitorID.String(),
		PageSignals:  map[domain.PageType]domain.PageSignals{},
	}

	latest, err := b.snapshots.LatestByPageType(ctx, competitorID)
	if err != nil {
		return raw, err
	}
	for pt, snap := range latest {
		raw.PageSignals[pt] = snap.Snapshot.Signals
		raw.TrackedPageTypes = append(raw.TrackedPageTypes, pt)
		if blockedStatus(snap.Snapshot.HTTPStatus) {
			raw.BotBlocked = true
		}
	}
	sort.Slice(raw.TrackedPageTypes, func(i, j int) bool {
		return raw.TrackedPageTypes[i] < raw.TrackedPageTypes[j]
	})

	since := time.Now().UTC().Add(-b.window)
	recent, err := b.changes.SinceByCompetitor(ctx, competitorID, since)
	if err != nil {
		return raw, err
	}
	raw.ChangesLast30d = len(recent)
	raw.Themes = collapseThemes(recent)

	return raw, nil
}

func blockedStatus(status int) bool {
	return status == 403 || status == 429 || status == 503
}

// collapseThemes sorts webpage-signal changes into the four strategic
// themes. Iteration order follows the stored change order, which the
// repository returns newest first.
func collapseThemes(changes []*domain.Change) SignalThemes {
	var themes SignalThemes
	for _, c := range changes {
		ws, ok := c.Details.(domain.WebpageSignalDetails)
		if !ok {
			continue
		}
		text := ws.After
		if text == "" {
			text = c.Summary
		}
		switch ws.Signal {
		case domain.SignalHeadline, domain.SignalPrimaryCTA:
			themes.Messaging = append(themes.Messaging, text)
			if gtmSalesRe.MatchString(text) || gtmSelfServeRe.MatchString(text) {
				themes.GTMMotion = append(themes.GTMMotion, text)
			}
		case domain.SignalPricingStructure:
			themes.PricingNarrative = append(themes.PricingNarrative, text)
		case domain.SignalSections:
			themes.CapabilityFocus = append(themes.CapabilityFocus, text)
		case domain.SignalNavLabels:
			themes.CapabilityFocus = append(themes.CapabilityFocus, text)
		}
	}
	return themes
}
