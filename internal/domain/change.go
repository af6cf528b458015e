package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeType identifies the kind of detected difference
type ChangeType string

const (
	ChangeTypeText           ChangeType = "text_change"
	ChangeTypeElementAdded   ChangeType = "element_added"
	ChangeTypeElementRemoved ChangeType = "element_removed"
	ChangeTypeManyStructural ChangeType = "many_structural_changes"
	ChangeTypeCTAText        ChangeType = "cta_text_change"
	ChangeTypeNav            ChangeType = "nav_change"
	ChangeTypeWebpageSignal  ChangeType = "webpage_signal"
)

// WebpageSignalKind names the PM-relevant field a webpage_signal change
// tracks
type WebpageSignalKind string

const (
	SignalHeadline         WebpageSignalKind = "headline_change"
	SignalPrimaryCTA       WebpageSignalKind = "primary_cta_change"
	SignalNavLabels        WebpageSignalKind = "nav_label_change"
	SignalPricingStructure WebpageSignalKind = "pricing_structure_change"
	SignalSections         WebpageSignalKind = "section_change"
	SignalSocialProof      WebpageSignalKind = "social_proof_change"
)

// Change is a detected difference between two consecutive snapshots of the
// same page. Immutable once persisted.
type Change struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	PageID           uuid.UUID     `json:"page_id" db:"page_id"`
	BeforeSnapshotID uuid.UUID     `json:"before_snapshot_id" db:"before_snapshot_id"`
	AfterSnapshotID  uuid.UUID     `json:"after_snapshot_id" db:"after_snapshot_id"`
	Type             ChangeType    `json:"change_type" db:"change_type"`
	Category         Category      `json:"category" db:"category"`
	Impact           Impact        `json:"impact" db:"impact"`
	Summary          string        `json:"summary" db:"summary"`
	Interpretation   string        `json:"interpretation" db:"interpretation"`
	MonitoringAction string        `json:"monitoring_action" db:"monitoring_action"`
	Details          ChangeDetails `json:"details"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}

// ChangeDetails is the tagged payload variant carried by a change. One
// concrete type exists per change type, preserving round-trip fidelity
// instead of an untyped map.
type ChangeDetails interface {
	changeDetails()
}

// TextChangeDetails records the fingerprint lengths, never the full text
type TextChangeDetails struct {
	BeforeLength int `json:"before_length"`
	AfterLength  int `json:"after_length"`
}

// ElementChangeDetails describes one added or removed structural element
type ElementChangeDetails struct {
	Kind string `json:"kind"` // heading, landmark, list_item
	Key  string `json:"key"`
	Text string `json:"text,omitempty"`
}

// ManyStructuralDetails summarizes an over-cap structural diff
type ManyStructuralDetails struct {
	AddedCount   int `json:"added_count"`
	RemovedCount int `json:"removed_count"`
}

// CTATextDetails records a CTA whose text changed under the same href
type CTATextDetails struct {
	Href       string `json:"href"`
	BeforeText string `json:"before_text"`
	AfterText  string `json:"after_text"`
}

// NavChangeDetails records navigation entries added and removed
type NavChangeDetails struct {
	Added   []NavItem `json:"added,omitempty"`
	Removed []NavItem `json:"removed,omitempty"`
}

// WebpageSignalDetails is the PM-signal diff payload
type WebpageSignalDetails struct {
	Signal     WebpageSignalKind `json:"signal"`
	PageType   PageType          `json:"page_type"`
	Before     string            `json:"before,omitempty"`
	After      string            `json:"after,omitempty"`
	Confidence Confidence        `json:"confidence"`
}

func (TextChangeDetails) changeDetails()     {}
func (ElementChangeDetails) changeDetails()  {}
func (ManyStructuralDetails) changeDetails() {}
func (CTATextDetails) changeDetails()        {}
func (NavChangeDetails) changeDetails()      {}
func (WebpageSignalDetails) changeDetails()  {}

// EncodeDetails serializes a details variant for storage
func EncodeDetails(d ChangeDetails) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// DecodeDetails deserializes the details payload for a change type
func DecodeDetails(t ChangeType, raw []byte) (ChangeDetails, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var (
		d   ChangeDetails
		err error
	)
	switch t {
	case ChangeTypeText:
		var v TextChangeDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ChangeTypeElementAdded, ChangeTypeElementRemoved:
		var v ElementChangeDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ChangeTypeManyStructural:
		var v ManyStructuralDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ChangeTypeCTAText:
		var v CTATextDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ChangeTypeNav:
		var v NavChangeDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ChangeTypeWebpageSignal:
		var v WebpageSignalDetails
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		return nil, fmt.Errorf("unknown change type %q", t)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ChangeRepository defines data access for changes
type ChangeRepository interface {
	InsertBatch(ctx context.Context, changes []*Change) error

	// SinceByCompetitor returns all changes across a competitor's pages
	// created at or after the cutoff, newest first.
	SinceByCompetitor(ctx context.Context, competitorID uuid.UUID, since time.Time) ([]*Change, error)
}
