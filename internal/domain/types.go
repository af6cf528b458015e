package domain

import "time"

// Common types used across domain models

// JobStatus represents the current state of a crawl job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// PageType is the taxonomy of tracked competitor pages
type PageType string

const (
	PageTypeHomepage    PageType = "homepage"
	PageTypePricing     PageType = "pricing"
	PageTypeProduct     PageType = "product"
	PageTypeServices    PageType = "services"
	PageTypeCaseStudies PageType = "case_studies"
	PageTypeBlog        PageType = "blog"
	PageTypeAbout       PageType = "about"
	PageTypeContact     PageType = "contact"
	PageTypeCareers     PageType = "careers"
	PageTypeDocs        PageType = "docs"
	PageTypeOther       PageType = "other"
)

func (p PageType) IsValid() bool {
	switch p {
	case PageTypeHomepage, PageTypePricing, PageTypeProduct, PageTypeServices,
		PageTypeCaseStudies, PageTypeBlog, PageTypeAbout, PageTypeContact,
		PageTypeCareers, PageTypeDocs, PageTypeOther:
		return true
	}
	return false
}

// IsContent reports whether the page type carries long-form content used by
// the SEO engine.
func (p PageType) IsContent() bool {
	return p == PageTypeBlog || p == PageTypeCaseStudies || p == PageTypeDocs
}

// Category is the business category assigned to a detected change
type Category string

const (
	CategoryPositioning Category = "Positioning & Messaging"
	CategoryPricing     Category = "Pricing & Offers"
	CategoryProduct     Category = "Product / Services"
	CategoryTrust       Category = "Trust & Credibility"
	CategoryNavigation  Category = "Navigation / Structure"
)

// Impact is the business impact level assigned to a detected change
type Impact string

const (
	ImpactMinor     Impact = "minor"
	ImpactModerate  Impact = "moderate"
	ImpactStrategic Impact = "strategic"
)

// Confidence is the reliability level attached to a PM-signal change or an
// assembled report
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Timestamps provides common time fields
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SetTimestamps sets CreatedAt and UpdatedAt to current time
func (t *Timestamps) SetTimestamps() {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch updates UpdatedAt to current time
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
