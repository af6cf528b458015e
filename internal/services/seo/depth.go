package seo

import (
	"sort"
	"time"
)

// ContentDepth aggregates the content-investment metrics
type ContentDepth struct {
	ContentPageCount int     `json:"content_page_count"`
	AvgWordCount     int     `json:"avg_word_count"`
	CadenceDays      float64 `json:"cadence_days,omitempty"` // avg days between dated pages
	LongFormRatio    float64 `json:"long_form_ratio"`
	InvestmentScore  int     `json:"investment_score"` // 0-100
}

const longFormWords = 1200

// BuildContentDepth computes content metrics over content pages and folds
// them into the 0-100 investment score. Cadence needs at least two dated
// pages; without them it stays zero and contributes nothing.
func BuildContentDepth(pages []PageInput) ContentDepth {
	var (
		d         ContentDepth
		words     int
		longForm  int
		published []time.Time
	)

	for _, p := range pages {
		if !p.PageType.IsContent() {
			continue
		}
		d.ContentPageCount++
		words += p.Signals.SEO.WordCount
		if p.Signals.SEO.WordCount >= longFormWords {
			longForm++
		}
		if p.Signals.SEO.PublishedAt != nil {
			published = append(published, *p.Signals.SEO.PublishedAt)
		}
	}

	if d.ContentPageCount == 0 {
		return d
	}

	d.AvgWordCount = words / d.ContentPageCount
	d.LongFormRatio = float64(longForm) / float64(d.ContentPageCount)

	if len(published) >= 2 {
		sort.Slice(published, func(i, j int) bool { return published[i].Before(published[j]) })
		span := published[len(published)-1].Sub(published[0])
		d.CadenceDays = span.Hours() / 24 / float64(len(published)-1)
	}

	d.InvestmentScore = investmentScore(d)
	return d
}

// investmentScore is a fixed additive formula: volume up to 30 points,
// average depth up to 30, long-form ratio up to 20, cadence up to 20.
func investmentScore(d ContentDepth) int {
	score := 0

	if v := d.ContentPageCount * 10; v > 30 {
		score += 30
	} else {
		score += v
	}

	if v := d.AvgWordCount / 50; v > 30 {
		score += 30
	} else {
		score += v
	}

	score += int(d.LongFormRatio * 20)

	if d.CadenceDays > 0 {
		switch {
		case d.CadenceDays <= 7:
			score += 20
		case d.CadenceDays <= 30:
			score += 10
		case d.CadenceDays <= 90:
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}
