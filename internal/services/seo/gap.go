package seo

// GapAnalysis compares a target's search posture against one peer
type GapAnalysis struct {
	TargetDomain    string         `json:"target_domain"`
	PeerDomain      string         `json:"peer_domain"`
	MissingKeywords []Keyword      `json:"missing_keywords,omitempty"`
	MissingClusters []TopicCluster `json:"missing_clusters,omitempty"`
	FunnelGap       *FunnelGap     `json:"funnel_gap,omitempty"`
}

// FunnelGap flags a stage the peer covers and the target neglects
type FunnelGap struct {
	Stage       FunnelStage `json:"stage"`
	TargetPages int         `json:"target_pages"`
	PeerPages   int         `json:"peer_pages"`
}

const (
	gapKeywordLimit  = 15
	gapMinPeerWeight = 4
)

// CompareGap surfaces the peer's high-weight keywords and clusters absent
// from the target, plus the first funnel stage where the peer has coverage
// and the target has none.
func CompareGap(target, peer Analysis) GapAnalysis {
	gap := GapAnalysis{
		TargetDomain: target.Domain,
		PeerDomain:   peer.Domain,
	}

	for _, k := range peer.Keywords.Keywords {
		if len(gap.MissingKeywords) >= gapKeywordLimit {
			break
		}
		if k.Weight() < gapMinPeerWeight {
			break
		}
		if !target.Keywords.Has(k.Term) {
			gap.MissingKeywords = append(gap.MissingKeywords, k)
		}
	}

	targetClusters := map[string]bool{}
	for _, c := range target.Clusters {
		targetClusters[c.Name] = true
	}
	for _, c := range peer.Clusters {
		if !targetClusters[c.Name] {
			gap.MissingClusters = append(gap.MissingClusters, c)
		}
	}

	gap.FunnelGap = funnelGap(target.Funnel, peer.Funnel)
	return gap
}

func funnelGap(target, peer FunnelBalance) *FunnelGap {
	stages := []struct {
		stage        FunnelStage
		target, peer int
	}{
		{FunnelBottom, target.Bottom, peer.Bottom},
		{FunnelMid, target.Mid, peer.Mid},
		{FunnelTop, target.Top, peer.Top},
	}
	for _, s := range stages {
		if s.target == 0 && s.peer > 0 {
			return &FunnelGap{Stage: s.stage, TargetPages: s.target, PeerPages: s.peer}
		}
	}
	return nil
}
