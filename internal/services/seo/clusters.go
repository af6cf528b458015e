package seo

import "sort"

// TopicCluster is one matched topic vocabulary with its aggregate weight
type TopicCluster struct {
	Name     string   `json:"name"`
	Weight   int      `json:"weight"`
	Keywords []string `json:"keywords"`
}

// topicVocab maps cluster names to the keyword stems matched against the
// keyword profile. Fixed vocabularies, same register as the industry lists.
var topicVocab = map[string][]string{
	"automation":     {"automation", "automate", "workflow", "pipeline", "orchestration"},
	"analytics":      {"analytics", "insight", "dashboard", "report", "metric", "data"},
	"integration":    {"integration", "api", "connector", "sync", "webhook"},
	"security":       {"security", "compliance", "encryption", "audit", "access"},
	"collaboration":  {"collaboration", "team", "share", "workspace", "together"},
	"infrastructure": {"infrastructure", "cloud", "deploy", "scale", "hosting"},
}

// BuildClusters matches the keyword profile against the topic vocabularies.
// A keyword joins every cluster whose vocabulary it contains as a
// substring; cluster weight is the sum of member keyword weights. Clusters
// with no members are omitted. Output is ordered by weight then name.
func BuildClusters(profile KeywordProfile) []TopicCluster {
	byName := map[string]*TopicCluster{}

	for _, k := range profile.Keywords {
		for name, stems := range topicVocab {
			if !matchesAny(k.Term, stems) {
				continue
			}
			c, ok := byName[name]
			if !ok {
				c = &TopicCluster{Name: name}
				byName[name] = c
			}
			c.Weight += k.Weight()
			c.Keywords = append(c.Keywords, k.Term)
		}
	}

	out := make([]TopicCluster, 0, len(byName))
	for _, c := range byName {
		sort.Strings(c.Keywords)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func matchesAny(term string, stems []string) bool {
	for _, s := range stems {
		if containsWordStem(term, s) {
			return true
		}
	}
	return false
}

// containsWordStem reports whether any word in the term starts with the stem
func containsWordStem(term, stem string) bool {
	start := 0
	for i := 0; i <= len(term); i++ {
		if i == len(term) || term[i] == ' ' {
			word := term[start:i]
			if len(word) >= len(stem) && word[:len(stem)] == stem {
				return true
			}
			start = i + 1
		}
	}
	return false
}
