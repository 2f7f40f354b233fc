package plugin

import (
	"sort"
	"strings"
)

// Scoring weights for keyword matches, additive across keywords and
// fields for the same plugin.
const (
	scoreName        = 10
	scoreTag         = 8
	scoreCategory    = 6
	scoreDescription = 5

	maxRecommendations = 5
)

// Recommendation is one ranked entry returned by Recommend.
type Recommendation struct {
	ID    string
	Score int
}

// Recommend ranks registered plugins against free-text keywords.
//
// Matching is case-insensitive substring containment. Plugins scoring
// zero across all keywords are excluded; at most five results are
// returned, ranked by descending score with registration order breaking
// ties. The ranking is deterministic for a given registry snapshot.
func (m *Manager) Recommend(keywords []string) []Recommendation {
	plugins := m.All()

	var ranked []Recommendation
	for _, p := range plugins {
		if score := scoreDescriptor(p.Descriptor, keywords); score > 0 {
			ranked = append(ranked, Recommendation{ID: p.ID(), Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}
	return ranked
}

// scoreDescriptor computes the cumulative relevance score of one
// descriptor against the keywords.
func scoreDescriptor(d *Descriptor, keywords []string) int {
	name := strings.ToLower(d.Name)
	category := strings.ToLower(string(d.Category))
	description := strings.ToLower(d.Description)

	score := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}

		if strings.Contains(name, kw) {
			score += scoreName
		}
		for _, tag := range d.Tags {
			if strings.Contains(strings.ToLower(tag), kw) {
				score += scoreTag
				break
			}
		}
		if strings.Contains(category, kw) {
			score += scoreCategory
		}
		if strings.Contains(description, kw) {
			score += scoreDescription
		}
	}
	return score
}
