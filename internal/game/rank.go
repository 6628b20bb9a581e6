// rank.go — the applicant ordering used by auto-assignment.
//
// The exact heuristic is deliberately pluggable: assignment only requires a
// total order over applicants with deterministic tie-breaking. StatsRanker is
// the shipped default.
package game

import (
	"sort"

	"github.com/codeclash/codeclash-api/internal/models"
)

// Applicant is one distinct user competing for an editor slot, resolved from
// their game application together with their historical stats.
type Applicant struct {
	User  models.User
	Stats models.UserGameStats
}

// Ranker orders applicants from strongest to weakest. Implementations must be
// deterministic: equal inputs produce equal output orderings.
type Ranker interface {
	Rank(applicants []Applicant) []Applicant
}

// StatsRanker orders applicants by their historical record: wins descending,
// then losses ascending. Remaining ties fall back to user id ascending so the
// ordering is a total order.
type StatsRanker struct{}

func (StatsRanker) Rank(applicants []Applicant) []Applicant {
	ranked := make([]Applicant, len(applicants))
	copy(ranked, applicants)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Stats.Wins != b.Stats.Wins {
			return a.Stats.Wins > b.Stats.Wins
		}
		if a.Stats.Losses != b.Stats.Losses {
			return a.Stats.Losses < b.Stats.Losses
		}
		return a.User.ID.String() < b.User.ID.String()
	})

	return ranked
}
