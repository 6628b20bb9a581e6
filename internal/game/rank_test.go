package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/codeclash/codeclash-api/internal/models"
)

func statsApplicant(id string, wins, losses int) Applicant {
	uid := uuid.MustParse(id)
	return Applicant{
		User:  models.User{ID: uid},
		Stats: models.UserGameStats{UserID: uid, Wins: wins, Losses: losses},
	}
}

func TestStatsRankerOrdering(t *testing.T) {
	a := statsApplicant("00000000-0000-0000-0000-00000000000a", 5, 2)
	b := statsApplicant("00000000-0000-0000-0000-00000000000b", 8, 4)
	c := statsApplicant("00000000-0000-0000-0000-00000000000c", 5, 1)

	ranked := StatsRanker{}.Rank([]Applicant{a, b, c})

	// Most wins first; equal wins ordered by fewer losses.
	assert.Equal(t, []uuid.UUID{b.User.ID, c.User.ID, a.User.ID},
		[]uuid.UUID{ranked[0].User.ID, ranked[1].User.ID, ranked[2].User.ID})
}

func TestStatsRankerTieBreaksOnUserID(t *testing.T) {
	a := statsApplicant("00000000-0000-0000-0000-000000000002", 3, 3)
	b := statsApplicant("00000000-0000-0000-0000-000000000001", 3, 3)

	// Identical records in either input order always rank the lower id first.
	for _, input := range [][]Applicant{{a, b}, {b, a}} {
		ranked := StatsRanker{}.Rank(input)
		assert.Equal(t, b.User.ID, ranked[0].User.ID)
		assert.Equal(t, a.User.ID, ranked[1].User.ID)
	}
}

func TestStatsRankerDoesNotMutateInput(t *testing.T) {
	a := statsApplicant("00000000-0000-0000-0000-00000000000a", 1, 0)
	b := statsApplicant("00000000-0000-0000-0000-00000000000b", 9, 0)
	input := []Applicant{a, b}

	StatsRanker{}.Rank(input)

	assert.Equal(t, a.User.ID, input[0].User.ID)
	assert.Equal(t, b.User.ID, input[1].User.ID)
}
