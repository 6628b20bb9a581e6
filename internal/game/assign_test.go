package game

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/codeclash-api/internal/models"
)

// applicantWithRecord builds an applicant whose ranking is controlled purely
// by the wins counter.
func applicantWithRecord(name string, wins int) Applicant {
	id := uuid.New()
	return Applicant{
		User:  models.User{ID: id, Username: name},
		Stats: models.UserGameStats{UserID: id, Wins: wins},
	}
}

func activeGame() *models.Game {
	s := schedule(models.GameStatusActive)
	g := NewFromSchedule(s, 1)
	return &g
}

func TestAutoAssignFullGame(t *testing.T) {
	applicants := make([]Applicant, 0, 6)
	for i := 0; i < 6; i++ {
		applicants = append(applicants, applicantWithRecord(fmt.Sprintf("player-%d", i), 10-i))
	}

	g := activeGame()
	require.NoError(t, AutoAssign(g, applicants, StatsRanker{}))

	require.Len(t, g.Storage.Editors, 6)
	require.Len(t, g.Storage.Players, 6)

	// Three players per team, every slot assigned, nobody in two slots.
	teamSizes := map[int]int{}
	assigned := map[uuid.UUID]bool{}
	for key, editor := range g.Storage.Editors {
		assert.Equal(t, key, fmt.Sprint(editor.ID))
		require.NotNil(t, editor.Player, "slot %d left unassigned", editor.ID)
		assert.False(t, assigned[*editor.Player], "player assigned to two slots")
		assigned[*editor.Player] = true
		teamSizes[editor.Team]++

		// The player map must agree with the editor's team.
		entry := g.Storage.Players[editor.Player.String()]
		assert.Equal(t, editor.Team, entry.Team)
	}
	assert.Equal(t, 3, teamSizes[models.TeamBlue])
	assert.Equal(t, 3, teamSizes[models.TeamRed])

	// Each team covers html, css and js exactly once.
	for team := 0; team <= 1; team++ {
		languages := map[models.EditorLanguage]int{}
		for _, editor := range g.Storage.Editors {
			if editor.Team == team {
				languages[editor.Language]++
			}
		}
		assert.Equal(t, map[models.EditorLanguage]int{
			models.EditorLanguageHTML: 1,
			models.EditorLanguageCSS:  1,
			models.EditorLanguageJS:   1,
		}, languages)
	}

	// Top pick goes to blue html, second to red html.
	assert.Equal(t, applicants[0].User.ID, *mustEditor(t, g, 0).Player)
	assert.Equal(t, applicants[1].User.ID, *mustEditor(t, g, 3).Player)
}

func mustEditor(t *testing.T, g *models.Game, slot int) models.EditorEntry {
	t.Helper()
	editor, ok := g.Storage.Editors[fmt.Sprint(slot)]
	require.True(t, ok, "missing editor slot %d", slot)
	return editor
}

func TestAutoAssignPartialFill(t *testing.T) {
	applicants := []Applicant{
		applicantWithRecord("alpha", 5),
		applicantWithRecord("beta", 4),
		applicantWithRecord("gamma", 3),
		applicantWithRecord("delta", 2),
	}

	g := activeGame()
	require.NoError(t, AutoAssign(g, applicants, StatsRanker{}))

	// Four applicants fill four slots; the remaining entries are omitted,
	// not present with a null player.
	assert.Len(t, g.Storage.Editors, 4)
	assert.Len(t, g.Storage.Players, 4)
	for _, editor := range g.Storage.Editors {
		assert.NotNil(t, editor.Player)
	}
}

func TestAutoAssignNoApplicants(t *testing.T) {
	g := activeGame()
	require.NoError(t, AutoAssign(g, nil, StatsRanker{}))
	assert.Empty(t, g.Storage.Editors)
	assert.Empty(t, g.Storage.Players)
}

func TestAutoAssignIgnoresDuplicateApplications(t *testing.T) {
	applicant := applicantWithRecord("repeat", 1)
	g := activeGame()

	require.NoError(t, AutoAssign(g, []Applicant{applicant, applicant, applicant}, StatsRanker{}))
	assert.Len(t, g.Storage.Editors, 1)
	assert.Len(t, g.Storage.Players, 1)
}

func TestAutoAssignCapsAtSixPlayers(t *testing.T) {
	applicants := make([]Applicant, 0, 10)
	for i := 0; i < 10; i++ {
		applicants = append(applicants, applicantWithRecord(fmt.Sprintf("player-%d", i), 10-i))
	}

	g := activeGame()
	require.NoError(t, AutoAssign(g, applicants, StatsRanker{}))
	assert.Len(t, g.Storage.Editors, 6)
	assert.Len(t, g.Storage.Players, 6)
}

func TestAutoAssignPreconditions(t *testing.T) {
	t.Run("game must be active", func(t *testing.T) {
		g := activeGame()
		g.Status = models.GameStatusEnded
		assert.ErrorIs(t, AutoAssign(g, nil, StatsRanker{}), ErrGameNotActive)
	})

	t.Run("game must have a schedule", func(t *testing.T) {
		g := activeGame()
		g.ScheduleID = uuid.Nil
		assert.ErrorIs(t, AutoAssign(g, nil, StatsRanker{}), ErrGameMissingSchedule)
	})

	t.Run("second assignment fails", func(t *testing.T) {
		g := activeGame()
		require.NoError(t, AutoAssign(g, []Applicant{applicantWithRecord("solo", 1)}, StatsRanker{}))
		assert.ErrorIs(t, AutoAssign(g, nil, StatsRanker{}), ErrAlreadyAssigned)
	})

	t.Run("failed precondition leaves the game untouched", func(t *testing.T) {
		g := activeGame()
		g.Status = models.GameStatusScheduled
		_ = AutoAssign(g, []Applicant{applicantWithRecord("keen", 9)}, StatsRanker{})
		assert.Empty(t, g.Storage.Editors)
		assert.Empty(t, g.Storage.Players)
	})
}
