package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeclash/codeclash-api/internal/models"
)

func schedule(status models.GameStatus) *models.GameSchedule {
	return &models.GameSchedule{
		ID:     uuid.New(),
		Status: status,
		Setup: models.ScheduleSetup{
			Title: "T",
			Mode:  models.GameModeClassic,
		},
	}
}

func TestCheckActivate(t *testing.T) {
	tests := []struct {
		name     string
		schedule *models.GameSchedule
		want     error
	}{
		{"scheduled with no game", schedule(models.GameStatusScheduled), nil},
		{"already active", schedule(models.GameStatusActive), ErrScheduleNotScheduled},
		{"already ended", schedule(models.GameStatusEnded), ErrScheduleNotScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckActivate(tt.schedule))
		})
	}

	t.Run("linked game blocks activation", func(t *testing.T) {
		s := schedule(models.GameStatusScheduled)
		s.Game = &models.Game{ID: uuid.New()}
		assert.ErrorIs(t, CheckActivate(s), ErrScheduleHasGame)
	})
}

func TestCheckEnd(t *testing.T) {
	assert.NoError(t, CheckEnd(schedule(models.GameStatusActive)))
	assert.ErrorIs(t, CheckEnd(schedule(models.GameStatusScheduled)), ErrScheduleNotActive)
	assert.ErrorIs(t, CheckEnd(schedule(models.GameStatusEnded)), ErrScheduleNotActive)
}

func TestCheckDelete(t *testing.T) {
	assert.NoError(t, CheckDelete(schedule(models.GameStatusScheduled)))
	assert.ErrorIs(t, CheckDelete(schedule(models.GameStatusActive)), ErrScheduleDeleteNotScheduled)

	s := schedule(models.GameStatusScheduled)
	s.Game = &models.Game{ID: uuid.New()}
	assert.ErrorIs(t, CheckDelete(s), ErrScheduleDeleteHasGame)
}

func TestCheckCreateGame(t *testing.T) {
	assert.NoError(t, CheckCreateGame(schedule(models.GameStatusActive)))
	assert.ErrorIs(t, CheckCreateGame(schedule(models.GameStatusScheduled)), ErrCreateScheduleNotOpen)
	assert.ErrorIs(t, CheckCreateGame(schedule(models.GameStatusEnded)), ErrCreateScheduleNotOpen)

	s := schedule(models.GameStatusActive)
	s.Game = &models.Game{ID: uuid.New()}
	assert.ErrorIs(t, CheckCreateGame(s), ErrScheduleHasGame)
}

func TestCheckGameEnd(t *testing.T) {
	assert.NoError(t, CheckGameEnd(&models.Game{Status: models.GameStatusActive}))
	assert.ErrorIs(t, CheckGameEnd(&models.Game{Status: models.GameStatusEnded}), ErrGameEndNotActive)
}

func TestNewFromSchedule(t *testing.T) {
	s := schedule(models.GameStatusScheduled)
	s.Setup.Objectives = map[string]models.Objective{
		"1": {ID: 1, Description: "first paint", IsBonus: false},
	}

	g := NewFromSchedule(s, 3)

	assert.Equal(t, s.ID, g.ScheduleID)
	assert.Equal(t, 3, g.Season)
	assert.Equal(t, models.GameStatusActive, g.Status)
	assert.Equal(t, "T", g.Storage.Title)
	assert.Equal(t, models.GameModeClassic, g.Storage.Mode)
	assert.Equal(t, s.Setup.Objectives, g.Storage.Objectives)

	// Two fixed teams, nobody assigned yet.
	require.Len(t, g.Storage.Teams, 2)
	assert.Equal(t, "blue", g.Storage.Teams["0"].Name)
	assert.Equal(t, "red", g.Storage.Teams["1"].Name)
	assert.Empty(t, g.Storage.Players)
	assert.Empty(t, g.Storage.Editors)
}

func gameWithProgress(blueDone, redDone int, blueVotes, redVotes models.TeamVotes) *models.Game {
	objectives := func(done int) map[string]models.ObjectiveState {
		states := map[string]models.ObjectiveState{}
		for i := 1; i <= 3; i++ {
			state := models.ObjectiveIncomplete
			if i <= done {
				state = models.ObjectiveComplete
			}
			states[string(rune('0'+i))] = state
		}
		return states
	}
	return &models.Game{
		Status: models.GameStatusActive,
		Storage: models.GameStorage{
			Teams: map[string]models.TeamEntry{
				"0": {ID: 0, Name: "blue", Objectives: objectives(blueDone), Votes: &blueVotes},
				"1": {ID: 1, Name: "red", Objectives: objectives(redDone), Votes: &redVotes},
			},
		},
	}
}

func TestFinish(t *testing.T) {
	t.Run("more objectives wins", func(t *testing.T) {
		g := gameWithProgress(3, 1, models.TeamVotes{}, models.TeamVotes{UI: 90, UX: 90})
		Finish(g)

		assert.Equal(t, models.GameStatusEnded, g.Status)
		require.NotNil(t, g.Storage.Meta)
		require.NotNil(t, g.Storage.Meta.WinningTeam)
		assert.Equal(t, models.TeamBlue, *g.Storage.Meta.WinningTeam)
		assert.Equal(t, 3, g.Storage.Meta.TeamScores[0].Objectives)
		assert.Equal(t, 1, g.Storage.Meta.TeamScores[1].Objectives)
	})

	t.Run("votes break objective tie", func(t *testing.T) {
		g := gameWithProgress(2, 2, models.TeamVotes{UI: 10, UX: 5}, models.TeamVotes{UI: 30, UX: 40})
		Finish(g)

		require.NotNil(t, g.Storage.Meta.WinningTeam)
		assert.Equal(t, models.TeamRed, *g.Storage.Meta.WinningTeam)
		assert.False(t, g.Storage.Meta.TeamScores[0].Tie)
	})

	t.Run("dead heat records the tie flag", func(t *testing.T) {
		votes := models.TeamVotes{UI: 20, UX: 20}
		g := gameWithProgress(2, 2, votes, votes)
		Finish(g)

		require.NotNil(t, g.Storage.Meta.WinningTeam)
		assert.Contains(t, []int{models.TeamBlue, models.TeamRed}, *g.Storage.Meta.WinningTeam)
		assert.True(t, g.Storage.Meta.TeamScores[0].Tie)
		assert.True(t, g.Storage.Meta.TeamScores[1].Tie)
	})
}

func TestResults(t *testing.T) {
	withPlayers := func(g *models.Game) *models.Game {
		g.Storage.Players = map[string]models.PlayerEntry{}
		for team := 0; team < 2; team++ {
			id := uuid.New()
			g.Storage.Players[id.String()] = models.PlayerEntry{ID: id, Team: team}
		}
		return g
	}

	t.Run("splits players by winning team", func(t *testing.T) {
		g := withPlayers(gameWithProgress(3, 1, models.TeamVotes{}, models.TeamVotes{}))
		Finish(g)

		winners, losers := Results(g)
		require.Len(t, winners, 1)
		require.Len(t, losers, 1)
		assert.Equal(t, models.TeamBlue, g.Storage.Players[winners[0].String()].Team)
		assert.Equal(t, models.TeamRed, g.Storage.Players[losers[0].String()].Team)
	})

	t.Run("dead heat credits nobody", func(t *testing.T) {
		votes := models.TeamVotes{UI: 20, UX: 20}
		g := withPlayers(gameWithProgress(2, 2, votes, votes))
		Finish(g)

		winners, losers := Results(g)
		assert.Empty(t, winners)
		assert.Empty(t, losers)
	})

	t.Run("no computed outcome credits nobody", func(t *testing.T) {
		g := withPlayers(gameWithProgress(2, 2, models.TeamVotes{}, models.TeamVotes{}))

		winners, losers := Results(g)
		assert.Empty(t, winners)
		assert.Empty(t, losers)
	})
}

func TestApplyPatch(t *testing.T) {
	g := &models.Game{
		Mode: models.GameModeClassic,
		Storage: models.GameStorage{
			Title: "original",
			Mode:  models.GameModeClassic,
			Objectives: map[string]models.Objective{
				"1": {ID: 1, Description: "old"},
			},
		},
	}

	title := "renamed"
	mode := models.GameModeBlitz
	ApplyPatch(g, Patch{Title: &title, Mode: &mode})

	assert.Equal(t, "renamed", g.Storage.Title)
	assert.Equal(t, models.GameModeBlitz, g.Mode)
	assert.Equal(t, models.GameModeBlitz, g.Storage.Mode)
	// Omitted fields keep their previous values.
	assert.Equal(t, "old", g.Storage.Objectives["1"].Description)

	// A provided map replaces the old one wholesale (shallow merge).
	ApplyPatch(g, Patch{Objectives: map[string]models.Objective{
		"2": {ID: 2, Description: "new"},
	}})
	assert.Len(t, g.Storage.Objectives, 1)
	assert.Equal(t, "new", g.Storage.Objectives["2"].Description)
}
