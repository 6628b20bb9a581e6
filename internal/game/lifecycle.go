// lifecycle.go — state transitions for schedules and games.
//
// Valid transitions:
//
//	schedule: SCHEDULED --activate--> ACTIVE --end--> ENDED
//	game:     (created ACTIVE by activation) --end--> ENDED
//
// The Check* functions validate preconditions without mutating anything so a
// failed check can never leave a partial write behind. Callers run the check,
// apply the mutation, and persist the result inside a single database
// transaction.
package game

import (
	"github.com/google/uuid"

	"github.com/codeclash/codeclash-api/internal/models"
)

// CheckActivate validates that a schedule may transition SCHEDULED -> ACTIVE.
// Both failure modes are distinct client-caused precondition errors.
func CheckActivate(schedule *models.GameSchedule) error {
	if schedule.Status != models.GameStatusScheduled {
		return ErrScheduleNotScheduled
	}
	if schedule.Game != nil {
		return ErrScheduleHasGame
	}
	return nil
}

// CheckEnd validates that a schedule may transition ACTIVE -> ENDED.
func CheckEnd(schedule *models.GameSchedule) error {
	if schedule.Status != models.GameStatusActive {
		return ErrScheduleNotActive
	}
	return nil
}

// CheckDelete validates that a schedule may be removed: only while still
// SCHEDULED and before a game has been spawned from it.
func CheckDelete(schedule *models.GameSchedule) error {
	if schedule.Status != models.GameStatusScheduled {
		return ErrScheduleDeleteNotScheduled
	}
	if schedule.Game != nil {
		return ErrScheduleDeleteHasGame
	}
	return nil
}

// CheckCreateGame validates that a game may be created directly against a
// schedule, outside the normal activation path: the schedule must already be
// ACTIVE and not yet have a game.
func CheckCreateGame(schedule *models.GameSchedule) error {
	if schedule.Status != models.GameStatusActive {
		return ErrCreateScheduleNotOpen
	}
	if schedule.Game != nil {
		return ErrScheduleHasGame
	}
	return nil
}

// CheckGameEnd validates that a game may transition ACTIVE -> ENDED.
func CheckGameEnd(g *models.Game) error {
	if g.Status != models.GameStatusActive {
		return ErrGameEndNotActive
	}
	return nil
}

// NewFromSchedule builds the game spawned by activating a schedule. The setup
// document's title, mode, objectives and templates are copied into the game's
// initial storage; the two fixed teams are seeded and the players and editors
// maps start empty, ready for auto-assignment.
func NewFromSchedule(schedule *models.GameSchedule, season int) models.Game {
	return models.Game{
		ScheduleID: schedule.ID,
		Season:     season,
		Mode:       schedule.Setup.Mode,
		Status:     models.GameStatusActive,
		Storage: models.GameStorage{
			Title:      schedule.Setup.Title,
			Mode:       schedule.Setup.Mode,
			Teams:      defaultTeams(),
			Players:    map[string]models.PlayerEntry{},
			Editors:    map[string]models.EditorEntry{},
			Objectives: schedule.Setup.Objectives,
			Templates:  schedule.Setup.Templates,
		},
	}
}

func defaultTeams() map[string]models.TeamEntry {
	return map[string]models.TeamEntry{
		"0": {ID: models.TeamBlue, Name: "blue"},
		"1": {ID: models.TeamRed, Name: "red"},
	}
}

// Finish transitions a game to ENDED and writes the computed outcome into
// storage.meta. The winner is the team with the higher completed-objective
// count; a tie falls through to total audience votes; if still level, both
// team scores carry the tie flag and blue is recorded as the winning team so
// meta always names a team.
func Finish(g *models.Game) {
	g.Status = models.GameStatusEnded

	scores := []models.TeamScore{
		scoreTeam(g.Storage.Teams["0"]),
		scoreTeam(g.Storage.Teams["1"]),
	}

	winner := models.TeamBlue
	switch {
	case scores[0].Objectives != scores[1].Objectives:
		if scores[1].Objectives > scores[0].Objectives {
			winner = models.TeamRed
		}
	case scores[0].UI+scores[0].UX != scores[1].UI+scores[1].UX:
		if scores[1].UI+scores[1].UX > scores[0].UI+scores[0].UX {
			winner = models.TeamRed
		}
	default:
		scores[0].Tie = true
		scores[1].Tie = true
	}

	g.Storage.Meta = &models.GameMeta{
		WinningTeam: &winner,
		TeamScores:  scores,
	}
}

// Results splits the assigned players of a finished game into the winning and
// losing side, for crediting their win/loss counters. Both slices are empty
// when the game has no computed outcome yet or the outcome was a dead heat.
func Results(g *models.Game) (winners, losers []uuid.UUID) {
	meta := g.Storage.Meta
	if meta == nil || meta.WinningTeam == nil {
		return nil, nil
	}
	for _, score := range meta.TeamScores {
		if score.Tie {
			return nil, nil
		}
	}

	for _, player := range g.Storage.Players {
		if player.Team == *meta.WinningTeam {
			winners = append(winners, player.ID)
		} else {
			losers = append(losers, player.ID)
		}
	}
	return winners, losers
}

func scoreTeam(team models.TeamEntry) models.TeamScore {
	score := models.TeamScore{}
	for _, state := range team.Objectives {
		if state == models.ObjectiveComplete {
			score.Objectives++
		}
	}
	if team.Votes != nil {
		score.UI = team.Votes.UI
		score.UX = team.Votes.UX
	}
	return score
}

// Patch lists the only game fields a moderator may change. Nil fields keep
// their previous values; the merge is shallow: a provided teams or objectives
// map replaces the old one wholesale.
type Patch struct {
	Title      *string                     `json:"title"`
	Mode       *models.GameMode            `json:"mode"`
	VideoURL   *string                     `json:"videoUrl"`
	Objectives map[string]models.Objective `json:"objectives"`
	Teams      map[string]models.TeamEntry `json:"teams"`
	Meta       *models.GameMeta            `json:"meta"`
}

// ApplyPatch merges a partial update into the game and its storage document.
func ApplyPatch(g *models.Game, patch Patch) {
	if patch.Title != nil {
		g.Storage.Title = *patch.Title
	}
	if patch.Mode != nil {
		g.Mode = *patch.Mode
		g.Storage.Mode = *patch.Mode
	}
	if patch.VideoURL != nil {
		g.VideoURL = patch.VideoURL
	}
	if patch.Objectives != nil {
		g.Storage.Objectives = patch.Objectives
	}
	if patch.Teams != nil {
		g.Storage.Teams = patch.Teams
	}
	if patch.Meta != nil {
		g.Storage.Meta = patch.Meta
	}
}
