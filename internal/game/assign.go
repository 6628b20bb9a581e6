// assign.go — greedy player-to-team auto-assignment.
//
// Given an active game and the accepted applications for its schedule, the
// assignment partitions the ranked applicants into the two teams and maps
// each team's picks onto its three editor slots (html, css, js) in ranked
// order. Picks alternate between blue and red down the ranking so the
// strongest players are split across teams.
package game

import (
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/codeclash/codeclash-api/internal/models"
)

// slotCount is the fixed number of editor slots per game: two teams of three.
const slotCount = 6

// slotLanguages maps a team's pick order onto the slot language: the team's
// strongest pick takes html, then css, then js.
var slotLanguages = [3]models.EditorLanguage{
	models.EditorLanguageHTML,
	models.EditorLanguageCSS,
	models.EditorLanguageJS,
}

// AutoAssign rewrites the game's players and editors maps from the ranked
// applicants. Preconditions: the game is ACTIVE, belongs to a schedule, and
// has no editors assigned yet — violating any of these returns a
// precondition error and leaves the game untouched.
//
// With fewer than six applicants only the available slots are filled and the
// remaining editor entries are omitted entirely; there is no minimum
// applicant count. Duplicate applications from the same user are ignored.
func AutoAssign(g *models.Game, applicants []Applicant, ranker Ranker) error {
	if g.Status != models.GameStatusActive {
		return ErrGameNotActive
	}
	if g.ScheduleID == uuid.Nil {
		return ErrGameMissingSchedule
	}
	if len(g.Storage.Editors) > 0 {
		return ErrAlreadyAssigned
	}

	// De-duplicate by user id, keeping the first occurrence of each.
	seen := mapset.NewSet[uuid.UUID]()
	distinct := make([]Applicant, 0, len(applicants))
	for _, applicant := range applicants {
		if seen.Add(applicant.User.ID) {
			distinct = append(distinct, applicant)
		}
	}

	ranked := ranker.Rank(distinct)
	if len(ranked) > slotCount {
		ranked = ranked[:slotCount]
	}

	players := make(map[string]models.PlayerEntry, len(ranked))
	editors := make(map[string]models.EditorEntry, len(ranked))

	// Alternate picks between the teams: rank 1 -> blue, rank 2 -> red, ...
	// Editor slot ids are fixed: 0..2 blue, 3..5 red.
	var picks [2]int
	for i, applicant := range ranked {
		team := i % 2
		slot := team*3 + picks[team]
		language := slotLanguages[picks[team]]
		picks[team]++

		playerID := applicant.User.ID
		editors[strconv.Itoa(slot)] = models.EditorEntry{
			ID:       slot,
			Team:     team,
			Language: language,
			Player:   &playerID,
		}
		players[playerID.String()] = models.PlayerEntry{
			ID:       playerID,
			Username: applicant.User.Username,
			Team:     team,
		}
	}

	g.Storage.Players = players
	g.Storage.Editors = editors
	return nil
}
