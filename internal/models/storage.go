// storage.go — typed JSONB documents persisted alongside the relational columns.
//
// The schedule's `setup` and the game's `storage` are stored as single JSONB
// columns rather than being broken out into tables: their shape changes with
// the game format and they are always read and written as a whole. Each
// document type implements driver.Valuer and sql.Scanner so GORM can move it
// in and out of the jsonb column transparently.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Objective is a single goal both teams race to complete during a game.
type Objective struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	IsBonus     bool   `json:"isBonus"` // Bonus objectives break ties but aren't required
}

// ObjectiveState is a team's progress on one objective.
type ObjectiveState string

const (
	ObjectiveIncomplete ObjectiveState = "incomplete"
	ObjectiveComplete   ObjectiveState = "complete"
)

// TeamVotes holds the audience vote tallies for one team.
type TeamVotes struct {
	UI  int  `json:"ui"`
	UX  int  `json:"ux"`
	Tie bool `json:"tie"`
}

// TeamEntry is one of the two fixed teams (0 blue, 1 red) inside game storage.
type TeamEntry struct {
	ID         int                       `json:"id"`
	Name       string                    `json:"name"`
	Objectives map[string]ObjectiveState `json:"objectives,omitempty"` // objective id -> progress
	Votes      *TeamVotes                `json:"votes,omitempty"`
}

// PlayerEntry records an assigned player and which team they play for.
type PlayerEntry struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Team     int       `json:"team"`
}

// EditorEntry is one of the six fixed (team, language) slots of a game.
// Player is omitted (not null-valued) while the slot is unassigned.
type EditorEntry struct {
	ID       int            `json:"id"` // 0..2 blue, 3..5 red
	Team     int            `json:"team"`
	Language EditorLanguage `json:"language"`
	Player   *uuid.UUID     `json:"player,omitempty"`
}

// Templates carries optional starter code handed to the editors.
type Templates struct {
	HTML string `json:"html,omitempty"`
	CSS  string `json:"css,omitempty"`
	JS   string `json:"js,omitempty"`
}

// TeamScore is the per-team result breakdown written at game end.
type TeamScore struct {
	Objectives int  `json:"objectives"` // Completed objective count
	UI         int  `json:"ui"`
	UX         int  `json:"ux"`
	Tie        bool `json:"tie"`
}

// GameMeta holds the computed outcome of an ended game.
type GameMeta struct {
	WinningTeam *int        `json:"winningTeam,omitempty"`
	TeamScores  []TeamScore `json:"teamScores,omitempty"` // Indexed by team id
}

// GameStorage is the game's working document: everything the live game server
// and spectator clients need in one place.
type GameStorage struct {
	Title      string                 `json:"title"`
	Mode       GameMode               `json:"mode"`
	Teams      map[string]TeamEntry   `json:"teams"`
	Players    map[string]PlayerEntry `json:"players"` // player uuid -> entry
	Editors    map[string]EditorEntry `json:"editors"` // editor slot id -> entry
	Objectives map[string]Objective   `json:"objectives,omitempty"`
	Templates  *Templates             `json:"templates,omitempty"`
	Meta       *GameMeta              `json:"meta,omitempty"`
}

// ScheduleSetup is everything needed to spawn the game when the schedule is
// activated. Title and mode are copied verbatim into the new game's storage.
type ScheduleSetup struct {
	Title      string               `json:"title"`
	Mode       GameMode             `json:"mode"`
	Objectives map[string]Objective `json:"objectives,omitempty"`
	Templates  *Templates           `json:"templates,omitempty"`
	StartTime  *time.Time           `json:"startTime,omitempty"`
}

// SkillSet is a user's self-rated ability (1..5) per editor language.
type SkillSet struct {
	HTML int `json:"html"`
	CSS  int `json:"css"`
	JS   int `json:"js"`
}

// scanJSON unmarshals a jsonb column value ([]byte or string) into dest.
func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported type for jsonb column")
	}
}

// Value / Scan implementations let GORM store each document in a jsonb column.

func (s GameStorage) Value() (driver.Value, error)  { return json.Marshal(s) }
func (s *GameStorage) Scan(value interface{}) error { return scanJSON(value, s) }

func (s ScheduleSetup) Value() (driver.Value, error)  { return json.Marshal(s) }
func (s *ScheduleSetup) Scan(value interface{}) error { return scanJSON(value, s) }

func (s SkillSet) Value() (driver.Value, error)  { return json.Marshal(s) }
func (s *SkillSet) Scan(value interface{}) error { return scanJSON(value, s) }
