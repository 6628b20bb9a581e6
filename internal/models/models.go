// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents a competitive live-coding platform where:
//   - Users register, verify their email, and apply to play in scheduled games
//   - A GameSchedule is a planned future game slot with its own lifecycle
//   - Activating a schedule spawns exactly one Game
//   - A Game pits two teams (blue and red) of up to three editors each
//     (one per language: html, css, js) against one another on a set of objectives
//
// The `setup` document on a schedule and the `storage` document on a game are
// typed JSONB documents — see storage.go for their schemas.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	// Using UUIDs instead of auto-incrementing integers makes IDs safe to generate
	// client-side and avoids leaking record counts to end users.
	"github.com/google/uuid"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string
// type plus constants. The values are stored as-is in the database, which keeps rows
// human-readable when debugging.

// UserRole represents a user's global permission level across the entire platform.
// Roles form a total order (see roles.go): PENDING < USER < MODERATOR < ADMIN.
type UserRole string

const (
	UserRolePending   UserRole = "PENDING"   // Registered but email not yet verified
	UserRoleUser      UserRole = "USER"      // Verified player: can apply to games
	UserRoleModerator UserRole = "MODERATOR" // Can manage schedules and games
	UserRoleAdmin     UserRole = "ADMIN"     // Full access, including destructive game operations
)

// GameStatus tracks the lifecycle of both schedules and games.
// A schedule starts SCHEDULED and moves through ACTIVE to ENDED; the game it
// spawns starts in whatever status activation set (normally ACTIVE) and can
// only move forward to ENDED.
type GameStatus string

const (
	GameStatusScheduled GameStatus = "SCHEDULED"
	GameStatusActive    GameStatus = "ACTIVE"
	GameStatusEnded     GameStatus = "ENDED"
)

// GameMode describes the ruleset a game is played under.
type GameMode string

const (
	GameModeClassic   GameMode = "Classic"    // Standard timed build-off
	GameModeBlitz     GameMode = "Blitz"      // Short-format game
	GameModeZenGarden GameMode = "Zen Garden" // CSS-only showcase format
)

// EditorLanguage is the language an editor slot is responsible for.
// Every team has exactly one slot per language.
type EditorLanguage string

const (
	EditorLanguageHTML EditorLanguage = "html"
	EditorLanguageCSS  EditorLanguage = "css"
	EditorLanguageJS   EditorLanguage = "js"
)

// Fixed team identifiers. Every game has exactly these two teams.
const (
	TeamBlue = 0
	TeamRed  = 1
)

// --- Models ---
// Each struct below maps to a database table. GORM uses the struct name (snake_cased
// and pluralized) as the table name by default: User -> users, Game -> games, etc.

// User represents a registered person in the system.
// New accounts start in the PENDING role and are promoted to USER once the
// email verification token is redeemed. Password and Token are never
// serialized to callers (`json:"-"`).
type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username   string     `gorm:"uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"` // bcrypt hash, never the raw password
	Role       UserRole   `gorm:"type:user_role;not null;default:'PENDING'" json:"role"`
	Token      *string    `json:"-"` // Current session token; nil when signed out
	AvatarURL  *string    `json:"avatarUrl"`
	LastSignIn *time.Time `json:"lastSignIn"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Profile      *UserProfile      `gorm:"foreignKey:UserID" json:"-"`
	GameStats    *UserGameStats    `gorm:"foreignKey:UserID" json:"-"`
	Applications []GameApplication `gorm:"foreignKey:UserID" json:"-"`
}

// UserProfile holds the optional public-facing details of a user.
// Kept in its own table so the hot users table stays narrow.
type UserProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	About     *string   `json:"about"`
	Company   *string   `json:"company"`
	ForHire   bool      `gorm:"not null;default:false" json:"forHire"`
	Skills    SkillSet  `gorm:"type:jsonb;not null;default:'{}'" json:"skills"` // Self-rated 1..5 per language
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserGameStats accumulates a user's historical results. The auto-assignment
// ranker reads these counters when balancing teams.
type UserGameStats struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Wins   int       `gorm:"not null;default:0" json:"wins"`
	Losses int       `gorm:"not null;default:0" json:"losses"`
}

// EmailVerification is a one-shot token row created at registration (and on
// reverify). Redeeming it promotes the linked user from PENDING to USER and
// deletes the row in the same transaction.
type EmailVerification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	User      User      `gorm:"foreignKey:UserID"`
	Token     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// GameSchedule is a planned future game slot. Its lifecycle is independent of
// the game it eventually spawns:
//
//	SCHEDULED --activate--> ACTIVE --end--> ENDED
//
// Activation is only legal from SCHEDULED with no linked game, and creates the
// Game as a side effect. Deletion is only legal while SCHEDULED with no game.
type GameSchedule struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Status    GameStatus    `gorm:"type:game_status;not null;default:'SCHEDULED'" json:"status"`
	Setup     ScheduleSetup `gorm:"type:jsonb;not null" json:"setup"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	// At most one game per schedule; the foreign key lives on the game row.
	Game *Game `gorm:"foreignKey:ScheduleID" json:"game,omitempty"`
}

// Game is a single live-coding match. Created only as a side effect of
// activating its schedule; the one-to-one is enforced by the unique index on
// ScheduleID.
type Game struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Schedule   *GameSchedule `gorm:"foreignKey:ScheduleID" json:"-"`
	Season     int           `gorm:"not null" json:"season"` // 1..3
	Mode       GameMode      `gorm:"type:game_mode;not null" json:"mode"`
	Status     GameStatus    `gorm:"type:game_status;not null" json:"status"`
	VideoURL   *string       `json:"videoUrl"`
	Storage    GameStorage   `gorm:"type:jsonb;not null" json:"storage"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// GameApplication records a user's request to play in a given schedule.
// Read-only input to auto-assignment; never mutated by it. The composite
// unique index stops a user applying twice to the same schedule.
type GameApplication struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_schedule_user" json:"-"`
	Schedule   GameSchedule `gorm:"foreignKey:ScheduleID" json:"-"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_schedule_user" json:"-"`
	User       User         `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt  time.Time    `json:"createdAt"`
}
