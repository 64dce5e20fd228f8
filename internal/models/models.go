// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents a pelada (informal soccer) organizing platform where:
//   - Users create and join Events (a pelada IS an Event)
//   - EventPlayers track who RSVP'd and who actually showed up
//   - Payments track PIX receipts for paid events and their review status
//   - Evaluations record peer skill ratings; SelfEvaluations hold self-ratings
//   - Teams and TeamMembers store the match-day draft output
//
// There is no separate "group" or "league" concept — a recurring weekly pelada is just
// an Event with the Recurring flag set. This keeps the hierarchy flat: Event → players,
// payments, and per-match-day teams.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	// Using UUIDs instead of auto-incrementing integers makes IDs safe to generate
	// client-side and avoids leaking record counts to end users.
	"github.com/google/uuid"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. This gives us type safety — you can't accidentally pass a UserRole
// where an EventStatus is expected — while keeping the values human-readable in the database.

// UserRole represents a user's global permission level across the entire platform.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"   // Full access: manage users, events, everything
	UserRoleManager UserRole = "manager" // Can see and moderate any event
	UserRoleUser    UserRole = "user"    // Regular player: can create peladas, join, and rate friends
)

// Position is a player's preferred spot on the field. Informational only — the
// team balancer ignores it and distributes purely by skill score.
type Position string

const (
	PositionGoalkeeper   Position = "goalkeeper"
	PositionDefender     Position = "defender"
	PositionFullback     Position = "fullback"
	PositionDefensiveMid Position = "defensive_mid"
	PositionAttackingMid Position = "attacking_mid"
	PositionForward      Position = "forward"
)

// EventStatus tracks the lifecycle of a pelada.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"  // Scheduled but hasn't happened yet
	EventStatusActive    EventStatus = "active"    // Match day in progress
	EventStatusCompleted EventStatus = "completed" // The pelada has finished
	EventStatusCancelled EventStatus = "cancelled" // Called off before it happened
)

// EventPlayerRole controls what a user can do within a specific event.
// This is separate from UserRole (which is a global platform role).
// An "organizer" can edit the event, review payments, toggle presence, and draft teams.
// A "player" can RSVP and pay but not manage.
type EventPlayerRole string

const (
	EventPlayerRoleOrganizer EventPlayerRole = "organizer" // Can manage this event
	EventPlayerRolePlayer    EventPlayerRole = "player"    // Participant only
)

// RSVPStatus tracks a player's own answer to "are you coming?".
// Distinct from PresenceConfirmed, which is the organizer's match-day attestation
// that the player actually showed up.
type RSVPStatus string

const (
	RSVPStatusInvited    RSVPStatus = "invited"    // Added to the roster but hasn't answered
	RSVPStatusConfirmed  RSVPStatus = "confirmed"  // Coming
	RSVPStatusDeclined   RSVPStatus = "declined"   // Not coming
	RSVPStatusWaitlisted RSVPStatus = "waitlisted" // Wants to come but the roster is full
)

// PaymentStatus tracks the review lifecycle of a PIX payment.
// No money moves through this system: a player uploads a receipt image to external
// storage and an organizer manually confirms or cancels it.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // Created, no receipt submitted yet
	PaymentStatusInReview  PaymentStatus = "in_review" // Receipt submitted, waiting on an organizer
	PaymentStatusConfirmed PaymentStatus = "confirmed" // Organizer approved the receipt
	PaymentStatusCanceled  PaymentStatus = "canceled"  // Organizer rejected it (or the player gave up)
	PaymentStatusRefunded  PaymentStatus = "refunded"  // Confirmed earlier, then returned
)

// PixKeyType identifies what kind of PIX key the event collects payments on.
// PIX keys can be a CPF/CNPJ (tax ID), phone number, email, or a random key.
type PixKeyType string

const (
	PixKeyTypeCPF    PixKeyType = "cpf"
	PixKeyTypeCNPJ   PixKeyType = "cnpj"
	PixKeyTypePhone  PixKeyType = "phone"
	PixKeyTypeEmail  PixKeyType = "email"
	PixKeyTypeRandom PixKeyType = "random"
)

// NotificationKind says what a notification is about, so the app can deep-link it.
type NotificationKind string

const (
	NotificationKindTeamAssigned  NotificationKind = "team_assigned"  // "You are on team X"
	NotificationKindPaymentReview NotificationKind = "payment_review" // Payment confirmed/canceled
	NotificationKindNewFollower   NotificationKind = "new_follower"   // Someone followed you
)

// --- Models ---
// Each struct below maps to a database table. GORM uses the struct name (snake_cased and
// pluralized) as the table name by default: User -> users, Event -> events, etc.

// User represents a registered person in the system.
// Users are created automatically the first time a Clerk-authenticated user hits the API.
// The ClerkID links our internal record to Clerk's identity system.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"` // UUID primary key; the DB generates it automatically
	ClerkID     *string   `gorm:"uniqueIndex:idx_users_clerk_id"`                 // Clerk's user ID (e.g. "user_2abc123"); pointer = nullable for legacy rows
	DisplayName string    `gorm:"not null"`                                       // The name shown in the app; populated from the Clerk JWT "name" claim
	Email       string    `gorm:"uniqueIndex;not null"`                           // Unique email; populated from the Clerk JWT "email" claim
	AvatarURL   *string   // Optional profile picture URL (external object storage); pointer means it can be NULL in the DB
	Position    *Position `gorm:"type:player_position"`                   // Preferred field position; nullable because many players never set one
	Role        UserRole  `gorm:"type:user_role;not null;default:'user'"` // Global role; synced from Clerk publicMetadata via the JWT "role" claim
	CreatedAt   time.Time // GORM automatically sets this on create
	UpdatedAt   time.Time // GORM automatically updates this on every save
}

// Event is a pelada — one scheduled informal match (or a recurring weekly one).
//
// Payment fields: when RequiresPayment is true, each player must have a confirmed
// Payment before they can change their RSVP (the presence gate enforces this).
// PriceCents is stored in centavos to avoid floating-point money.
// The PIX fields feed the "copia e cola" BR Code generator so players can pay
// the organizer directly; the app itself never moves money.
type Event struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string      `gorm:"not null"`
	Description     *string     // Optional long-form description; pointer = nullable
	VenueName       string      `gorm:"not null;default:''"` // e.g. "Quadra do Parque"
	VenueAddress    string      `gorm:"not null;default:''"` // Free-form street address; geocoding happens client-side
	ScheduledAt     time.Time   `gorm:"not null"`            // Kickoff date and time
	Recurring       bool        `gorm:"not null;default:false"` // Weekly pelada at the same slot
	MaxPlayers      int         `gorm:"not null;default:0"`     // 0 = unlimited; beyond this, new RSVPs are waitlisted
	RequiresPayment bool        `gorm:"not null;default:false"`
	PriceCents      int         `gorm:"not null;default:0"` // Per-player price in centavos (R$ 15,00 = 1500)
	PixKey          *string     // The organizer's PIX key; nil for free events
	PixKeyType      *PixKeyType `gorm:"type:pix_key_type"`
	PixCity         *string     // Merchant city embedded in the BR Code payload
	Status          EventStatus `gorm:"type:event_status;not null;default:'upcoming'"`
	CreatedBy       uuid.UUID   `gorm:"type:uuid;not null"`   // Foreign key: which user created this event
	Creator         User        `gorm:"foreignKey:CreatedBy"` // GORM relationship: preloads the User struct when queried
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Players         []EventPlayer `gorm:"foreignKey:EventID"` // RSVP roster for this pelada
	Payments        []Payment     `gorm:"foreignKey:EventID"`
	Teams           []Team        `gorm:"foreignKey:EventID"` // Latest match-day draft
}

// EventPlayer links a User to an Event: the RSVP roster.
//
// The Role field controls what the user can do within this event:
//   - EventPlayerRoleOrganizer: edit the event, review payments, draft teams
//   - EventPlayerRolePlayer: participant only
//
// PresenceConfirmed is the organizer's match-day checkbox ("this player actually
// showed up"). It defaults to true for everyone on the roster and the organizer
// toggles it off for no-shows right before drafting teams. It is deliberately
// separate from RSVPStatus, which is the player's own answer.
//
// The unique index (idx_event_user) ensures a user can only be an event_player once per event.
type EventPlayer struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_event_user"` // Combined unique index with UserID
	Event             Event           `gorm:"foreignKey:EventID"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_event_user"`
	User              User            `gorm:"foreignKey:UserID"`
	Role              EventPlayerRole `gorm:"type:event_player_role;not null;default:'player'"` // Permission level within this event
	RSVPStatus        RSVPStatus      `gorm:"type:rsvp_status;not null;default:'invited'"`
	PresenceConfirmed bool            `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Payment is one player's PIX payment attempt for one event.
// The most recent payment per (event, user) is what the presence gate looks at.
//
// ReceiptURL points into external object storage — the receipt image itself never
// touches this API. ValidUntil is optional: organizers of recurring peladas can
// confirm a payment for a month at a time; nil means "valid indefinitely once
// confirmed".
type Payment struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_payments_event_user"`
	Event       Event         `gorm:"foreignKey:EventID"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_payments_event_user"`
	User        User          `gorm:"foreignKey:UserID"`
	AmountCents int           `gorm:"not null"` // Copied from the event's price at submission time
	Status      PaymentStatus `gorm:"type:payment_status;not null;default:'pending'"`
	ReceiptURL  *string       // Link to the uploaded receipt image; nil until submitted
	ValidUntil  *time.Time    // Confirmed payments may expire (monthly peladas); nil = no expiry
	ReviewedBy  *uuid.UUID    `gorm:"type:uuid"` // Which organizer confirmed/canceled it
	Reviewer    *User         `gorm:"foreignKey:ReviewedBy"`
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Evaluation is one peer-submitted skill rating of one player.
// All five sub-scores are required (the app's rating form submits a full card)
// and constrained to [0.5, 5.0] in 0.5 steps — enforced by the handler on the
// way in, not re-validated by the score resolver.
//
// The unique index (idx_eval_once) lets each evaluator rate a given player once
// per event; re-rating updates the existing row.
type Evaluation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_eval_once"`
	Event       Event     `gorm:"foreignKey:EventID"`
	EvaluatorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_eval_once"` // Who is rating
	Evaluator   User      `gorm:"foreignKey:EvaluatorID"`
	EvaluatedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_eval_once"` // Who is being rated
	Evaluated   User      `gorm:"foreignKey:EvaluatedID"`
	Defense     float64   `gorm:"type:decimal(2,1);not null"`
	Speed       float64   `gorm:"type:decimal(2,1);not null"`
	Passing     float64   `gorm:"type:decimal(2,1);not null"`
	Shooting    float64   `gorm:"type:decimal(2,1);not null"`
	Dribbling   float64   `gorm:"type:decimal(2,1);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SelfEvaluation is a player's own rating of themselves — one row per user.
// Unlike peer Evaluations, any subset of the five sub-scores may be filled in,
// so every column is a nullable pointer. The score resolver averages whatever
// is present and falls back to a fixed default when nothing is.
type SelfEvaluation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	User      User      `gorm:"foreignKey:UserID"`
	Defense   *float64  `gorm:"type:decimal(2,1)"`
	Speed     *float64  `gorm:"type:decimal(2,1)"`
	Passing   *float64  `gorm:"type:decimal(2,1)"`
	Shooting  *float64  `gorm:"type:decimal(2,1)"`
	Dribbling *float64  `gorm:"type:decimal(2,1)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team is one side produced by the match-day draft for an event.
// Re-running the draft deletes and replaces the event's previous teams, so the
// set of Team rows for an event always reflects the latest draft.
type Team struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Event        Event     `gorm:"foreignKey:EventID"`
	TeamNumber   int       `gorm:"not null"`                   // 1-based display order
	ColorLabel   string    `gorm:"not null"`                   // Vest color from the fixed palette (e.g. "yellow")
	AverageScore float64   `gorm:"type:decimal(3,2);not null"` // Mean skill score of the team's members
	CreatedAt    time.Time
	Members      []TeamMember `gorm:"foreignKey:TeamID"`
}

// TeamMember places one user on one drafted team and records the score the
// balancer used for them plus the order they were picked in (useful for showing
// how the serpentine draft played out).
type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Team      Team      `gorm:"foreignKey:TeamID"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	Score     float64   `gorm:"type:decimal(3,2);not null"` // The resolved skill score at draft time
	PickOrder int       `gorm:"not null"`                   // 1-based position in the team's pick sequence
	CreatedAt time.Time
}

// Notification is an in-app message for one user (team assignment, payment
// review result, new follower). Delivery to push/realtime channels is the
// websocket hub's job; this row is the durable copy.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	User      User             `gorm:"foreignKey:UserID"`
	Kind      NotificationKind `gorm:"type:notification_kind;not null"`
	Title     string           `gorm:"not null"`
	Body      string           `gorm:"not null;default:''"`
	EventID   *uuid.UUID       `gorm:"type:uuid"` // Optional deep-link target
	Read      bool             `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// Follower is one edge in the friend graph: FollowerID follows FollowedID.
// Composite primary key prevents duplicate follows.
type Follower struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowedID uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowerU  User      `gorm:"foreignKey:FollowerID"`
	FollowedU  User      `gorm:"foreignKey:FollowedID"`
	CreatedAt  time.Time
}
