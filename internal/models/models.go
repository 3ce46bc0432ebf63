package models

import "time"

// QuestStatus is the lifecycle state of a quest card.
// "completed" is reserved: no writer ever sets it, completion is modeled as
// deletion of the quest row inside the discovery transaction.
type QuestStatus string

const (
	QuestStatusLocked    QuestStatus = "locked"
	QuestStatusCompleted QuestStatus = "completed"
)

// Location is a GPS position attached to a discovery.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// User represents an anonymous identity in the system
type User struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogCard is the immutable definition of a collectible card.
// Seeded once by the catalog tooling; never mutated by this service.
type CatalogCard struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Ordinal     int     `json:"ordinal"`
	Description string  `json:"description"`
	ArtKey      *string `json:"-"`
}

// FoundCard is a user's concrete discovery of a catalog card.
// At most one exists per (owner_id, card_id); the discovery engine enforces
// this before insert, the table does not.
type FoundCard struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CardID    string    `json:"card_id"`
	Location  Location  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestCard is a pending claim on a catalog card, created by accepting a
// shared link. It is deleted when the quest owner scans the matching code.
type QuestCard struct {
	ID                  string      `json:"id"`
	QuestOwnerID        string      `json:"quest_owner_id"`
	OriginalFoundCardID string      `json:"original_found_card_id"`
	CardID              string      `json:"card_id"`
	Location            Location    `json:"location"`
	Status              QuestStatus `json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
}

// Assignment maps one of a user's phone contacts to an owned card.
// At most one active assignment per (user_id, contact_id); re-assignment
// replaces the previous row.
type Assignment struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ContactID      string    `json:"contact_id"`
	ContactName    string    `json:"contact_name"`
	AssignedCardID string    `json:"assigned_card_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// PhoneContact is a device-side contact supplied by the client for merging.
// The server never stores these.
type PhoneContact struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// MergedCard is the deck view projection: one entry per catalog card with
// the viewer's ownership state attached.
type MergedCard struct {
	Card      CatalogCard `json:"card"`
	Found     bool        `json:"found"`
	FoundCard *FoundCard  `json:"found_card,omitempty"`
	ArtURL    string      `json:"art_url,omitempty"`
}

// ContactAssignment is the resolved assignment shown on a merged contact.
type ContactAssignment struct {
	AssignmentID string `json:"assignment_id"`
	CardID       string `json:"card_id"`
	CardName     string `json:"card_name"`
}

// MergedContact is the contacts view projection: a phone contact with its
// assignment resolved to a catalog card name, if any.
type MergedContact struct {
	PhoneContact
	Assignment *ContactAssignment `json:"assignment,omitempty"`
}

// MapMarker is a single pin on the map view.
type MapMarker struct {
	ID       string   `json:"id"`
	CardID   string   `json:"card_id"`
	Location Location `json:"location"`
}

// MapMarkers splits the map view into the two disjoint pin sets: cards the
// user owns and quests still pending. Keyed by record id, never card id.
type MapMarkers struct {
	Owned []MapMarker `json:"owned"`
	Quest []MapMarker `json:"quest"`
}
