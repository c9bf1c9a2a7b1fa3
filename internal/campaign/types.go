// Package campaign stores the campaign records managed by the desk:
// campaigns, contacts, agenda events and saved strategic responses.
package campaign

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid is returned when a record fails validation.
	ErrInvalid = errors.New("invalid record")
)

// CampaignStatus is the lifecycle stage of a campaign.
type CampaignStatus string

const (
	StatusActive    CampaignStatus = "active"
	StatusPlanned   CampaignStatus = "planned"
	StatusCompleted CampaignStatus = "completed"
)

// ContactLevel is the engagement level of a contact.
type ContactLevel string

const (
	LevelSupporter ContactLevel = "supporter"
	LevelVolunteer ContactLevel = "volunteer"
	LevelDonor     ContactLevel = "donor"
	LevelLeader    ContactLevel = "leader"
)

// EventType classifies an agenda event.
type EventType string

const (
	EventRally      EventType = "rally"
	EventMeeting    EventType = "meeting"
	EventCanvassing EventType = "canvassing"
	EventOther      EventType = "other"
)

var (
	validStatuses = map[CampaignStatus]bool{StatusActive: true, StatusPlanned: true, StatusCompleted: true}
	validLevels   = map[ContactLevel]bool{LevelSupporter: true, LevelVolunteer: true, LevelDonor: true, LevelLeader: true}
	validTypes    = map[EventType]bool{EventRally: true, EventMeeting: true, EventCanvassing: true, EventOther: true}
)

// Campaign is a planned or running campaign.
type Campaign struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	StartDate      string         `json:"start_date" example:"2025-01-15"`
	EndDate        string         `json:"end_date" example:"2025-03-01"`
	Status         CampaignStatus `json:"status"`
	Budget         string         `json:"budget"`
	TargetAudience string         `json:"target_audience"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Contact is a person in the campaign network.
type Contact struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Location  string       `json:"location"`
	Level     ContactLevel `json:"level"`
	CreatedAt time.Time    `json:"created_at"`
}

// Event is an agenda entry.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date" example:"2024-12-15"`
	Time      string    `json:"time" example:"18:00"`
	Location  string    `json:"location"`
	Type      EventType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedResponse is a generated briefing kept for later reference.
type SavedResponse struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Situation string    `json:"situation"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a list. Query matches case-insensitively against the
// record's text fields; Kind matches status, level or type exactly.
type Filter struct {
	Query string
	Kind  string
}

func (c *Campaign) validate() error {
	if c.Name == "" || c.StartDate == "" || c.EndDate == "" {
		return fmt.Errorf("%w: name, start_date and end_date are required", ErrInvalid)
	}
	if c.Status == "" {
		c.Status = StatusPlanned
	}
	if !validStatuses[c.Status] {
		return fmt.Errorf("%w: status must be active, planned or completed", ErrInvalid)
	}
	return nil
}

func (c *Contact) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if c.Level == "" {
		c.Level = LevelSupporter
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("%w: level must be supporter, volunteer, donor or leader", ErrInvalid)
	}
	return nil
}

func (e *Event) validate() error {
	if e.Title == "" || e.Date == "" {
		return fmt.Errorf("%w: title and date are required", ErrInvalid)
	}
	if e.Type == "" {
		e.Type = EventOther
	}
	if !validTypes[e.Type] {
		return fmt.Errorf("%w: type must be rally, meeting, canvassing or other", ErrInvalid)
	}
	return nil
}

func (r *SavedResponse) validate() error {
	if r.Situation == "" || r.Response == "" {
		return fmt.Errorf("%w: situation and response are required", ErrInvalid)
	}
	return nil
}
