package model

import "time"

// EventType distinguishes online meets from physical ones.
type EventType string

const (
	EventTypeVirtual  EventType = "VIRTUAL"
	EventTypeInPerson EventType = "IN_PERSON"
)

// SortBy selects the feed order.
type SortBy string

const (
	SortByDatePosted SortBy = "DATE_POSTED"
	SortByEventDate  SortBy = "EVENT_DATE"
)

// Event represents a meet in the database.
type Event struct {
	ID            string
	Name          string
	Description   string
	LocationName  string
	Date          time.Time
	Type          EventType
	Images        []string
	Tags          []string
	CoordinatorID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FeedEvent is an Event as read for the feed, joined with its coordinator and
// annotated with attendance.
type FeedEvent struct {
	Event
	CoordinatorName    string
	CoordinatorPicture string
	NumAttendees       int
	Registered         bool
}

// FeedQuery is a resolved feed request handed to the repository.
type FeedQuery struct {
	Limit  int
	Cursor string
	SortBy SortBy
	// AttendeeID restricts the feed to events this user attends when non-empty.
	AttendeeID string
}

// CreateEventRequest represents the body of a create-meet request.
type CreateEventRequest struct {
	Name        string   `json:"name" validate:"required,max=191"`
	Description string   `json:"description" validate:"required,max=10000"`
	Location    string   `json:"location" validate:"required,max=512"`
	Date        string   `json:"date" validate:"required,eventdate"`
	Images      []string `json:"images" validate:"max=20,dive,max=2048"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=64"`
	Type        string   `json:"type" validate:"required,oneof=VIRTUAL IN_PERSON"`
}

// CreateEventResponse carries the id of a newly created meet.
type CreateEventResponse struct {
	ID string `json:"id"`
}

// ListEventsRequest represents feed query parameters. A nil Limit selects the
// default page size.
type ListEventsRequest struct {
	Limit      *int
	Cursor     string
	SortBy     string
	Registered bool
}

// CoordinatorResponse is the public view of an event's coordinator.
type CoordinatorResponse struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// EventResponse represents a feed entry.
type EventResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	LocationName  string              `json:"locationName"`
	Date          time.Time           `json:"date"`
	Type          EventType           `json:"type"`
	Images        []string            `json:"images"`
	Tags          []string            `json:"tags"`
	CoordinatorID string              `json:"coordinatorId"`
	Coordinator   CoordinatorResponse `json:"coordinator"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	NumAttendees  int                 `json:"numAttendees"`
	// Registered is only set for authenticated callers.
	Registered *bool `json:"registered,omitempty"`
}

// EventPage is one page of the feed.
type EventPage struct {
	Data    []EventResponse `json:"data"`
	HasMore bool            `json:"hasMore"`
	Cursor  *string         `json:"cursor"`
}
