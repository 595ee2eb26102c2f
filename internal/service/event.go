package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/meets/meets-go/internal/model"
	"github.com/meets/meets-go/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
	ErrInvalidSort   = errors.New("sortBy must be DATE_POSTED or EVENT_DATE")
	ErrEventNotFound = errors.New("event not found")
)

// EventService serves the meet feed, registrations and meet creation.
type EventService struct {
	repo     *repository.EventRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(repo *repository.EventRepository) *EventService {
	return &EventService{
		repo:     repo,
		validate: newValidator(),
		now:      time.Now,
	}
}

// resolveFeedQuery checks req and turns it into a repository query. callerID
// is empty for anonymous callers.
func resolveFeedQuery(callerID string, req model.ListEventsRequest) (model.FeedQuery, error) {
	limit := DefaultPageSize
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit < 1 || limit > MaxPageSize {
		return model.FeedQuery{}, ErrInvalidLimit
	}

	sortBy := model.SortBy(req.SortBy)
	switch sortBy {
	case "":
		sortBy = model.SortByDatePosted
	case model.SortByDatePosted, model.SortByEventDate:
	default:
		return model.FeedQuery{}, ErrInvalidSort
	}

	q := model.FeedQuery{
		Limit:  limit,
		Cursor: strings.TrimSpace(req.Cursor),
		SortBy: sortBy,
	}
	if req.Registered {
		if callerID == "" {
			return model.FeedQuery{}, ErrAuthRequired
		}
		q.AttendeeID = callerID
	}
	return q, nil
}

// ListEvents returns one page of the feed. The returned cursor is the id of
// the last event on the page and is nil when no further page exists.
func (s *EventService) ListEvents(ctx context.Context, callerID string, req model.ListEventsRequest) (model.EventPage, error) {
	q, err := resolveFeedQuery(callerID, req)
	if err != nil {
		return model.EventPage{}, err
	}

	limit := q.Limit
	q.Limit++ // look-ahead row tells whether another page exists
	events, err := s.repo.ListFeed(ctx, q)
	if err != nil {
		return model.EventPage{}, err
	}

	page := model.EventPage{Data: []model.EventResponse{}}
	if len(events) > limit {
		events = events[:limit]
		page.HasMore = true
	}
	if len(events) == 0 {
		return page, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	stats, err := s.repo.AttendanceStats(ctx, ids, callerID)
	if err != nil {
		return model.EventPage{}, err
	}

	page.Data = make([]model.EventResponse, len(events))
	for i := range events {
		st := stats[events[i].ID]
		events[i].NumAttendees = st.Count
		events[i].Registered = st.Attending
		page.Data[i] = toEventResponse(events[i], callerID != "")
	}

	if page.HasMore {
		last := events[len(events)-1].ID
		page.Cursor = &last
	}
	return page, nil
}

// Register records that callerID attends eventID. Registering again is a no-op.
func (s *EventService) Register(ctx context.Context, callerID, eventID string) error {
	if callerID == "" {
		return ErrAuthRequired
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return ErrEventNotFound
	}

	err := s.repo.AddAttendee(ctx, eventID, callerID, s.now().UTC().Truncate(time.Microsecond))
	if errors.Is(err, repository.ErrEventNotFound) {
		return ErrEventNotFound
	}
	return err
}

// CreateEvent validates req and stores a new event coordinated by callerID.
func (s *EventService) CreateEvent(ctx context.Context, callerID string, req model.CreateEventRequest) (string, error) {
	if callerID == "" {
		return "", ErrAuthRequired
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Type = strings.TrimSpace(req.Type)
	req.Tags = cleanList(req.Tags)
	req.Images = cleanList(req.Images)

	if err := validateStruct(s.validate, req); err != nil {
		return "", err
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return "", &ValidationError{Fields: map[string]string{"date": "must be a valid date"}}
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	event := &model.Event{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		LocationName:  req.Location,
		Date:          date.Truncate(time.Microsecond),
		Type:          model.EventType(req.Type),
		Images:        req.Images,
		Tags:          req.Tags,
		CoordinatorID: callerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return "", err
	}
	return event.ID, nil
}

func toEventResponse(e model.FeedEvent, withViewer bool) model.EventResponse {
	resp := model.EventResponse{
		ID:            e.ID,
		Name:          e.Name,
		Description:   e.Description,
		LocationName:  e.LocationName,
		Date:          e.Date,
		Type:          e.Type,
		Images:        e.Images,
		Tags:          e.Tags,
		CoordinatorID: e.CoordinatorID,
		Coordinator: model.CoordinatorResponse{
			Name:           e.CoordinatorName,
			ProfilePicture: e.CoordinatorPicture,
		},
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
		NumAttendees: e.NumAttendees,
	}
	if withViewer {
		registered := e.Registered
		resp.Registered = &registered
	}
	return resp
}
