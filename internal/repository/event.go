package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meets/meets-go/internal/model"
)

var ErrEventNotFound = errors.New("event not found")

// sortColumns maps each feed order onto the column it sorts by. Every order is
// descending with the event id as tie-break, which makes it total.
var sortColumns = map[model.SortBy]string{
	model.SortByDatePosted: "created_at",
	model.SortByEventDate:  "date",
}

// EventRepository handles event and attendance persistence operations.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event. The caller assigns the ID and timestamps.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	images, err := encodeList(e.Images)
	if err != nil {
		return err
	}
	tags, err := encodeList(e.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO events
		(id, name, description, location_name, date, type, images, tags, coordinator_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.LocationName, e.Date.UTC(), string(e.Type),
		images, tags, e.CoordinatorID, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// buildFeedQuery renders the keyset query for q. It fetches q.Limit rows, so
// callers wanting a look-ahead row pass Limit+1.
func buildFeedQuery(q model.FeedQuery) (string, []any, error) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		return "", nil, fmt.Errorf("unknown sort order %q", q.SortBy)
	}

	var (
		sb    strings.Builder
		args  []any
		conds []string
	)

	sb.WriteString(`SELECT e.id, e.name, e.description, e.location_name, e.date, e.type,
		e.images, e.tags, e.coordinator_id, e.created_at, e.updated_at,
		u.name, u.profile_picture
		FROM events e
		JOIN users u ON u.id = e.coordinator_id`)

	if q.Cursor != "" {
		// Joining the cursor row yields nothing when the id is unknown, so a
		// stale cursor ends the listing instead of restarting it.
		sb.WriteString(`
		JOIN events c ON c.id = ?`)
		args = append(args, q.Cursor)
		conds = append(conds, fmt.Sprintf("(e.%[1]s < c.%[1]s OR (e.%[1]s = c.%[1]s AND e.id < c.id))", col))
	}

	if q.AttendeeID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM attendance a WHERE a.event_id = e.id AND a.user_id = ?)")
		args = append(args, q.AttendeeID)
	}

	if len(conds) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	fmt.Fprintf(&sb, "\n\t\tORDER BY e.%s DESC, e.id DESC\n\t\tLIMIT ?", col)
	args = append(args, q.Limit)

	return sb.String(), args, nil
}

// ListFeed returns up to q.Limit events in feed order, starting strictly after
// q.Cursor. Attendance fields are left zero; see AttendanceStats.
func (r *EventRepository) ListFeed(ctx context.Context, q model.FeedQuery) ([]model.FeedEvent, error) {
	query, args, err := buildFeedQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()

	events := make([]model.FeedEvent, 0, q.Limit)
	for rows.Next() {
		var (
			e            model.FeedEvent
			eventType    string
			images, tags string
		)
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.LocationName, &e.Date, &eventType,
			&images, &tags, &e.CoordinatorID, &e.CreatedAt, &e.UpdatedAt,
			&e.CoordinatorName, &e.CoordinatorPicture,
		); err != nil {
			return nil, fmt.Errorf("scanning feed row: %w", err)
		}
		e.Type = model.EventType(eventType)
		if e.Images, err = decodeList(images); err != nil {
			return nil, err
		}
		if e.Tags, err = decodeList(tags); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// AttendanceStat is the attendance summary of one event.
type AttendanceStat struct {
	Count int
	// Attending reports whether the viewer passed to AttendanceStats attends.
	Attending bool
}

// AttendanceStats counts attendees of each event in eventIDs with one grouped
// query and flags the events viewerID attends. Events without attendees are
// absent from the result.
func (r *EventRepository) AttendanceStats(ctx context.Context, eventIDs []string, viewerID string) (map[string]AttendanceStat, error) {
	stats := make(map[string]AttendanceStat, len(eventIDs))
	if len(eventIDs) == 0 {
		return stats, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(eventIDs)), ", ")
	query := `SELECT event_id, COUNT(*), SUM(CASE WHEN user_id = ? THEN 1 ELSE 0 END)
		FROM attendance
		WHERE event_id IN (` + placeholders + `)
		GROUP BY event_id`

	args := make([]any, 0, len(eventIDs)+1)
	args = append(args, viewerID)
	for _, id := range eventIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			count    int64
			attended int64
		)
		if err := rows.Scan(&id, &count, &attended); err != nil {
			return nil, fmt.Errorf("scanning attendee count: %w", err)
		}
		stats[id] = AttendanceStat{Count: int(count), Attending: attended > 0}
	}

	return stats, rows.Err()
}

// AddAttendee records that userID attends eventID. Registering twice, or
// concurrently, leaves exactly one edge and is not an error. Returns
// ErrEventNotFound if the event does not exist.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string, at time.Time) error {
	query := r.db.insertIgnore() + ` INTO attendance (user_id, event_id, created_at)
		SELECT ?, id, ? FROM events WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, at.UTC(), eventID)
	if err != nil {
		return fmt.Errorf("adding attendee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing inserted: either the edge already existed or the event is missing.
	exists, err := r.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrEventNotFound
	}
	return nil
}

// Exists reports whether an event with the given id exists.
func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("looking up event: %w", err)
	}
	return true, nil
}

// CountAttendees returns the number of users attending eventID.
func (r *EventRepository) CountAttendees(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance WHERE event_id = ?`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting attendees: %w", err)
	}
	return n, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list column: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding list column: %w", err)
	}
	return items, nil
}
