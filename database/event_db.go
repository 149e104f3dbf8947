package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/faceattend/attendbackend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// EventFilter narrows an attendance log listing. Zero values leave the
// corresponding column unfiltered.
type EventFilter struct {
	Status     string
	IdentityID string
	Since      int64 // inclusive lower bound on timestamp, Unix seconds
	Until      int64 // inclusive upper bound on timestamp, Unix seconds
	Limit      uint64
	Offset     uint64
}

// ListEvents returns attendance events newest first, ties broken by
// insertion order (highest internal id first).
func ListEvents(ctx context.Context, db *sql.DB, filter EventFilter) ([]models.AttendanceEvent, error) {
	queryBuilder := psql.Select(
		"id", "event_id", "identity_id", "identity_name",
		"score", "threshold", "status", "latitude", "longitude", "timestamp",
	).
		From("attendance_events").
		OrderBy("timestamp DESC", "id DESC")

	if filter.Status != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.IdentityID != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"identity_id": filter.IdentityID})
	}
	if filter.Since > 0 {
		queryBuilder = queryBuilder.Where(sq.GtOrEq{"timestamp": filter.Since})
	}
	if filter.Until > 0 {
		queryBuilder = queryBuilder.Where(sq.LtOrEq{"timestamp": filter.Until})
	}
	if filter.Offset > 0 && filter.Limit == 0 {
		// sqlite rejects OFFSET without LIMIT; -1 keeps the limit unbounded
		queryBuilder = queryBuilder.Suffix("LIMIT -1 OFFSET ?", filter.Offset)
	} else {
		if filter.Limit > 0 {
			queryBuilder = queryBuilder.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			queryBuilder = queryBuilder.Offset(filter.Offset)
		}
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListEvents: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance events: %w", err)
	}
	defer rows.Close()

	var events []models.AttendanceEvent
	for rows.Next() {
		var ev models.AttendanceEvent
		err := rows.Scan(
			&ev.ID, &ev.EventID, &ev.IdentityID, &ev.IdentityName,
			&ev.Score, &ev.Threshold, &ev.Status, &ev.Latitude, &ev.Longitude, &ev.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance events: %w", err)
	}
	return events, nil
}
