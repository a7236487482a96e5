package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
)

// marshalPayload encodes the metric payload for the JSONB column.
// A nil payload is stored as an empty object, never SQL NULL.
func marshalPayload(payload map[string]interface{}) ([]byte, error) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics payload: %w", err)
	}
	return b, nil
}

// windowArgs returns the $1/$2 bounds of a window. Open sides become NULL.
func windowArgs(w aggregation.Window) []interface{} {
	return []interface{}{nullTime(w.Start), nullTime(w.End)}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanDay reads a DATE column into a day bucket.
func scanDay(raw time.Time) v1.Date {
	return v1.NewDate(raw)
}
