package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if rErr := rb.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) && *err == nil {
		*err = rErr
	}
}

// toNullString serializes an optional config value. Strings and byte slices
// are stored as is, anything else as JSON.
func toNullString(v any) (sql.NullString, error) {
	switch v := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: v, Valid: v != ""}, nil
	case []byte:
		return sql.NullString{String: string(v), Valid: len(v) > 0}, nil
	default:
		p, err := json.Marshal(v)
		if err != nil {
			return sql.NullString{}, fmt.Errorf("marshaling config: %w", err)
		}
		return sql.NullString{String: string(p), Valid: true}, nil
	}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (*Survey, error) {
	var s Survey
	var floorPlan, config sql.NullString
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.Title, &floorPlan, &config, &s.Rows); err != nil {
		return nil, err
	}
	s.FloorPlan = fromNullString(floorPlan)
	s.Config = fromNullString(config)
	return &s, nil
}
