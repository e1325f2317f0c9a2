package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

// Store persists raw site-survey tables so a heatmap can be rendered again
// later with different parameters. Records are stored as read, before any
// aggregation, so every access point stays available.
type Store interface {
	// CreateSurvey registers a new survey and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - title: Human readable survey name
	//   - floorPlan: Optional path of the floor-plan image
	//   - config: Optional render configuration. Can be string, []byte, or JSON-serializable object
	CreateSurvey(ctx context.Context, title, floorPlan string, config any) (surveyID int64, err error)

	// Survey retrieves a survey by its ID. A missing survey yields an error
	// wrapping sql.ErrNoRows.
	Survey(ctx context.Context, id int64) (*Survey, error)

	// Surveys returns all stored surveys ordered by creation time.
	Surveys(ctx context.Context) ([]*Survey, error)

	// DeleteSurvey removes a survey together with its records.
	DeleteSurvey(ctx context.Context, id int64) error

	// StoreRecords appends rows to a survey in a single atomic transaction.
	// Row order is preserved.
	StoreRecords(ctx context.Context, surveyID int64, records []survey.Record) error

	// ReadRecords returns an iterator over the stored rows of a survey in the
	// order they were stored. The reader must be closed after use.
	ReadRecords(ctx context.Context, surveyID int64) (*RecordReader, error)

	// Close releases all database connections.
	// It is safe to call Close multiple times.
	Close() error
}
