package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

// RecordReader iterates over the stored rows of a survey, one
// survey.Record at a time.
type RecordReader struct {
	survey *Survey
	rows   *sql.Rows

	current  survey.Record
	next     survey.Record // Row already read from the cursor
	nextRow  int64
	hasNext  bool
	finished bool
	err      error
}

func newRecordReader(ctx context.Context, db *sql.DB, surveyID int64) (r *RecordReader, err error) {
	if surveyID <= 0 {
		return nil, errors.New("survey ID required")
	}

	sv, err := scanSurvey(db.QueryRowContext(ctx, selectSurveySQL, surveyID))
	if err != nil {
		return nil, fmt.Errorf("loading survey %d: %w", surveyID, err)
	}

	rows, err := db.QueryContext(ctx, selectRecordsSQL, surveyID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	return &RecordReader{survey: sv, rows: rows}, nil
}

// Survey returns the metadata of the survey being read.
func (r *RecordReader) Survey() *Survey {
	return r.survey
}

// Next advances to the next row. It returns false when all rows have been
// read or an error occurred, Error distinguishes the two.
func (r *RecordReader) Next(ctx context.Context) bool {
	if r.err != nil || r.finished {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}

	var rec survey.Record
	var rowIndex int64
	if r.hasNext {
		rec, rowIndex = r.next, r.nextRow
		r.hasNext = false
	}

	for r.rows.Next() {
		var idx int64
		var field, value string
		if err := r.rows.Scan(&idx, &field, &value); err != nil {
			r.err = fmt.Errorf("scanning record: %w", err)
			return false
		}

		if rec == nil {
			rec, rowIndex = survey.Record{}, idx
		}
		if idx != rowIndex {
			// First field of the following row
			r.next, r.nextRow, r.hasNext = survey.Record{field: value}, idx, true
			break
		}
		rec[field] = value
	}
	if err := r.rows.Err(); err != nil {
		r.err = fmt.Errorf("iterating records: %w", err)
		return false
	}

	if rec == nil {
		r.finished = true
		return false
	}

	r.current = rec
	return true
}

// Current returns the row read by the last successful call to Next.
func (r *RecordReader) Current() survey.Record {
	return r.current
}

// Error returns the error that stopped the iteration, if any.
func (r *RecordReader) Error() error {
	return r.err
}

// Close releases the underlying cursor.
func (r *RecordReader) Close() error {
	return r.rows.Close()
}

// ReadAll drains the reader into a slice.
func (r *RecordReader) ReadAll(ctx context.Context) ([]survey.Record, error) {
	var records []survey.Record
	for r.Next(ctx) {
		records = append(records, r.Current())
	}
	if err := r.Error(); err != nil {
		return nil, err
	}
	return records, nil
}
