package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

var _ Store = (*SqliteStore)(nil)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened lazily, the schema is created on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(ctx context.Context, db *sql.DB, sql string) error {
	_, err := db.ExecContext(ctx, sql)
	return err
}

func (s *SqliteStore) getWriteDB(ctx context.Context) (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(ctx, db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSurvey(ctx context.Context, title, floorPlan string, config any) (surveyID int64, err error) {
	if strings.TrimSpace(title) == "" {
		return 0, errors.New("survey title required")
	}

	configData, err := toNullString(config)
	if err != nil {
		return
	}

	db, err := s.getWriteDB(ctx)
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSurveySQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	floorPlanData := sql.NullString{String: floorPlan, Valid: floorPlan != ""}
	result, err := stmt.ExecContext(ctx, title, floorPlanData, configData)
	if err != nil {
		err = fmt.Errorf("inserting survey: %w", err)
		return
	}

	surveyID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting survey ID: %w", err)
	}
	return
}

func (s *SqliteStore) Survey(ctx context.Context, id int64) (sv *Survey, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSurveySQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	if sv, err = scanSurvey(stmt.QueryRowContext(ctx, id)); err != nil {
		err = fmt.Errorf("scanning survey %d: %w", id, err)
	}
	return
}

func (s *SqliteStore) Surveys(ctx context.Context) (surveys []*Survey, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSurveysSQL)
	if err != nil {
		err = fmt.Errorf("querying surveys: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sv *Survey
		if sv, err = scanSurvey(rows); err != nil {
			err = fmt.Errorf("scanning survey: %w", err)
			return
		}
		surveys = append(surveys, sv)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) DeleteSurvey(ctx context.Context, id int64) error {
	db, err := s.getWriteDB(ctx)
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	result, err := db.ExecContext(ctx, deleteSurveySQL, id)
	if err != nil {
		return fmt.Errorf("deleting survey: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("deleting survey %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (s *SqliteStore) StoreRecords(ctx context.Context, surveyID int64, records []survey.Record) (err error) {
	if len(records) == 0 {
		return
	}

	db, err := s.getWriteDB(ctx)
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	var rowIndex int
	if err = tx.QueryRowContext(ctx, nextRowIndexSQL, surveyID).Scan(&rowIndex); err != nil {
		return fmt.Errorf("querying next row index: %w", err)
	}

	// Flatten rows into (row, field, value) triples and insert them in batches
	values := make([]any, 0, maxRecordBatch*4)
	placeholders := 0

	flush := func() error {
		if placeholders == 0 {
			return nil
		}

		var sb strings.Builder
		sb.WriteString(insertRecordSQL)
		for i := 0; i < placeholders; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?)")
		}

		if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting records: %w", err)
		}
		values = values[:0]
		placeholders = 0
		return nil
	}

	for i, rec := range records {
		fields := make([]string, 0, len(rec))
		for field := range rec {
			fields = append(fields, field)
		}
		slices.Sort(fields)

		for _, field := range fields {
			values = append(values, surveyID, rowIndex+i, field, rec[field])
			placeholders++

			if placeholders == maxRecordBatch {
				if err = flush(); err != nil {
					return
				}
			}
		}
	}
	if err = flush(); err != nil {
		return
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ReadRecords creates a RecordReader over the rows of a survey. The reader
// must be closed after use to release database resources.
//
// Returns error if the survey doesn't exist.
func (s *SqliteStore) ReadRecords(ctx context.Context, surveyID int64) (*RecordReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newRecordReader(ctx, db, surveyID)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
