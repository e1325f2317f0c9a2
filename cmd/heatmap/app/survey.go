package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/survey-heatmap/internal/storage"
	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

// ImportConfig describes a survey table to store.
type ImportConfig struct {
	DBPath    string
	Input     string
	Title     string
	FloorPlan string
	XField    string
	YField    string
}

// Import stores a CSV survey table in the survey database and returns the new
// survey ID. The table is validated before anything is written.
func Import(ctx context.Context, config *ImportConfig, logger *slog.Logger) (surveyID int64, err error) {
	if config.DBPath == "" {
		return 0, errors.New("database path is required")
	}

	records, err := readCSVFile(config.Input)
	if err != nil {
		return 0, err
	}

	aps, err := validateTable(records, config.XField, config.YField)
	if err != nil {
		return 0, fmt.Errorf("validating survey table: %w", err)
	}

	title := config.Title
	if title == "" {
		title = DefaultTitleFor(config.Input)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer closeWithError(store, &err)

	if surveyID, err = store.CreateSurvey(ctx, title, config.FloorPlan, nil); err != nil {
		return 0, fmt.Errorf("creating survey: %w", err)
	}
	if err = store.StoreRecords(ctx, surveyID, records); err != nil {
		_ = store.DeleteSurvey(ctx, surveyID)
		return 0, fmt.Errorf("storing records: %w", err)
	}

	logger.Info("survey imported",
		slog.Int64("survey", surveyID),
		slog.String("title", title),
		slog.String("rows", humanize.Comma(int64(len(records)))),
		slog.Int("accessPoints", len(aps)))

	return surveyID, nil
}

// validateTable rejects tables the renderer could never use: rows without
// coordinates or no access point columns at all. Missing readings are allowed
// since the access points are chosen at render time.
func validateTable(records []survey.Record, xField, yField string) ([]string, error) {
	if len(records) == 0 {
		return nil, errors.New("no survey rows")
	}
	for row, rec := range records {
		for _, field := range []string{xField, yField} {
			if strings.TrimSpace(rec[field]) == "" {
				return nil, &survey.MissingFieldError{Row: row, Field: field}
			}
		}
	}

	aps := survey.AccessPointFields(records, xField, yField)
	if len(aps) == 0 {
		return nil, errors.New("no access point columns")
	}
	return aps, nil
}

// ListSurveys writes a table of the stored surveys to w.
func ListSurveys(ctx context.Context, dbPath string, w io.Writer) (err error) {
	store := storage.NewSqliteStore(dbPath)
	defer closeWithError(store, &err)

	surveys, err := store.Surveys(ctx)
	if err != nil {
		return fmt.Errorf("listing surveys: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tROWS\tCREATED\tFLOOR PLAN")
	for _, s := range surveys {
		floorPlan := "-"
		if s.FloorPlan != nil {
			floorPlan = *s.FloorPlan
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.ID, s.Title, humanize.Comma(int64(s.Rows)), humanize.RelTime(s.CreatedAt, time.Now(), "ago", "from now"), floorPlan)
	}
	return tw.Flush()
}
