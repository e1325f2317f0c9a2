package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/survey-heatmap/internal/floorplan"
	"github.com/roman-kulish/survey-heatmap/internal/grid"
	"github.com/roman-kulish/survey-heatmap/internal/rbf"
	"github.com/roman-kulish/survey-heatmap/internal/render"
	"github.com/roman-kulish/survey-heatmap/internal/storage"
	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

// Run renders one heatmap: it loads the survey and the floor plan, derives
// the metric, interpolates it over the floor plan and writes the image.
// Nothing is written unless every stage succeeds.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	start := time.Now()

	colormap, err := render.ParseColormap(config.Colormap)
	if err != nil {
		return err
	}

	records, title, err := loadRecords(ctx, config, logger)
	if err != nil {
		return err
	}

	plan, err := floorplan.Load(config.FloorPlan)
	if err != nil {
		return err
	}

	width, height := plan.Width(), plan.Height()
	if config.Width > 0 {
		width = config.Width
	}
	if config.Height > 0 {
		height = config.Height
	}

	logger.Info("loaded floor plan",
		slog.String("path", plan.Path),
		slog.String("format", plan.Format),
		slog.Int("width", plan.Width()),
		slog.Int("height", plan.Height()))

	dataset, err := aggregate(records, config, logger)
	if err != nil {
		return fmt.Errorf("aggregating survey: %w", err)
	}

	g, err := grid.Build(width, height, config.Divisor)
	if err != nil {
		return fmt.Errorf("building grid: %w", err)
	}

	field, err := interpolate(ctx, dataset, g, config, logger)
	if err != nil {
		return err
	}

	bounds := config.Bounds()
	if config.AutoRange {
		bounds = render.AutoBounds(field.Values)
		logger.Info("derived color range", slog.Float64("vmin", bounds.Min), slog.Float64("vmax", bounds.Max))
	}

	lo, hi := field.Range()
	renderer, err := render.NewSurfaceRenderer(render.Config{
		VMin:          bounds.Min,
		VMax:          bounds.Max,
		Colormap:      colormap,
		Alpha:         config.Alpha,
		DPI:           config.DPI,
		Title:         title,
		Caption:       caption(dataset, g, lo, hi, config.Unit),
		Unit:          config.Unit,
		FontSize:      config.FontSize,
		NoAnnotations: config.NoAnnotations,
	}, render.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating surface renderer: %w", err)
	}

	img, err := renderer.Render(field, plan.Image)
	if err != nil {
		return fmt.Errorf("rendering surface: %w", err)
	}

	path, format, err := config.OutputPath(title)
	if err != nil {
		return err
	}

	n, err := render.WriteFile(path, img, format, config.DPI)
	if err != nil {
		return fmt.Errorf("writing heatmap: %w", err)
	}

	logger.Info("heatmap written",
		slog.Group("image",
			slog.String("destination", path),
			slog.String("format", string(format)),
			slog.String("colormap", string(colormap)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
			slog.String("size", humanize.Bytes(uint64(n))),
		),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// loadRecords reads raw survey rows from the CSV input or the survey store,
// and returns them with the survey title.
func loadRecords(ctx context.Context, config *Config, logger *slog.Logger) (records []survey.Record, title string, err error) {
	if config.Input != "" {
		if records, err = readCSVFile(config.Input); err != nil {
			return nil, "", err
		}

		title = config.Title
		if title == "" {
			title = DefaultTitleFor(config.Input)
		}

		logger.Info("loaded survey table",
			slog.String("path", config.Input),
			slog.String("rows", humanize.Comma(int64(len(records)))))
		return records, title, nil
	}

	if _, err = os.Stat(config.DBPath); err != nil {
		return nil, "", fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer closeWithError(store, &err)

	reader, err := store.ReadRecords(ctx, config.SurveyID)
	if err != nil {
		return nil, "", fmt.Errorf("reading survey %d: %w", config.SurveyID, err)
	}
	defer closeWithError(reader, &err)

	if records, err = reader.ReadAll(ctx); err != nil {
		return nil, "", fmt.Errorf("reading survey %d: %w", config.SurveyID, err)
	}

	title = config.Title
	if title == "" {
		title = reader.Survey().Title
	}

	logger.Info("loaded stored survey",
		slog.Int64("survey", config.SurveyID),
		slog.String("title", title),
		slog.String("rows", humanize.Comma(int64(len(records)))))
	return records, title, nil
}

func readCSVFile(path string) (records []survey.Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening survey table: %w", err)
	}
	defer closeWithError(f, &err)

	if records, err = survey.ReadCSV(f); err != nil {
		return nil, fmt.Errorf("reading survey table '%s': %w", path, err)
	}
	return records, nil
}

func aggregate(records []survey.Record, config *Config, logger *slog.Logger) (*survey.Dataset, error) {
	fn, err := survey.AggregateFuncByName(config.Aggregate)
	if err != nil {
		return nil, err
	}

	aps := config.AccessPoints
	if len(aps) == 0 {
		aps = survey.AccessPointFields(records, config.XField, config.YField)
		logger.Debug("using every access point column", slog.Any("accessPoints", aps))
	}

	agg := survey.NewAggregator(aps,
		survey.WithAggregateFunc(fn),
		survey.WithCoordinateFields(config.XField, config.YField),
		survey.WithLogger(logger))

	return agg.Aggregate(records)
}

func interpolate(ctx context.Context, dataset *survey.Dataset, g *grid.Grid, config *Config, logger *slog.Logger) (*rbf.Field, error) {
	xs, ys := dataset.Coordinates()
	points := make([]rbf.Point, len(xs))
	for i := range xs {
		points[i] = rbf.Point{X: xs[i], Y: ys[i]}
	}

	opts := []rbf.Option{rbf.WithLogger(logger), rbf.WithWorkers(config.Workers)}

	model, err := rbf.Fit(points, dataset.Metrics, opts...)
	if err != nil {
		return nil, fmt.Errorf("fitting interpolation model: %w", err)
	}

	logger.Info("interpolating",
		slog.String("points", humanize.Comma(int64(model.Len()))),
		slog.Int("columns", g.NumX),
		slog.Int("rows", g.NumY),
		slog.String("evaluations", humanize.Comma(int64(g.Len()))))

	field, err := rbf.Interpolate(ctx, model, g, opts...)
	if err != nil {
		return nil, fmt.Errorf("interpolating field: %w", err)
	}
	return field, nil
}

func caption(dataset *survey.Dataset, g *grid.Grid, lo, hi float64, unit string) string {
	return fmt.Sprintf("%s points, %dx%d grid, field %s to %s %s",
		humanize.Comma(int64(dataset.Len())), g.NumX, g.NumY,
		humanize.FtoaWithDigits(lo, 1), humanize.FtoaWithDigits(hi, 1), unit)
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
