package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roman-kulish/survey-heatmap/internal/render"
	"github.com/roman-kulish/survey-heatmap/internal/survey"
)

// Execute runs the heatmap command line with the given arguments.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type loggerKey struct{}

func loggerFrom(cmd *cobra.Command) *slog.Logger {
	if l, ok := cmd.Context().Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return NewLogger(cmd.ErrOrStderr(), 0)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:           "heatmap",
		Short:         "Render Wi-Fi site survey heatmaps over floor plans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := NewLogger(cmd.ErrOrStderr(), verbosity)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
		},
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output, specify twice for debug output")

	root.AddCommand(newRenderCommand())
	root.AddCommand(newImportCommand())
	root.AddCommand(newSurveysCommand())

	return root
}

type renderFlags struct {
	configPath string

	input, db, floorPlan, title string
	surveyID                    int64
	width, height               int

	accessPoints             []string
	aggregate, xField, yField string

	divisor, workers int

	vmin, vmax, alpha, dpi, fontSize float64
	autoRange, noAnnotations         bool
	colormap, unit                   string

	output, format string
}

func newRenderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [floor-plan] [survey.csv]",
		Short: "Interpolate a survey and render the heatmap",
		Long: `Render interpolates the signal strength measured at the survey points over
the whole floor plan and writes the result as an image with a color legend.

Configuration is read from --config when given; flags override file values.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := f.config(cmd, args)
			if err != nil {
				return err
			}
			if err = config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return Run(cmd.Context(), config, loggerFrom(cmd))
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "path to a YAML configuration file")
	fl.StringVarP(&f.input, "input", "i", "", "survey table (CSV)")
	fl.StringVar(&f.db, "db", "", "survey database, used with --survey")
	fl.Int64VarP(&f.surveyID, "survey", "s", 0, "stored survey ID")
	fl.StringVarP(&f.floorPlan, "floor-plan", "p", "", "floor-plan image")
	fl.IntVar(&f.width, "width", 0, "floor-plan width in pixels, defaults to the image width")
	fl.IntVar(&f.height, "height", 0, "floor-plan height in pixels, defaults to the image height")
	fl.StringVarP(&f.title, "title", "t", "", "survey title, defaults to the input name")
	fl.StringSliceVarP(&f.accessPoints, "ap", "a", nil, "access point columns to aggregate, defaults to all integer-valued columns")
	fl.StringVar(&f.aggregate, "aggregate", DefaultAggregate, "aggregate function [max, min, mean]")
	fl.StringVar(&f.xField, "x-field", survey.DefaultXField, "column holding the x drawing coordinate")
	fl.StringVar(&f.yField, "y-field", survey.DefaultYField, "column holding the y drawing coordinate")
	fl.IntVarP(&f.divisor, "divisor", "d", DefaultDivisor, "floor-plan pixels per grid column")
	fl.IntVarP(&f.workers, "workers", "w", DefaultWorkers, "parallel interpolation workers")
	fl.Float64Var(&f.vmin, "vmin", render.DefaultVMin, "low end of the color scale")
	fl.Float64Var(&f.vmax, "vmax", render.DefaultVMax, "high end of the color scale")
	fl.BoolVar(&f.autoRange, "auto-range", false, "derive the color scale from the interpolated field")
	fl.StringVar(&f.colormap, "colormap", string(render.DefaultColormap), fmt.Sprintf("colormap %v", render.Colormaps()))
	fl.Float64Var(&f.alpha, "alpha", render.DefaultAlpha, "floor-plan opacity over the heatmap (0, 1]")
	fl.Float64Var(&f.dpi, "dpi", render.DefaultDPI, "output density, one floor-plan pixel per 1/300 inch")
	fl.Float64Var(&f.fontSize, "font-size", render.DefaultFontSize, "annotation font size in points")
	fl.StringVar(&f.unit, "unit", render.DefaultUnit, "legend unit label")
	fl.BoolVar(&f.noAnnotations, "no-annotations", false, "render only the heatmap, without title, legend and caption")
	fl.StringVarP(&f.output, "output", "o", "", "output file, defaults to <metric>_<title>.png")
	fl.StringVarP(&f.format, "format", "f", "", "output image format [png, jpeg]")

	return cmd
}

// config loads the configuration file, if any, and applies the flags that
// were set explicitly.
func (f *renderFlags) config(cmd *cobra.Command, args []string) (*Config, error) {
	c := NewConfig()
	if f.configPath != "" {
		var err error
		if c, err = LoadConfig(f.configPath); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		c.FloorPlan = args[0]
	}
	if len(args) > 1 {
		c.Input = args[1]
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		c.Input = f.input
	}
	if changed("db") {
		c.DBPath = f.db
	}
	if changed("survey") {
		c.SurveyID = f.surveyID
	}
	if changed("floor-plan") {
		c.FloorPlan = f.floorPlan
	}
	if changed("width") {
		c.Width = f.width
	}
	if changed("height") {
		c.Height = f.height
	}
	if changed("title") {
		c.Title = f.title
	}
	if changed("ap") {
		c.AccessPoints = f.accessPoints
	}
	if changed("aggregate") {
		c.Aggregate = f.aggregate
	}
	if changed("x-field") {
		c.XField = f.xField
	}
	if changed("y-field") {
		c.YField = f.yField
	}
	if changed("divisor") {
		c.Divisor = f.divisor
	}
	if changed("workers") {
		c.Workers = f.workers
	}
	if changed("vmin") {
		c.VMin = &f.vmin
	}
	if changed("vmax") {
		c.VMax = &f.vmax
	}
	if changed("auto-range") {
		c.AutoRange = f.autoRange
	}
	if changed("colormap") {
		c.Colormap = f.colormap
	}
	if changed("alpha") {
		c.Alpha = f.alpha
	}
	if changed("dpi") {
		c.DPI = f.dpi
	}
	if changed("font-size") {
		c.FontSize = f.fontSize
	}
	if changed("unit") {
		c.Unit = f.unit
	}
	if changed("no-annotations") {
		c.NoAnnotations = f.noAnnotations
	}
	if changed("output") {
		c.Output = f.output
	}
	if changed("format") {
		c.Format = render.ImageFormat(f.format)
	}

	return c, nil
}

func newImportCommand() *cobra.Command {
	c := ImportConfig{XField: survey.DefaultXField, YField: survey.DefaultYField}

	cmd := &cobra.Command{
		Use:   "import <survey.csv>",
		Short: "Store a survey table in the survey database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Input = args[0]

			id, err := Import(cmd.Context(), &c, loggerFrom(cmd))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "survey %d\n", id)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&c.DBPath, "db", "", "survey database (created when missing)")
	fl.StringVarP(&c.Title, "title", "t", "", "survey title, defaults to the input name")
	fl.StringVarP(&c.FloorPlan, "floor-plan", "p", "", "floor-plan image to record with the survey")
	fl.StringVar(&c.XField, "x-field", survey.DefaultXField, "column holding the x drawing coordinate")
	fl.StringVar(&c.YField, "y-field", survey.DefaultYField, "column holding the y drawing coordinate")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func newSurveysCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "surveys",
		Short: "List stored surveys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("database file '%s' does not exist: %w", dbPath, err)
			}
			return ListSurveys(cmd.Context(), dbPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "survey database")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
