package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chrisdamba/tripzones/internal/cloudwriter"
	"github.com/chrisdamba/tripzones/internal/generator"
	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/chrisdamba/tripzones/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Writes a synthetic trip feed for exercising the analyzer",
	Long: `generate writes a reproducible trip feed mixing the 3-, 4- and 6-column
record layouts, with rush-hour peaks and an optional share of malformed lines.
The feed goes to stdout unless --output-file names a local path or an
s3://bucket/key object.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		_, err = generate(cmd.Context(), cfg, cmd.OutOrStdout(), nil)
		return err
	},
}

func init() {
	generateCmd.Flags().Int64("seed", 42, "Random seed")
	generateCmd.Flags().Int("records", 10000, "Number of lines to write, malformed ones included")
	generateCmd.Flags().Int("zones", 50, "Number of distinct pickup zones")
	generateCmd.Flags().String("start-date", "", "First pickup day (RFC3339, default a week ago)")
	generateCmd.Flags().String("end-date", "", "Day after the last pickup day (RFC3339, default today)")
	generateCmd.Flags().Float64("peak-hour-factor", 2.5, "Weight of rush hours relative to daytime hours")
	generateCmd.Flags().Float64("malformed-ratio", 0.01, "Share of lines written malformed")
	generateCmd.Flags().Bool("header", true, "Write a header line first")
	generateCmd.Flags().String("output-file", "", "Local path or s3://bucket/key for the feed (default stdout)")

	bindFlags(generateCmd, map[string]string{
		"generator.seed":             "seed",
		"generator.records":          "records",
		"generator.zones":            "zones",
		"generator.start_date":       "start-date",
		"generator.end_date":         "end-date",
		"generator.peak_hour_factor": "peak-hour-factor",
		"generator.malformed_ratio":  "malformed-ratio",
		"generator.header":           "header",
		"generator.output_file":      "output-file",
	})
}

// generate writes a feed to the configured output file, or to stdout when
// none is set. factory overrides the S3 writer factory for s3:// targets.
func generate(ctx context.Context, cfg *models.Config, stdout io.Writer, factory cloudwriter.CloudWriterFactory) (*generator.Summary, error) {
	w, err := feedWriter(ctx, cfg, stdout, factory)
	if err != nil {
		return nil, err
	}

	summary, err := generator.NewGenerator(cfg.Generator).Generate(w)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close feed %s: %w", cfg.Generator.OutputFile, err)
	}
	if cfg.Verbose {
		log.Printf("Feed covers %d zones and %d busy slots", len(summary.ZoneTotals), len(summary.SlotTotals))
	}
	return summary, nil
}

func feedWriter(ctx context.Context, cfg *models.Config, stdout io.Writer, factory cloudwriter.CloudWriterFactory) (io.WriteCloser, error) {
	target := cfg.Generator.OutputFile
	switch {
	case target == "" || target == models.StdinSource:
		return nopWriteCloser{stdout}, nil
	case strings.HasPrefix(target, models.S3Scheme):
		bucket, key, err := source.ParseS3Location(target)
		if err != nil {
			return nil, err
		}
		if factory == nil {
			f, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
			if err != nil {
				return nil, err
			}
			factory = f
		}
		return factory.NewWriter(ctx, bucket, key)
	default:
		f, err := os.Create(target)
		if err != nil {
			return nil, fmt.Errorf("failed to create feed file: %w", err)
		}
		return f, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
