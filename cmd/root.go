package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chrisdamba/tripzones/internal/analyzer"
	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/chrisdamba/tripzones/internal/output"
	"github.com/chrisdamba/tripzones/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tripzones [flags] [input...]",
	Short: "Ranks the busiest pickup zones and hours in a trip feed",
	Long: `tripzones streams comma-separated trip records from stdin, local files or
s3://bucket/key objects and reports the busiest pickup zones and the busiest
(zone, hour-of-day) slots. Records with 3, 4 or 6+ columns are accepted; lines
without a usable zone or pickup hour are skipped.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Inputs = args
		}

		_, err = analyze(cmd.Context(), cfg, cmd.OutOrStdout())
		return err
	},
}

func init() {
	initLogging()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tripzones.{yaml,json} in the working or home directory)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log a run summary to stderr")

	rootCmd.Flags().IntP("top-k", "k", models.DefaultTopK, "Number of entries in each ranking")
	rootCmd.Flags().Int("hour-buckets", models.DefaultHourBuckets, "Number of hour-of-day buckets")
	rootCmd.Flags().Bool("strict-layout", false, "Only accept records with six or more columns")
	rootCmd.Flags().Bool("progress", false, "Show a progress bar while reading files and S3 objects")
	rootCmd.Flags().String("format", models.OutputFormatText, "Report format: text, json, yaml, csv or parquet")
	rootCmd.Flags().String("destination", models.DestinationStdout, "Report destination: stdout, file, s3, kafka or postgres")
	rootCmd.Flags().String("output", "", "Output file (destination file) or directory (parquet)")
	rootCmd.Flags().String("output-folder", "reports", "Object prefix for the s3 destination")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("kafka-topic", "trip_zone_reports", "Kafka topic for reports")
	rootCmd.Flags().String("database-url", "", "Postgres connection string for the postgres destination")
	rootCmd.Flags().String("region", "us-east-1", "AWS region for s3:// inputs and the s3 destination")
	rootCmd.Flags().String("bucket", "", "Bucket for the s3 destination")

	bindFlags(rootCmd, map[string]string{
		"verbose":                   "verbose",
		"top_k":                     "top-k",
		"hour_buckets":              "hour-buckets",
		"strict_layout":             "strict-layout",
		"progress":                  "progress",
		"output.format":             "format",
		"output.destination":        "destination",
		"output.path":               "output",
		"output.folder":             "output-folder",
		"kafka.broker_list":         "kafka-broker-list",
		"kafka.topic":               "kafka-topic",
		"database.url":              "database-url",
		"cloud_storage.region":      "region",
		"cloud_storage.bucket_name": "bucket",
	})

	rootCmd.AddCommand(generateCmd)
}

// bindFlags binds config keys to flag names. Unset flags fall through to
// the config file, environment and defaults.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			panic(fmt.Sprintf("no flag %q to bind to %q", name, key))
		}
		cobra.CheckErr(viper.BindPFlag(key, flag))
	}
}

func initLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

// analyze ingests every configured input into one analyzer and hands the
// resulting report to the configured destination. stdout receives the report
// when the destination is stdout.
func analyze(ctx context.Context, cfg *models.Config, stdout io.Writer) (*models.Report, error) {
	started := time.Now()
	inputs := cfg.Inputs
	if len(inputs) == 0 {
		inputs = []string{models.StdinSource}
	}

	a := analyzer.New(analyzer.OptionsFromConfig(cfg)...)
	opts := source.Options{Region: cfg.CloudStorage.Region, Progress: cfg.Progress}
	for _, location := range inputs {
		if err := ingest(ctx, a, location, opts); err != nil {
			return nil, err
		}
	}

	report := a.Report(cfg.TopK, strings.Join(inputs, ","))
	if cfg.Verbose {
		c := report.Counters
		log.Printf("Ingested %d lines from %d source(s) in %v: %d accepted, %d skipped, %d zones",
			c.LinesRead, len(inputs), time.Since(started).Round(time.Millisecond), c.Accepted, c.Skipped, report.Zones)
	}

	dest, err := newDestination(ctx, cfg, stdout)
	if err != nil {
		return nil, err
	}
	if err := dest.WriteReport(ctx, report); err != nil {
		dest.Close()
		return nil, err
	}
	if err := dest.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s destination: %w", cfg.Output.Destination, err)
	}
	return report, nil
}

func ingest(ctx context.Context, a *analyzer.Analyzer, location string, opts source.Options) error {
	in, err := source.Open(ctx, location, opts)
	if err != nil {
		return err
	}
	defer in.Close()
	return a.IngestNamed(in.Name, in)
}

func newDestination(ctx context.Context, cfg *models.Config, stdout io.Writer) (output.ReportDestination, error) {
	if cfg.Output.Destination == models.DestinationStdout || cfg.Output.Destination == "" {
		return output.NewStreamOutput(stdout, cfg.Output.Format)
	}
	return output.NewReportDestination(ctx, cfg)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
