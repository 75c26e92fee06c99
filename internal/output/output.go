package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrisdamba/tripzones/internal/cloudwriter"
	"github.com/chrisdamba/tripzones/internal/models"
)

// ReportDestination receives finished reports.
type ReportDestination interface {
	WriteReport(ctx context.Context, report *models.Report) error
	Close() error
}

// StreamOutput renders reports onto a writer such as stdout or a file.
type StreamOutput struct {
	w      io.Writer
	closer io.Closer
	render Renderer
}

func NewStreamOutput(w io.Writer, format string) (*StreamOutput, error) {
	render, _, err := RendererFor(format)
	if err != nil {
		return nil, err
	}
	return &StreamOutput{w: w, render: render}, nil
}

// NewFileOutput creates (or truncates) path and renders reports into it.
func NewFileOutput(path, format string) (*StreamOutput, error) {
	render, _, err := RendererFor(format)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return &StreamOutput{w: f, closer: f, render: render}, nil
}

func (s *StreamOutput) WriteReport(_ context.Context, report *models.Report) error {
	if err := s.render(s.w, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (s *StreamOutput) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// CloudOutput uploads each rendered report as <folder>/<run id>.<ext>.
type CloudOutput struct {
	factory cloudwriter.CloudWriterFactory
	bucket  string
	folder  string
	ext     string
	render  Renderer
}

func NewCloudOutput(factory cloudwriter.CloudWriterFactory, bucket, folder, format string) (*CloudOutput, error) {
	render, ext, err := RendererFor(format)
	if err != nil {
		return nil, err
	}
	return &CloudOutput{factory: factory, bucket: bucket, folder: folder, ext: ext, render: render}, nil
}

func (c *CloudOutput) WriteReport(ctx context.Context, report *models.Report) error {
	objectPath := ObjectPath(c.folder, report.RunID+"."+c.ext)
	w, err := c.factory.NewWriter(ctx, c.bucket, objectPath)
	if err != nil {
		return fmt.Errorf("failed to create cloud writer: %w", err)
	}
	if err := c.render(w, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return w.Close()
}

func (c *CloudOutput) Close() error {
	return nil
}

// ObjectPath joins object key segments with "/" regardless of OS.
func ObjectPath(parts ...string) string {
	return filepath.ToSlash(filepath.Join(parts...))
}

// NewReportDestination builds the destination selected by cfg.Output.
func NewReportDestination(ctx context.Context, cfg *models.Config) (ReportDestination, error) {
	switch cfg.Output.Destination {
	case models.DestinationStdout, "":
		return NewStreamOutput(os.Stdout, cfg.Output.Format)
	case models.DestinationFile:
		if cfg.Output.Format == models.OutputFormatParquet {
			return NewParquetOutput(cfg.Output.Path, nil, "")
		}
		return NewFileOutput(cfg.Output.Path, cfg.Output.Format)
	case models.DestinationS3:
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		if cfg.Output.Format == models.OutputFormatParquet {
			return NewParquetOutput(cfg.Output.Folder, factory, cfg.CloudStorage.BucketName)
		}
		return NewCloudOutput(factory.WithContentType(contentType(cfg.Output.Format)), cfg.CloudStorage.BucketName, cfg.Output.Folder, cfg.Output.Format)
	case models.DestinationKafka:
		return NewKafkaOutput(cfg)
	case models.DestinationPostgres:
		return NewPostgresOutput(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported output destination: %s", cfg.Output.Destination)
	}
}

func contentType(format string) string {
	switch format {
	case models.OutputFormatJSON:
		return "application/json"
	case models.OutputFormatYAML:
		return "application/yaml"
	case models.OutputFormatCSV:
		return "text/csv"
	default:
		return "text/plain"
	}
}
