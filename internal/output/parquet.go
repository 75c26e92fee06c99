package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrisdamba/tripzones/internal/cloudwriter"
	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	zonesParquetFile = "top_zones.parquet"
	slotsParquetFile = "top_slots.parquet"
	parquetParallel  = 4
)

type zoneRow struct {
	RunID string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rank  int32  `parquet:"name=rank, type=INT32"`
	Zone  string `parquet:"name=zone, type=BYTE_ARRAY, convertedtype=UTF8"`
	Count int64  `parquet:"name=count, type=INT64"`
}

type slotRow struct {
	RunID string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rank  int32  `parquet:"name=rank, type=INT32"`
	Zone  string `parquet:"name=zone, type=BYTE_ARRAY, convertedtype=UTF8"`
	Hour  int32  `parquet:"name=hour, type=INT32"`
	Count int64  `parquet:"name=count, type=INT64"`
}

// ParquetOutput writes each report as two parquet files under
// <basePath>/<run id>/, either locally or to a cloud bucket.
type ParquetOutput struct {
	basePath           string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

// NewParquetOutput writes locally when factory is nil.
func NewParquetOutput(basePath string, factory cloudwriter.CloudWriterFactory, bucket string) (*ParquetOutput, error) {
	if factory == nil && basePath == "" {
		return nil, fmt.Errorf("parquet output needs a base path")
	}
	return &ParquetOutput{
		basePath:           basePath,
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
	}, nil
}

func (p *ParquetOutput) WriteReport(ctx context.Context, report *models.Report) error {
	zones := make([]interface{}, 0, len(report.TopZones))
	for i, z := range report.TopZones {
		zones = append(zones, zoneRow{RunID: report.RunID, Rank: int32(i + 1), Zone: z.Zone, Count: int64(z.Count)})
	}
	if err := p.writeFile(ctx, report.RunID, zonesParquetFile, new(zoneRow), zones); err != nil {
		return err
	}

	slots := make([]interface{}, 0, len(report.TopSlots))
	for i, s := range report.TopSlots {
		slots = append(slots, slotRow{RunID: report.RunID, Rank: int32(i + 1), Zone: s.Zone, Hour: int32(s.Hour), Count: int64(s.Count)})
	}
	return p.writeFile(ctx, report.RunID, slotsParquetFile, new(slotRow), slots)
}

func (p *ParquetOutput) writeFile(ctx context.Context, runID, name string, schema interface{}, rows []interface{}) error {
	fw, err := p.createFile(ctx, runID, name)
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriter(fw, schema, parquetParallel)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finish %s: %w", name, err)
	}
	return fw.Close()
}

func (p *ParquetOutput) createFile(ctx context.Context, runID, name string) (source.ParquetFile, error) {
	if p.cloudWriterFactory != nil {
		objectPath := ObjectPath(p.basePath, runID, name)
		cloudWriter, err := p.cloudWriterFactory.NewWriter(ctx, p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cloudWriter), nil
	}

	dir := filepath.Join(p.basePath, runID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}

func (p *ParquetOutput) Close() error {
	return nil
}

// CloudParquetFile adapts a CloudWriter to the write-only subset of
// source.ParquetFile that the parquet writer uses.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the receiver: the object is created on upload.
func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
