package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/tripzones/internal/cloudwriter"
	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func sampleReport() *models.Report {
	return &models.Report{
		RunID:       "ckrun0001",
		Source:      "trips.csv",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		K:           10,
		Zones:       2,
		Counters:    models.Counters{LinesRead: 4, Accepted: 3, Skipped: 1},
		TopZones:    []models.RankedZone{{Zone: "ZoneA", Count: 2}, {Zone: "ZoneB", Count: 1}},
		TopSlots:    []models.RankedSlot{{Zone: "ZoneA", Hour: 8, Count: 2}, {Zone: "ZoneB", Hour: 23, Count: 1}},
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, sampleReport()); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "TOP_ZONES\nZoneA,2\nZoneB,1\nTOP_SLOTS\nZoneA,8,2\nZoneB,23,1\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("text output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTextEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, &models.Report{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := buf.String(); got != "TOP_ZONES\nTOP_SLOTS\n" {
		t.Fatalf("unexpected empty output %q", got)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("render: %v", err)
	}
	var got models.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if diff := cmp.Diff(sampleReport().TopSlots, got.TopSlots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), `"topZones"`) {
		t.Fatalf("expected camelCase keys, got %s", buf.String())
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderYAML(&buf, sampleReport()); err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if doc["run_id"] != "ckrun0001" {
		t.Fatalf("unexpected run_id %v", doc["run_id"])
	}
	zones, ok := doc["top_zones"].([]interface{})
	if !ok || len(zones) != 2 {
		t.Fatalf("expected two top_zones, got %v", doc["top_zones"])
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("render: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	want := [][]string{
		{"section", "rank", "zone", "hour", "count"},
		{"TOP_ZONES", "1", "ZoneA", "", "2"},
		{"TOP_ZONES", "2", "ZoneB", "", "1"},
		{"TOP_SLOTS", "1", "ZoneA", "8", "2"},
		{"TOP_SLOTS", "2", "ZoneB", "23", "1"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererForUnknownFormat(t *testing.T) {
	if _, _, err := RendererFor("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, _, err := RendererFor(models.OutputFormatParquet); err == nil {
		t.Fatalf("parquet has no stream renderer")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.txt")
	out, err := NewFileOutput(path, models.OutputFormatText)
	if err != nil {
		t.Fatalf("new file output: %v", err)
	}
	if err := out.WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(got), "TOP_ZONES\nZoneA,2\n") {
		t.Fatalf("unexpected file content %q", got)
	}
}

type memoryWriter struct {
	bytes.Buffer
	closed bool
}

func (m *memoryWriter) Close() error {
	m.closed = true
	return nil
}

type memoryFactory struct {
	objects map[string]*memoryWriter
}

func (f *memoryFactory) NewWriter(_ context.Context, bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	w := &memoryWriter{}
	f.objects[bucket+"/"+objectPath] = w
	return w, nil
}

func TestCloudOutput(t *testing.T) {
	factory := &memoryFactory{objects: map[string]*memoryWriter{}}
	out, err := NewCloudOutput(factory, "reports-bucket", "daily", models.OutputFormatJSON)
	if err != nil {
		t.Fatalf("new cloud output: %v", err)
	}
	if err := out.WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	obj, ok := factory.objects["reports-bucket/daily/ckrun0001.json"]
	if !ok {
		t.Fatalf("expected object at daily/ckrun0001.json, have %v", factory.objects)
	}
	if !obj.closed {
		t.Fatalf("expected object to be closed (uploaded)")
	}
	if !strings.Contains(obj.String(), `"runId": "ckrun0001"`) {
		t.Fatalf("unexpected object body %s", obj.String())
	}
}

func TestParquetOutputLocal(t *testing.T) {
	dir := t.TempDir()
	out, err := NewParquetOutput(dir, nil, "")
	if err != nil {
		t.Fatalf("new parquet output: %v", err)
	}
	if err := out.WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, name := range []string{zonesParquetFile, slotsParquetFile} {
		data, err := os.ReadFile(filepath.Join(dir, "ckrun0001", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) < 8 || string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
			t.Fatalf("%s is not a parquet file", name)
		}
	}
}

func TestParquetOutputCloud(t *testing.T) {
	factory := &memoryFactory{objects: map[string]*memoryWriter{}}
	out, err := NewParquetOutput("reports", factory, "bucket")
	if err != nil {
		t.Fatalf("new parquet output: %v", err)
	}
	if err := out.WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	obj, ok := factory.objects["bucket/reports/ckrun0001/top_slots.parquet"]
	if !ok || !obj.closed {
		t.Fatalf("expected uploaded slots object, have %v", factory.objects)
	}
	if !bytes.HasPrefix(obj.Bytes(), []byte("PAR1")) {
		t.Fatalf("uploaded object is not parquet")
	}
}

func TestParquetOutputNeedsPath(t *testing.T) {
	if _, err := NewParquetOutput("", nil, ""); err == nil {
		t.Fatalf("expected error without base path")
	}
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "trip_zone_reports" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "ckrun0001" {
			return errors.New("unexpected key " + string(key))
		}
		value, _ := msg.Value.Encode()
		var report models.Report
		if err := json.Unmarshal(value, &report); err != nil {
			return err
		}
		if len(report.TopZones) != 2 {
			return errors.New("report lost its zones")
		}
		return nil
	})

	out := NewKafkaOutputWithProducer(producer, "trip_zone_reports")
	if err := out.WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := out.WriteReport(context.Background(), sampleReport()); err == nil {
		t.Fatalf("expected write after close to fail")
	}
}

func TestKafkaOutputSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	out := NewKafkaOutputWithProducer(producer, "trip_zone_reports")
	if err := out.WriteReport(context.Background(), sampleReport()); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = out.Close()
}

func TestNewSaramaConfig(t *testing.T) {
	cfg := &models.Config{Kafka: models.KafkaConfig{SessionTimeoutMs: 10000, DialTimeout: 5 * time.Second}}
	sc := NewSaramaConfig(cfg)
	if sc.Producer.RequiredAcks != sarama.WaitForAll || !sc.Producer.Return.Successes {
		t.Fatalf("producer must wait for all acks and return successes")
	}
	if sc.Consumer.Group.Session.Timeout != 10*time.Second {
		t.Fatalf("unexpected session timeout %v", sc.Consumer.Group.Session.Timeout)
	}
	if sc.Net.DialTimeout != 5*time.Second {
		t.Fatalf("unexpected dial timeout %v", sc.Net.DialTimeout)
	}
}

type fakeReportRepo struct {
	saved []*models.Report
	err   error
}

func (f *fakeReportRepo) EnsureSchema(context.Context) error { return nil }

func (f *fakeReportRepo) SaveReport(_ context.Context, report *models.Report) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeReportRepo) GetZoneRankings(context.Context, string) ([]models.RankedZone, error) {
	return nil, nil
}

func (f *fakeReportRepo) GetSlotRankings(context.Context, string) ([]models.RankedSlot, error) {
	return nil, nil
}

func (f *fakeReportRepo) DeleteReport(context.Context, string) error { return nil }

func TestPostgresOutput(t *testing.T) {
	repo := &fakeReportRepo{}
	out := NewPostgresOutputWithRepository(repo)
	if err := out.WriteReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(repo.saved) != 1 || repo.saved[0].RunID != "ckrun0001" {
		t.Fatalf("expected report to be saved, got %v", repo.saved)
	}

	repo.err = errors.New("unique violation")
	if err := out.WriteReport(context.Background(), sampleReport()); !errors.Is(err, repo.err) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewReportDestination(t *testing.T) {
	ctx := context.Background()

	dest, err := NewReportDestination(ctx, &models.Config{Output: models.OutputConfig{Format: models.OutputFormatText, Destination: models.DestinationStdout}})
	if err != nil {
		t.Fatalf("stdout destination: %v", err)
	}
	if _, ok := dest.(*StreamOutput); !ok {
		t.Fatalf("expected *StreamOutput, got %T", dest)
	}

	dir := t.TempDir()
	dest, err = NewReportDestination(ctx, &models.Config{Output: models.OutputConfig{Format: models.OutputFormatParquet, Destination: models.DestinationFile, Path: dir}})
	if err != nil {
		t.Fatalf("parquet destination: %v", err)
	}
	if _, ok := dest.(*ParquetOutput); !ok {
		t.Fatalf("expected *ParquetOutput, got %T", dest)
	}

	if _, err := NewReportDestination(ctx, &models.Config{Output: models.OutputConfig{Format: models.OutputFormatText, Destination: "ftp"}}); err == nil {
		t.Fatalf("expected error for unknown destination")
	}
}
