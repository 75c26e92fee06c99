package analyzer

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/chrisdamba/tripzones/internal/models"
)

const readBufferSize = 64 * 1024

type Options struct {
	TopK         int
	HourBuckets  int
	StrictLayout bool
}

type Option func(*Options)

func WithTopK(k int) Option {
	return func(o *Options) { o.TopK = k }
}

// WithHourBuckets narrows the accepted hours to [0, n). Values outside
// 1..MaxHourBuckets fall back to the default.
func WithHourBuckets(n int) Option {
	return func(o *Options) { o.HourBuckets = n }
}

// WithStrictLayout only accepts records with six or more fields, reading the
// pickup datetime from the fourth.
func WithStrictLayout(strict bool) Option {
	return func(o *Options) { o.StrictLayout = strict }
}

// OptionsFromConfig maps the analyzer tunables of cfg to options.
func OptionsFromConfig(cfg *models.Config) []Option {
	return []Option{
		WithTopK(cfg.TopK),
		WithHourBuckets(cfg.HourBuckets),
		WithStrictLayout(cfg.StrictLayout),
	}
}

// Analyzer accumulates per-zone and per-zone-per-hour trip counts from line
// oriented input. Successive Ingest calls add to the same state. It is not
// safe for concurrent use.
type Analyzer struct {
	opts      Options
	extractor extractor
	registry  *ZoneRegistry
	stats     []ZoneStats
	counters  models.Counters
}

func New(opts ...Option) *Analyzer {
	o := Options{
		TopK:        models.DefaultTopK,
		HourBuckets: models.DefaultHourBuckets,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.TopK <= 0 {
		o.TopK = models.DefaultTopK
	}
	if o.HourBuckets <= 0 || o.HourBuckets > models.MaxHourBuckets {
		o.HourBuckets = models.DefaultHourBuckets
	}

	return &Analyzer{
		opts:      o,
		extractor: extractor{hourBuckets: o.HourBuckets, strict: o.StrictLayout},
		registry:  NewZoneRegistry(),
		stats:     make([]ZoneStats, 0, initialZoneCapacity),
	}
}

// Ingest reads r to EOF, one record per line. Lines that do not yield a zone
// and an hour are skipped silently. The only error is a failure to read r,
// reported as a *models.SourceError.
func (a *Analyzer) Ingest(r io.Reader) error {
	return a.ingest("stream", r)
}

// IngestFile ingests the named file. A file that cannot be opened yields a
// *models.SourceError and leaves the state untouched.
func (a *Analyzer) IngestFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return models.NewSourceError(path, err)
	}
	defer f.Close()
	return a.ingest(path, f)
}

func (a *Analyzer) IngestStdin() error {
	return a.ingest("stdin", os.Stdin)
}

// IngestNamed behaves like Ingest but names the source in errors.
func (a *Analyzer) IngestNamed(name string, r io.Reader) error {
	return a.ingest(name, r)
}

func (a *Analyzer) ingest(name string, r io.Reader) error {
	br := bufio.NewReaderSize(r, readBufferSize)
	var long []byte
	for {
		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			long = append(long, line...)
			continue
		}
		if err != nil && err != io.EOF {
			return models.NewSourceError(name, err)
		}
		if len(long) > 0 {
			line = append(long, line...)
			long = long[:0]
		}
		if len(line) > 0 {
			a.ingestLine(bytes.TrimSuffix(line, []byte{'\n'}))
		}
		if err == io.EOF {
			return nil
		}
	}
}

func (a *Analyzer) ingestLine(line []byte) {
	a.counters.LinesRead++
	zone, hour, ok := a.extractor.extract(line)
	if !ok {
		a.counters.Skipped++
		return
	}
	id, created := a.registry.IDOf(zone)
	if created {
		a.stats = append(a.stats, newZoneStats(a.opts.HourBuckets))
	}
	a.stats[id].record(hour)
	a.counters.Accepted++
}

func (a *Analyzer) Counters() models.Counters {
	return a.counters
}

// ZoneCount is the number of distinct zones seen so far.
func (a *Analyzer) ZoneCount() int {
	return a.registry.Len()
}

// Stats returns a copy of the counters for zone.
func (a *Analyzer) Stats(zone string) (ZoneStats, bool) {
	id, ok := a.registry.Lookup(zone)
	if !ok {
		return ZoneStats{}, false
	}
	return a.stats[id].clone(), true
}

func (a *Analyzer) Options() Options {
	return a.opts
}
