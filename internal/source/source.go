package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/schollz/progressbar/v3"
)

// ObjectGetter is the part of the S3 client used to read trip feeds.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Options struct {
	Region   string
	Progress bool
	// ProgressWriter defaults to stderr.
	ProgressWriter io.Writer
	// S3 overrides the client built from the default AWS config.
	S3 ObjectGetter
}

// Input is an opened trip feed. Size is -1 when unknown.
type Input struct {
	Name string
	Size int64
	io.Reader
	closer io.Closer
}

func (in *Input) Close() error {
	if in.closer == nil {
		return nil
	}
	return in.closer.Close()
}

// Open resolves location to a readable feed: "" or "-" is stdin,
// "s3://bucket/key" an S3 object, anything else a local path. Failures are
// *models.SourceError.
func Open(ctx context.Context, location string, opts Options) (*Input, error) {
	var (
		in  *Input
		err error
	)
	switch {
	case location == "" || location == models.StdinSource:
		in = &Input{Name: "stdin", Size: -1, Reader: os.Stdin}
	case strings.HasPrefix(location, models.S3Scheme):
		in, err = openS3(ctx, location, opts)
	default:
		in, err = openFile(location)
	}
	if err != nil {
		return nil, err
	}

	if opts.Progress && in.Size > 0 {
		in.Reader = io.TeeReader(in.Reader, newProgressBar(in, opts.ProgressWriter))
	}
	return in, nil
}

func openFile(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewSourceError(path, err)
	}
	size := int64(-1)
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		size = info.Size()
	}
	return &Input{Name: path, Size: size, Reader: f, closer: f}, nil
}

// ParseS3Location splits "s3://bucket/key" into bucket and key.
func ParseS3Location(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, models.S3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q, want s3://bucket/key", location)
	}
	return bucket, key, nil
}

func openS3(ctx context.Context, location string, opts Options) (*Input, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, models.NewSourceError(location, err)
	}

	client := opts.S3
	if client == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
		if err != nil {
			return nil, models.NewSourceError(location, fmt.Errorf("unable to load SDK config: %w", err))
		}
		client = s3.NewFromConfig(cfg)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, models.NewSourceError(location, err)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &Input{Name: location, Size: size, Reader: out.Body, closer: out.Body}, nil
}

func newProgressBar(in *Input, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions64(in.Size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("ingesting "+in.Name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		progressbar.OptionClearOnFinish(),
	)
}
