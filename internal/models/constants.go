package models

const (
	DefaultTopK        = 10
	DefaultHourBuckets = 24

	// MaxHourBuckets bounds the hour buckets so hours 24-99 stay malformed.
	MaxHourBuckets = 24

	StdinSource = "-"
	S3Scheme    = "s3://"

	OutputFormatText    = "text"
	OutputFormatJSON    = "json"
	OutputFormatYAML    = "yaml"
	OutputFormatCSV     = "csv"
	OutputFormatParquet = "parquet"

	DestinationStdout   = "stdout"
	DestinationFile     = "file"
	DestinationS3       = "s3"
	DestinationKafka    = "kafka"
	DestinationPostgres = "postgres"

	SectionTopZones = "TOP_ZONES"
	SectionTopSlots = "TOP_SLOTS"
)
