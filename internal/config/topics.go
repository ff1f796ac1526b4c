package config

const (
	// TopicIngestEmbed is the NSQ topic for per-chunk embedding tasks
	// published by the directory ingester when the async path is enabled.
	TopicIngestEmbed = "ingest.embed"
)
