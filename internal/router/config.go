package router

// Config holds the tunable thresholds for routing, drift detection, and
// file retrieval.
type Config struct {
	// SimilarityThreshold is the minimum description similarity for a
	// message or segment to match an existing topic.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// FileThreshold is the minimum embedding similarity for a file to be
	// considered relevant to a query.
	FileThreshold float64 `koanf:"file_threshold"`

	// TopKFiles is the number of files included in an assembled prompt.
	TopKFiles int `koanf:"top_k_files"`

	// OffTopicThreshold is the per-message similarity below which a
	// message counts as off-topic during drift detection.
	OffTopicThreshold float64 `koanf:"off_topic_threshold"`

	// OffTopicFrequency is the history-length interval at which drift
	// detection runs.
	OffTopicFrequency int `koanf:"off_topic_frequency"`

	// SliceSize is the number of trailing messages inspected for drift.
	SliceSize int `koanf:"slice_size"`

	// NamingThreshold is the history length an unnamed topic must exceed
	// before the first naming attempt.
	NamingThreshold int `koanf:"naming_threshold"`

	// MaxRetries bounds summarizer attempts per naming or drift cycle.
	MaxRetries int `koanf:"max_retries"`

	// PromptMessages is the number of trailing history entries returned
	// by BuildPrompt.
	PromptMessages int `koanf:"prompt_messages"`

	// QueueSize bounds the drift-analysis task queue.
	QueueSize int `koanf:"queue_size"`
}

// DefaultConfig returns the standard routing thresholds.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.5,
		FileThreshold:       0.3,
		TopKFiles:           1,
		OffTopicThreshold:   0.7,
		OffTopicFrequency:   4,
		SliceSize:           4,
		NamingThreshold:     4,
		MaxRetries:          3,
		PromptMessages:      5,
		QueueSize:           16,
	}
}
