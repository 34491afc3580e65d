package domain

// Classification is the raw, unvalidated output of an intent classifier.
// NewIntent turns it into a ConversationIntent.
type Classification struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}
