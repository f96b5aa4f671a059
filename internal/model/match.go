package model

// SignalType names an independent match signal.
type SignalType string

const (
	SignalSupersedes     SignalType = "supersedes"
	SignalDocumentNumber SignalType = "document_number"
	SignalFilename       SignalType = "filename"
	SignalTitle          SignalType = "title"
)

// Confidence is the coarse tier derived from a match score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchSignal is one fired signal and its score contribution.
type MatchSignal struct {
	Type   SignalType `json:"type"`
	Weight int        `json:"weight"`
	Detail string     `json:"detail,omitempty"`
}

// MatchTarget identifies the candidate document of a match.
type MatchTarget struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"short_code,omitempty"`
}

// MatchResult scores an upload against one existing document.
type MatchResult struct {
	Document   MatchTarget   `json:"document"`
	Score      int           `json:"score"`
	Confidence Confidence    `json:"confidence"`
	Signals    []MatchSignal `json:"signals"`
}
