package models

import "time"

// Analysis status constants
const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
)

// NewsArticle is one news item fetched for a ticker.
type NewsArticle struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link"`
}

// NewsAnalysis is the cached result of analyzing one ticker. At most one
// current analysis exists per ticker; re-analysis overwrites.
type NewsAnalysis struct {
	Ticker       string        `json:"ticker" badgerhold:"key"`
	Status       string        `json:"status"`
	Sentiment    string        `json:"sentiment,omitempty"`
	Analysis     string        `json:"analysis,omitempty"`
	NewsArticles []NewsArticle `json:"news_articles"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewsCount returns the number of articles the analysis was built from.
func (a *NewsAnalysis) NewsCount() int {
	return len(a.NewsArticles)
}
