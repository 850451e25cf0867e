package model

import "time"

// HeadlineRecord is a single news headline returned by a headline source.
type HeadlineRecord struct {
	Date     time.Time `json:"date"`
	Headline string    `json:"headline"`
	Source   string    `json:"source,omitempty"`
	Ticker   string    `json:"ticker,omitempty"`
	URL      string    `json:"url,omitempty"`
}

// SentimentVector is the lexicon analyzer output for one piece of text.
type SentimentVector struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// AnnotatedHeadline joins a headline with its sentiment vector.
type AnnotatedHeadline struct {
	HeadlineRecord
	SentimentVector
}

// DailySentiment is the mean compound score of all headlines on one day.
type DailySentiment struct {
	Date  time.Time
	Mean  float64
	Count int
}

// TermCount is how often a scored lexicon term occurs across headlines.
type TermCount struct {
	Term  string
	Count int
}
