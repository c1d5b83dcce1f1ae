package store

import "time"

// LabelSetRecord persists one translated set of card heading labels per
// language so a restart does not re-pay the translation call. No user scan
// or decision data is ever stored.
type LabelSetRecord struct {
	ID               uint   `gorm:"primaryKey"`
	Language         string `gorm:"uniqueIndex;size:16"`
	DecisionCard     string
	Verdict          string
	WhyThisMatters   string
	WhyYouMightCare  string
	Confidence       string
	Uncertainty      string
	BetterChoiceHint string
	Closure          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
