package api

import (
	"safeplate/server/internal/localize"
)

// DecisionRequest is the decision endpoint payload. Language may be a
// supported code, "auto", or empty; the latter two resolve from the scan
// script.
type DecisionRequest struct {
	ScannedText string `json:"scannedText"`
	Language    string `json:"language"`
}

// DecisionResponse is the success envelope of the decision endpoint. Source
// reports which engine produced the card.
type DecisionResponse struct {
	DecisionCard     localize.Localized `json:"decisionCard"`
	DecisionCardText string             `json:"decisionCardText"`
	Source           string             `json:"source"`
	ResolvedLanguage string             `json:"resolvedLanguage"`
}

// Engine labels for DecisionResponse.Source.
const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

// OCRRequest carries a base64 image data URL and the requested
// page-segmentation mode.
type OCRRequest struct {
	Image string `json:"image"`
	PSM   int    `json:"psm"`
}

// OCRResponse returns the recognized text.
type OCRResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the failure envelope of the decision endpoint.
type ErrorResponse struct {
	Error             string `json:"error"`
	Reason            string `json:"reason"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}
