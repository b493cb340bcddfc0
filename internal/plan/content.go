package plan

import (
	"bytes"
	"encoding/json"
	"time"
)

// Document is the structured business plan shape the model is asked to
// produce. All sections are optional; financial projections are free-shaped
// (the model may return text or a nested object).
type Document struct {
	ExecutiveSummary     string          `json:"executiveSummary,omitempty"`
	CompanyDescription   string          `json:"companyDescription,omitempty"`
	MarketAnalysis       string          `json:"marketAnalysis,omitempty"`
	MarketingStrategy    string          `json:"marketingStrategy,omitempty"`
	OperationalPlan      string          `json:"operationalPlan,omitempty"`
	FinancialProjections json.RawMessage `json:"financialProjections,omitempty"`
	Organization         string          `json:"organization,omitempty"`
	RiskAnalysis         string          `json:"riskAnalysis,omitempty"`
	GeneratedAt          string          `json:"generatedAt,omitempty"`
}

// RawContent preserves a model response that was not parseable JSON: the full
// text plus a best-effort summary extraction, instead of failing the request.
type RawContent struct {
	RawContent string      `json:"rawContent"`
	Sections   RawSections `json:"sections"`
}

// RawSections is the extraction attached to raw content.
type RawSections struct {
	ExecutiveSummary string `json:"executiveSummary"`
	FullContent      string `json:"fullContent"`
}

const rawSummaryLimit = 500

// Content is the tagged result of a generation attempt: either a structured
// JSON document (model output kept verbatim, or the deterministic fallback)
// or a raw-text capture with an extracted summary.
type Content struct {
	structured json.RawMessage
	raw        *RawContent
}

// StructuredContent wraps a JSON object document verbatim.
func StructuredContent(doc json.RawMessage) Content {
	return Content{structured: doc}
}

// RawFallbackContent captures non-JSON model output, extracting the first
// part of the text as a summary placeholder.
func RawFallbackContent(text string) Content {
	summary := text
	if runes := []rune(text); len(runes) > rawSummaryLimit {
		summary = string(runes[:rawSummaryLimit])
	}
	return Content{raw: &RawContent{
		RawContent: text,
		Sections:   RawSections{ExecutiveSummary: summary, FullContent: text},
	}}
}

// FallbackDocument builds the deterministic plan used when the generation
// call fails entirely. Availability wins over quality on this path: the
// document is assembled purely from the submitted fields.
func FallbackDocument(in GenerateInput, now time.Time) Content {
	doc := Document{
		ExecutiveSummary:     "Résumé exécutif pour " + in.BusinessName + ". " + in.Description,
		CompanyDescription:   in.Description,
		MarketAnalysis:       "Analyse du marché pour l'industrie " + in.Industry,
		MarketingStrategy:    "Stratégie marketing à définir",
		OperationalPlan:      "Plan opérationnel à définir",
		FinancialProjections: json.RawMessage(`{"revenue":"À estimer","costs":"À estimer","profit":"À estimer"}`),
		Organization:         "Structure à définir",
		RiskAnalysis:         "Risques à identifier",
		GeneratedAt:          now.UTC().Format(time.RFC3339),
	}
	data, _ := json.Marshal(doc) // cannot fail: fixed shape
	return Content{structured: data}
}

// IsStructured reports whether the content is a JSON document rather than a
// raw-text capture.
func (c Content) IsStructured() bool {
	return c.structured != nil
}

// MarshalJSON emits the variant that is set.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.structured != nil {
		return c.structured, nil
	}
	return json.Marshal(c.raw)
}

// isJSONObject reports whether data is a valid JSON object, the expected
// shape of a structured model response.
func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
