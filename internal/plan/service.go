package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/planforge/pkg/logger"
)

// GenerateInput is the form payload driving a generation request.
type GenerateInput struct {
	BusinessName string `json:"businessName"`
	Industry     string `json:"industry"`
	Description  string `json:"description"`
	Goals        string `json:"goals,omitempty"`
	TargetMarket string `json:"targetMarket,omitempty"`
}

// Service validates generation requests, drives the completion call, and
// owns plan persistence. It never fails a request because the model is
// unavailable; every failure mode downgrades to a usable document.
type Service struct {
	plans Repository
	llm   CompletionClient
	log   *slog.Logger
	now   func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the plan service.
func NewService(plans Repository, llm CompletionClient, opts ...Option) *Service {
	s := &Service{
		plans: plans,
		llm:   llm,
		log:   logger.NewDiscard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate validates the form, produces the plan content, and persists it
// for the user. The returned plan carries the content so callers can render
// it without a second read.
func (s *Service) Generate(ctx context.Context, userID int64, in GenerateInput) (*Plan, error) {
	if in.BusinessName == "" || in.Industry == "" || in.Description == "" {
		return nil, ErrMissingFields
	}

	content := s.generateContent(ctx, in)
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode plan content: %w", err)
	}

	created, err := s.plans.Create(ctx, &Plan{
		UserID:       userID,
		Title:        "Plan d'affaires - " + in.BusinessName,
		Content:      data,
		BusinessName: in.BusinessName,
		Industry:     in.Industry,
	})
	if err != nil {
		return nil, fmt.Errorf("persist plan: %w", err)
	}

	s.log.InfoContext(ctx, "plan generated",
		"user_id", userID, "plan_id", created.ID, "structured", content.IsStructured())
	return created, nil
}

// generateContent runs the single-attempt completion call and classifies the
// outcome: structured JSON kept verbatim, non-JSON text captured raw, or the
// deterministic fallback when the call itself fails.
func (s *Service) generateContent(ctx context.Context, in GenerateInput) Content {
	text, err := s.llm.Complete(ctx, buildPrompt(in))
	if err != nil {
		s.log.WarnContext(ctx, "generation call failed, using fallback document", "error", err)
		return FallbackDocument(in, s.now())
	}

	if isJSONObject([]byte(text)) {
		return StructuredContent(json.RawMessage(text))
	}

	s.log.WarnContext(ctx, "model response was not a JSON object, keeping raw text")
	return RawFallbackContent(text)
}

// List returns the user's plans, most recent first, without content.
func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	return s.plans.ListByUser(ctx, userID)
}

// Get returns the full plan. A plan owned by someone else yields the same
// ErrPlanNotFound as a missing one.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Plan, error) {
	return s.plans.GetForUser(ctx, id, userID)
}

// Update replaces the plan content in place for the owning user.
func (s *Service) Update(ctx context.Context, userID, id int64, content json.RawMessage) error {
	return s.plans.UpdateContentForUser(ctx, id, userID, content)
}

// buildPrompt renders the instruction the model receives: the submitted
// fields plus a fixed request for eight named sections as direct JSON.
func buildPrompt(in GenerateInput) string {
	prompt := `Tu es un expert en création de plans d'affaires. Crée un plan d'affaires professionnel et complet pour l'entreprise suivante :

Nom: ` + in.BusinessName + `
Industrie: ` + in.Industry + `
Description: ` + in.Description + `
`
	if in.Goals != "" {
		prompt += "Objectifs: " + in.Goals + "\n"
	}
	if in.TargetMarket != "" {
		prompt += "Marché cible: " + in.TargetMarket + "\n"
	}

	prompt += `
Génère un plan d'affaires structuré avec les sections suivantes en français :
1. Résumé exécutif
2. Description de l'entreprise
3. Analyse du marché
4. Stratégie marketing
5. Plan opérationnel
6. Prévisions financières (revenus, coûts, rentabilité)
7. Structure organisationnelle
8. Analyse des risques

Format: JSON avec les clés : executiveSummary, companyDescription, marketAnalysis, marketingStrategy, operationalPlan, financialProjections, organization, riskAnalysis`

	return prompt
}
