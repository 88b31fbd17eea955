package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"clauselens/internal/domain"
	"clauselens/internal/port"
	"clauselens/internal/provider"
)

// Config holds the orchestrator's retry policy and provider preference.
type Config struct {
	// Preference names the provider to try first ("openai" or "gemini");
	// when it is not configured, whichever provider exists is used.
	Preference string
	// MaxAttempts is the per-clause retry budget around the whole provider
	// round-trip (call + extraction).
	MaxAttempts int
	// BaseDelay is the first backoff delay; it doubles per attempt up to
	// MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultConfig mirrors the calibrated retry policy: three attempts with
// 4s/8s/10s waits.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Analyzer orchestrates clause analysis: provider selection, retrying,
// extraction and the heuristic fallback. Its public operations never fail —
// every path terminates in a fully populated AnalysisResult.
type Analyzer struct {
	providers []port.ReasoningProvider
	cfg       Config
}

// NewAnalyzer creates an Analyzer over the configured providers. An empty
// provider list is valid: every analysis then takes the fallback path.
func NewAnalyzer(providers []port.ReasoningProvider, cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return &Analyzer{providers: providers, cfg: cfg}
}

// selectProvider returns the preferred configured provider, or whichever is
// configured when the preference is absent.
func (a *Analyzer) selectProvider() (port.ReasoningProvider, error) {
	if len(a.providers) == 0 {
		return nil, ErrNoProvider
	}
	for _, p := range a.providers {
		if p.Name() == a.cfg.Preference {
			return p, nil
		}
	}
	return a.providers[0], nil
}

// AnalyzeClause analyzes a single clause. Provider failure, malformed
// output and missing configuration all degrade to the keyword fallback;
// the caller always receives a complete result.
func (a *Analyzer) AnalyzeClause(ctx context.Context, clauseText string, clauseType domain.ClauseType, documentType string) *domain.AnalysisResult {
	res, err := a.analyzeWithRetry(ctx, clauseText, clauseType, documentType)
	if err != nil {
		log.Printf("analysis.AnalyzeClause: falling back to heuristic analysis: %v", err)
		return FallbackAnalysis(clauseText, clauseType, err)
	}
	return res
}

func (a *Analyzer) analyzeWithRetry(ctx context.Context, clauseText string, clauseType domain.ClauseType, documentType string) (*domain.AnalysisResult, error) {
	prov, err := a.selectProvider()
	if err != nil {
		return nil, err
	}

	prompt := BuildClausePrompt(clauseText, string(clauseType), documentType)

	var lastErr error
	delay := a.cfg.BaseDelay
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("analysis canceled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
			if delay > a.cfg.MaxDelay {
				delay = a.cfg.MaxDelay
			}
		}

		raw, err := prov.Complete(ctx, prompt)
		if err != nil {
			log.Printf("analysis.analyzeWithRetry: %s attempt %d/%d failed: %v",
				prov.Name(), attempt, a.cfg.MaxAttempts, err)
			lastErr = err
			// A server-directed wait overrides the exponential schedule
			// for the next attempt.
			var rlErr *provider.RateLimitError
			if errors.As(err, &rlErr) && rlErr.RetryAfter > delay {
				delay = rlErr.RetryAfter
				log.Printf("analysis.analyzeWithRetry: %s rate limited, waiting %s before retry",
					prov.Name(), rlErr.RetryAfter)
			}
			continue
		}

		res, ok := Extract(raw)
		if !ok {
			lastErr = fmt.Errorf("no analysis recoverable from %s output", prov.Name())
			log.Printf("analysis.analyzeWithRetry: attempt %d/%d: %v", attempt, a.cfg.MaxAttempts, lastErr)
			continue
		}

		res.ModelUsed = prov.Name()
		return res, nil
	}
	return nil, fmt.Errorf("all %d attempts exhausted: %w", a.cfg.MaxAttempts, lastErr)
}

// ClauseAnalysis pairs a clause id with its analysis result.
type ClauseAnalysis struct {
	ClauseID string
	Result   *domain.AnalysisResult
}

// AnalyzeBatch applies AnalyzeClause sequentially over the clauses. A failed
// clause degrades to its fallback result rather than aborting the batch; a
// canceled context stops the loop, and results produced up to that point
// remain valid.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, clauses []domain.Clause, documentType string) []ClauseAnalysis {
	results := make([]ClauseAnalysis, 0, len(clauses))
	for _, clause := range clauses {
		if ctx.Err() != nil {
			log.Printf("analysis.AnalyzeBatch: canceled after %d/%d clauses", len(results), len(clauses))
			break
		}
		results = append(results, ClauseAnalysis{
			ClauseID: clause.ID,
			Result:   a.AnalyzeClause(ctx, clause.Text, clause.Type, documentType),
		})
	}
	return results
}

// ProviderStatus reports one provider's availability for health checks.
type ProviderStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// HealthCheck probes every configured provider with a trivial prompt.
func (a *Analyzer) HealthCheck(ctx context.Context) []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(a.providers))
	for _, p := range a.providers {
		st := ProviderStatus{Name: p.Name()}
		if _, err := p.Complete(ctx, "Respond with the word OK."); err != nil {
			st.Error = err.Error()
		} else {
			st.Available = true
		}
		statuses = append(statuses, st)
	}
	return statuses
}
