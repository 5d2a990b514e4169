package threat

import (
	"fmt"

	"go.uber.org/zap"
)

// ruleFunc inspects a target and returns zero or more findings if its rule matches.
type ruleFunc func(rs *RuleSet, t *target) []finding

// rule is one named entry in the evaluation order.
type rule struct {
	name string
	eval ruleFunc
}

// finding is a single contribution to the accumulator. An empty reason adds
// points silently. When unless is set, the reason is dropped if unless has
// already been recorded; the points are added regardless.
type finding struct {
	points int
	reason string
	unless string
}

// accumulator is the per-call running total. It is never shared between calls.
type accumulator struct {
	score   int
	reasons []string
	hits    []Hit
	current string
}

func (a *accumulator) add(ruleName string, f finding) {
	a.score += f.points
	a.hits = append(a.hits, Hit{Rule: ruleName, Points: f.points})
	if f.reason == "" || (f.unless != "" && a.recorded(f.unless)) {
		return
	}
	a.reasons = append(a.reasons, f.reason)
}

func (a *accumulator) recorded(reason string) bool {
	for _, r := range a.reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// RuleBasedScorer is the default Scorer implementation. It runs a fixed,
// ordered set of rules against the URL and accumulates a score.
// It is immutable after construction and safe for concurrent use.
type RuleBasedScorer struct {
	set    RuleSet
	rules  []rule
	logger *zap.Logger
}

// Option configures a RuleBasedScorer.
type Option func(*RuleBasedScorer)

// WithRuleSet replaces the built-in weights and indicator lists.
func WithRuleSet(rs RuleSet) Option {
	return func(s *RuleBasedScorer) {
		s.set = rs.clone()
	}
}

// WithLogger sets the logger used to report aborted evaluations.
func WithLogger(l *zap.Logger) Option {
	return func(s *RuleBasedScorer) {
		s.logger = l
	}
}

// NewRuleBasedScorer returns a RuleBasedScorer loaded with the default rule
// order. The rule set is validated before the scorer is returned.
func NewRuleBasedScorer(opts ...Option) (*RuleBasedScorer, error) {
	s := &RuleBasedScorer{
		set:    DefaultRuleSet(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.set.Validate(); err != nil {
		return nil, err
	}
	s.rules = defaultRules()
	return s, nil
}

// MustNewRuleBasedScorer is like NewRuleBasedScorer but panics on error.
func MustNewRuleBasedScorer(opts ...Option) *RuleBasedScorer {
	s, err := NewRuleBasedScorer(opts...)
	if err != nil {
		panic(fmt.Sprintf("threat: %v", err))
	}
	return s
}

// Check implements Scorer.
func (s *RuleBasedScorer) Check(rawURL string) Verdict {
	return s.Explain(rawURL).Verdict
}

// Explain scores rawURL and also returns every rule hit in evaluation order.
func (s *RuleBasedScorer) Explain(rawURL string) *Report {
	acc := s.evaluate(rawURL)

	hits := acc.hits
	if hits == nil {
		hits = []Hit{}
	}
	return &Report{
		Verdict: newVerdict(acc.score, acc.reasons),
		Hits:    hits,
	}
}

// RuleNames returns the rule names in evaluation order.
func (s *RuleBasedScorer) RuleNames() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.name
	}
	return names
}

// RuleSet returns a copy of the active rule set.
func (s *RuleBasedScorer) RuleSet() RuleSet {
	return s.set.clone()
}

// evaluate runs every rule in order. A panic stops evaluation; whatever was
// accumulated up to that point is kept.
func (s *RuleBasedScorer) evaluate(rawURL string) (acc *accumulator) {
	acc = &accumulator{}
	defer func() {
		if p := recover(); p != nil {
			s.logger.Warn("rule evaluation aborted",
				zap.String("rule", acc.current),
				zap.Any("panic", p),
				zap.Int("partial_score", acc.score),
			)
		}
	}()

	t := parseTarget(rawURL)
	for _, r := range s.rules {
		acc.current = r.name
		for _, f := range r.eval(&s.set, t) {
			acc.add(r.name, f)
		}
	}
	return acc
}
