package match

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/core/ports"
)

// mixTypeHintBonus is added when a candidate title carries the mix type
// the caller expects.
const mixTypeHintBonus = 1

// Orchestrator drives an ordered sequence of queries against the search
// collaborator, scores every new candidate, and applies the early-exit
// stopping policy. One orchestration run owns its dedup set, candidate
// list, and audit trail exclusively; runs are safe to execute
// concurrently for different tracks.
type Orchestrator struct {
	provider ports.SearchProvider
	parser   ports.PageParser
	scorer   *Scorer
	cfg      Config
}

// NewOrchestrator constructs an Orchestrator. Invalid config values are
// replaced by defaults.
func NewOrchestrator(provider ports.SearchProvider, parser ports.PageParser, cfg Config) *Orchestrator {
	cfg = cfg.normalized()
	return &Orchestrator{
		provider: provider,
		parser:   parser,
		scorer:   NewScorer(cfg),
		cfg:      cfg,
	}
}

// runState is the per-track working set. It never outlives a single
// FindBestMatch call.
type runState struct {
	seen  map[string]struct{}
	all   []domain.Candidate
	audit []domain.QueryAuditEntry
	best  *domain.Candidate
	last  int
}

// FindBestMatch executes the query list in order and returns the best
// scoring candidate, all candidates considered, and the audit trail.
// Budget exhaustion and cancellation are normal terminal states, not
// errors: the result always reflects the last fully-scored candidate
// list. The only error for well-formed collaborators is
// domain.ErrEmptyTitle.
func (o *Orchestrator) FindBestMatch(ctx context.Context, req domain.MatchRequest) (domain.MatchResult, error) {
	if strings.TrimSpace(req.Title) == "" {
		return domain.MatchResult{}, domain.ErrEmptyTitle
	}

	if req.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Budget)
		defer cancel()
	}

	st := &runState{seen: make(map[string]struct{}), last: -1}
	stop := domain.StopExhausted

	for i, q := range req.Queries {
		if ctx.Err() != nil {
			stop = stopReason(ctx)
			break
		}
		interrupted := o.runQuery(ctx, req, i, q, st)
		if interrupted {
			stop = stopReason(ctx)
			break
		}
		if o.shouldExitEarly(st, i) {
			stop = domain.StopEarlyExit
			break
		}
	}

	res := domain.MatchResult{
		Best:           st.best,
		All:            st.all,
		Audit:          st.audit,
		LastQueryIndex: st.last,
		Confidence:     domain.ConfidenceLow,
		StopReason:     stop,
	}
	if st.best != nil {
		res.Confidence = Classify(st.best.Total)
	}
	return res, nil
}

// runQuery executes one query end to end: search, dedup, parse, score,
// audit. It reports true when the run was interrupted by budget
// exhaustion or cancellation; the state it leaves behind is always fully
// scored and valid to return.
func (o *Orchestrator) runQuery(ctx context.Context, req domain.MatchRequest, idx int, query string, st *runState) bool {
	found := 0
	record := func() {
		st.audit = append(st.audit, domain.QueryAuditEntry{
			QueryIndex:      idx,
			QueryText:       query,
			CandidatesFound: found,
			Timestamp:       time.Now(),
		})
		st.last = idx
	}

	urls, err := o.search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			record()
			return true
		}
		log.Printf("WARN match engine: track %d query %d %q: search failed: %v", req.TrackIndex, idx, query, err)
		urls = nil
	}

	for _, u := range urls {
		if _, dup := st.seen[u]; dup {
			continue
		}
		st.seen[u] = struct{}{}

		cand, ok, err := o.parse(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				record()
				return true
			}
			log.Printf("WARN match engine: track %d: dropping %s: %v", req.TrackIndex, u, err)
			continue
		}
		if !ok {
			continue
		}
		if cand.URL == "" {
			cand.URL = u
		}

		o.scoreCandidate(req, &cand)
		st.all = append(st.all, cand)
		found++
		if st.best == nil || cand.Total > st.best.Total {
			c := cand
			st.best = &c
		}
	}

	record()
	return false
}

func (o *Orchestrator) shouldExitEarly(st *runState, queryIdx int) bool {
	if o.cfg.RunAllQueries {
		return false
	}
	return st.best != nil &&
		st.best.Total >= o.cfg.EarlyExitScore &&
		queryIdx+1 >= o.cfg.EarlyExitMinQueries
}

// scoreCandidate fills in the candidate's score fields: the weighted
// title/artist combination plus key, year, and mix-type hint bonuses.
func (o *Orchestrator) scoreCandidate(req domain.MatchRequest, cand *domain.Candidate) {
	srcTitle := req.Title
	candTitle := cand.Title
	if len(req.Hints.GenericPhrases) > 0 {
		if stripped := stripGenericPhrases(Normalize(srcTitle), req.Hints.GenericPhrases); stripped != "" {
			srcTitle = stripped
			if cs := stripGenericPhrases(Normalize(cand.Title), req.Hints.GenericPhrases); cs != "" {
				candTitle = cs
			}
		}
	}

	comps := o.scorer.ScoreComponents(srcTitle, req.Artists, candTitle, cand.Artist)
	if req.TitleOnly {
		comps.ArtistSim = 0
		comps.Combined = float64(comps.TitleSim)
	}

	total := comps.Combined
	total += float64(KeyBonus(req.Hints.ExpectedKey, cand.Key))
	total += float64(YearBonus(req.Hints.ExpectedYear, cand.Year))
	if req.Hints.ExpectedMixType != "" &&
		strings.Contains(strings.ToLower(cand.Title), strings.ToLower(req.Hints.ExpectedMixType)) {
		total += mixTypeHintBonus
	}

	cand.Score = comps
	cand.Total = total
}

func (o *Orchestrator) search(ctx context.Context, query string) ([]string, error) {
	if o.cfg.PerQueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.PerQueryTimeout)
		defer cancel()
	}
	return o.provider.Search(ctx, query, o.cfg.MaxResultsPerQuery)
}

func (o *Orchestrator) parse(ctx context.Context, url string) (domain.Candidate, bool, error) {
	if o.cfg.PerQueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.PerQueryTimeout)
		defer cancel()
	}
	return o.parser.Parse(ctx, url)
}

func stopReason(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.StopBudgetExhausted
	}
	return domain.StopCanceled
}
