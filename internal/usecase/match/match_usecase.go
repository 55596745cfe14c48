package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gdugdh24/recapp-backend/internal/domain"
	"github.com/gdugdh24/recapp-backend/internal/infrastructure/observability"
	"github.com/gdugdh24/recapp-backend/internal/repository"
	"github.com/gdugdh24/recapp-backend/internal/usecase/compatibility"
)

// MatchCache holds ranked match lists per user. Every Invalidate bumps the
// user's generation; Set stores nothing unless the generation it carries,
// taken from Get before the list was computed, is still current.
type MatchCache interface {
	Get(ctx context.Context, userID string) (matches []domain.Match, generation int64, ok bool, err error)
	Set(ctx context.Context, userID string, generation int64, matches []domain.Match) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Explainer writes a natural-language summary for a scored pair.
type Explainer interface {
	ExplainMatch(ctx context.Context, me, other *domain.Profile, e *domain.MatchExplanation) (string, error)
}

type Config struct {
	Limit int
	// PageSize is how many candidates are loaded per store round trip.
	// Every eligible candidate is scored regardless.
	PageSize int
}

type MatchUseCase struct {
	profileRepo repository.ProfileRepository
	requestRepo repository.FriendRequestRepository
	friendRepo  repository.FriendshipRepository
	cache       MatchCache
	explainer   Explainer
	cfg         Config
	logger      *slog.Logger
}

func NewMatchUseCase(
	profileRepo repository.ProfileRepository,
	requestRepo repository.FriendRequestRepository,
	friendRepo repository.FriendshipRepository,
	cache MatchCache,
	explainer Explainer,
	cfg Config,
	logger *slog.Logger,
) *MatchUseCase {
	if cfg.Limit <= 0 {
		cfg.Limit = 20
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	return &MatchUseCase{
		profileRepo: profileRepo,
		requestRepo: requestRepo,
		friendRepo:  friendRepo,
		cache:       cache,
		explainer:   explainer,
		cfg:         cfg,
		logger:      logger,
	}
}

// GetMatches returns the caller's top candidates, best first. Users who have
// not finished the survey get an empty list.
func (uc *MatchUseCase) GetMatches(ctx context.Context, callerID, userID string) ([]domain.Match, error) {
	if callerID != userID {
		return nil, domain.ErrForbidden
	}

	me, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !me.SurveyCompleted {
		return []domain.Match{}, nil
	}

	cached, generation, cacheable := uc.fromCache(ctx, userID)
	if cached != nil {
		return cached, nil
	}

	start := time.Now()

	var friendIDs, pendingIDs []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := uc.friendRepo.ListFriendIDs(gctx, userID)
		friendIDs = ids
		return err
	})
	g.Go(func() error {
		ids, err := uc.requestRepo.ListPendingCounterparts(gctx, userID)
		pendingIDs = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	exclude := make([]string, 0, 1+len(friendIDs)+len(pendingIDs))
	exclude = append(exclude, userID)
	exclude = append(exclude, friendIDs...)
	exclude = append(exclude, pendingIDs...)

	matches := []domain.Match{}
	scored := 0
	after := ""
	for {
		page, err := uc.profileRepo.ListMatchable(ctx, after, exclude, uc.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		scored += len(page)
		matches = keepBest(append(matches, rank(me, page, exclude, uc.cfg.Limit)...), uc.cfg.Limit)
		if len(page) < uc.cfg.PageSize {
			break
		}
		after = page[len(page)-1].UserID
	}
	observability.ObserveMatchComputation(scored, time.Since(start))

	if cacheable {
		if err := uc.cache.Set(ctx, userID, generation, matches); err != nil {
			uc.logger.Warn("failed to cache matches", "user_id", userID, "error", err)
		}
	}
	return matches, nil
}

// fromCache returns a cached list on a hit. On a miss it returns the
// generation to store the fresh list under; cacheable is false when the
// cache could not be read.
func (uc *MatchUseCase) fromCache(ctx context.Context, userID string) (cached []domain.Match, generation int64, cacheable bool) {
	cached, generation, ok, err := uc.cache.Get(ctx, userID)
	switch {
	case err != nil:
		observability.RecordMatchCacheResult("error")
		uc.logger.Warn("match cache unavailable", "user_id", userID, "error", err)
		return nil, 0, false
	case ok:
		observability.RecordMatchCacheResult("hit")
		if cached == nil {
			cached = []domain.Match{}
		}
		return cached, generation, true
	default:
		observability.RecordMatchCacheResult("miss")
		return nil, generation, true
	}
}

// rank scores candidates against me and keeps the best limit of them.
// Ties break on user id so ordering is stable.
func rank(me *domain.Profile, candidates []*domain.Profile, exclude []string, limit int) []domain.Match {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	matches := make([]domain.Match, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := skip[c.UserID]; ok || !c.SurveyCompleted {
			continue
		}
		result := compatibility.Score(me, c)
		matches = append(matches, toMatch(c, result))
	}

	return keepBest(matches, limit)
}

// keepBest orders matches best first and drops all but limit of them.
func keepBest(matches []domain.Match, limit int) []domain.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CompatibilityScore != matches[j].CompatibilityScore {
			return matches[i].CompatibilityScore > matches[j].CompatibilityScore
		}
		return matches[i].UserID < matches[j].UserID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func toMatch(p *domain.Profile, r compatibility.Result) domain.Match {
	m := domain.Match{
		UserID:             p.UserID,
		Name:               p.FullName,
		PhotoURL:           p.PhotoURL,
		Sports:             append([]string{}, p.Sports...),
		CompatibilityScore: r.Score,
		ScoreBreakdown:     r.Breakdown,
	}
	if p.GymLevel != nil {
		m.GymLevel = *p.GymLevel
	}
	if p.WorkoutGoal != nil {
		m.WorkoutGoal = *p.WorkoutGoal
	}
	return m
}

// ExplainMatch details the score between the caller and another user.
func (uc *MatchUseCase) ExplainMatch(ctx context.Context, callerID, userID, otherUserID string) (*domain.MatchExplanation, error) {
	if callerID != userID {
		return nil, domain.ErrForbidden
	}
	if userID == otherUserID {
		return nil, domain.NewError(domain.KindValidation, "cannot explain a match with yourself")
	}

	var me, other *domain.Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.profileRepo.GetByUserID(gctx, userID)
		me = p
		return err
	})
	g.Go(func() error {
		p, err := uc.profileRepo.GetByUserID(gctx, otherUserID)
		other = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !me.SurveyCompleted || !other.SurveyCompleted {
		return nil, domain.ErrSurveyIncomplete
	}

	result := compatibility.Score(me, other)
	e := &domain.MatchExplanation{
		UserID:             userID,
		OtherUserID:        otherUserID,
		CompatibilityScore: result.Score,
		ScoreBreakdown:     result.Breakdown,
		CommonSports:       compatibility.CommonSports(me.Sports, other.Sports),
		AgeDifference:      ageDifference(me.Age, other.Age),
		GymLevels:          [2]domain.GymLevel{derefLevel(me.GymLevel), derefLevel(other.GymLevel)},
		WorkoutGoals:       [2]string{derefString(me.WorkoutGoal), derefString(other.WorkoutGoal)},
	}

	e.Summary = templateSummary(other, e)
	if uc.explainer != nil {
		summary, err := uc.explainer.ExplainMatch(ctx, me, other, e)
		if err != nil {
			uc.logger.Warn("match explainer unavailable, using template", "user_id", userID, "error", err)
		} else {
			e.Summary = summary
		}
	}
	return e, nil
}

func templateSummary(other *domain.Profile, e *domain.MatchExplanation) string {
	name := "This user"
	if fields := strings.Fields(other.FullName); len(fields) > 0 {
		name = fields[0]
	}

	var parts []string
	switch len(e.CommonSports) {
	case 0:
		parts = append(parts, "you have no sports in common yet")
	default:
		parts = append(parts, "you both play "+joinWords(e.CommonSports))
	}
	if e.GymLevels[0] == e.GymLevels[1] {
		parts = append(parts, fmt.Sprintf("you train at the same level (%s)", e.GymLevels[0]))
	} else {
		parts = append(parts, fmt.Sprintf("you train at %s and %s levels", e.GymLevels[0], e.GymLevels[1]))
	}
	if strings.EqualFold(e.WorkoutGoals[0], e.WorkoutGoals[1]) {
		parts = append(parts, fmt.Sprintf("you share the goal %q", e.WorkoutGoals[0]))
	} else {
		parts = append(parts, "your workout goals differ")
	}

	return fmt.Sprintf("%s is a %d%% match: %s.", name, e.CompatibilityScore, strings.Join(parts, "; "))
}

func joinWords(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func ageDifference(a, b *int) int {
	if a == nil || b == nil {
		return 0
	}
	d := *a - *b
	if d < 0 {
		return -d
	}
	return d
}

func derefLevel(l *domain.GymLevel) domain.GymLevel {
	if l == nil {
		return ""
	}
	return *l
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
