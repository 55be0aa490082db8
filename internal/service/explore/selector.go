package explore

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
)

// ErrNoCandidates means nobody is left to show the viewer.
var ErrNoCandidates = errors.New("no candidates available")

// CandidateRepo is the slice of the store the selector reads.
type CandidateRepo interface {
	EligibleCandidateIDs(ctx context.Context, viewerID int64, exclude []int64) ([]int64, error)
	GetProfile(ctx context.Context, userID int64) (*db.Profile, error)
}

// Pick is the selected candidate. Reset is true when the viewer's recently
// viewed ring had to be ignored to find anyone, and the caller should clear it.
type Pick struct {
	Profile *db.Profile
	Reset   bool
}

// Selector picks the next profile to show, uniformly at random.
type Selector struct {
	repo   CandidateRepo
	intn   func(n int) int
	accept func(p *db.Profile) bool
}

// NewSelector creates a selector backed by repo.
func NewSelector(repo CandidateRepo) *Selector {
	return &Selector{repo: repo, intn: rand.IntN}
}

// WithRand replaces the random source. Used by tests.
func (s *Selector) WithRand(intn func(n int) int) *Selector {
	s.intn = intn
	return s
}

// WithCheck makes the selector re-check every loaded profile with accept.
// The store already filters incomplete profiles; this keeps the
// validation rules authoritative if the two ever disagree.
func (s *Selector) WithCheck(accept func(p *db.Profile) bool) *Selector {
	s.accept = accept
	return s
}

// Next returns a candidate for viewerID.
//
// Behavior:
//   - Pass 1 draws from the eligible pool minus the recently viewed ids.
//   - If that is empty and recent was not, pass 2 ignores recent (Reset=true).
//     Likes, dislikes and matches stay excluded in both passes.
//   - A picked id whose profile vanished, or fails the WithCheck rule, is
//     dropped and the draw repeated.
//   - ErrNoCandidates when both passes come up empty.
func (s *Selector) Next(ctx context.Context, viewerID int64, recent []int64) (Pick, error) {
	exclude := recent
	reset := false
	dropped := make(map[int64]struct{})

	for {
		ids, err := s.repo.EligibleCandidateIDs(ctx, viewerID, exclude)
		if err != nil {
			return Pick{}, err
		}
		ids = without(ids, dropped)

		if len(ids) == 0 {
			if !reset && len(exclude) > 0 {
				exclude, reset = nil, true
				continue
			}
			return Pick{}, ErrNoCandidates
		}

		id := ids[s.intn(len(ids))]
		p, err := s.repo.GetProfile(ctx, id)
		if svcErr.IsNotFound(err) {
			dropped[id] = struct{}{}
			continue
		}
		if err != nil {
			return Pick{}, err
		}
		if s.accept != nil && !s.accept(p) {
			dropped[id] = struct{}{}
			continue
		}
		return Pick{Profile: p, Reset: reset}, nil
	}
}

func without(ids []int64, dropped map[int64]struct{}) []int64 {
	if len(dropped) == 0 {
		return ids
	}
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := dropped[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
