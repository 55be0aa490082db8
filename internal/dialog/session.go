package dialog

import (
	"sync"

	"github.com/oggyb/matchbot/internal/db"
)

const (
	viewedCap  = 50
	viewedKeep = 25
)

// Session is the per-user conversation state. It lives in memory only;
// after a restart every user starts again from Terminal.
type Session struct {
	State State
	// Draft collects sign-up answers until the photo step writes them.
	Draft db.Profile
	// Viewing is the candidate currently on screen, 0 when none.
	Viewing int64
	// Viewed is the recently shown ring, oldest first.
	Viewed []int64
}

// remember records a shown candidate. Past viewedCap entries the ring is
// trimmed to the newest viewedKeep.
func (s *Session) remember(id int64) {
	s.Viewed = append(s.Viewed, id)
	if len(s.Viewed) > viewedCap {
		s.Viewed = append([]int64(nil), s.Viewed[len(s.Viewed)-viewedKeep:]...)
	}
}

func (s *Session) clone() Session {
	c := *s
	c.Viewed = append([]int64(nil), s.Viewed...)
	return c
}

type slot struct {
	mu      sync.Mutex
	session Session
}

// sessions hands out one slot per user. Holding a slot's mutex serializes
// that user's events; different users never contend.
type sessions struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

func newSessions() *sessions {
	return &sessions{slots: make(map[int64]*slot)}
}

// lock returns the user's slot with its mutex held.
func (s *sessions) lock(userID int64) *slot {
	s.mu.Lock()
	sl, ok := s.slots[userID]
	if !ok {
		sl = &slot{session: Session{State: Terminal}}
		s.slots[userID] = sl
	}
	s.mu.Unlock()

	sl.mu.Lock()
	return sl
}

// get returns a copy of the user's session.
func (s *sessions) get(userID int64) Session {
	sl := s.lock(userID)
	defer sl.mu.Unlock()
	return sl.session.clone()
}
