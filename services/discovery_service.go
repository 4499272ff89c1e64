package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"astromatch_server/models"
)

const (
	// discoveryBatchSize is the number of unseen profiles requested per refill
	discoveryBatchSize = 10

	// minCityUsers is the floor of onboarded users a city needs before
	// discovery shows anything
	minCityUsers = 10

	// refillThreshold is the consumed fraction of the queue past which a swipe
	// triggers a look-ahead refill. Tunable; observed behavior in the product
	// varied between 70% and 80%, this codebase fixes it at 75%.
	refillThreshold = 0.75
)

// SessionState names the discovery session lifecycle states
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateLoading   SessionState = "loading"
	StateReady     SessionState = "ready"
	StateExhausted SessionState = "exhausted"
	StateError     SessionState = "error"
)

var (
	ErrNoCandidate         = errors.New("no candidate at the current cursor")
	ErrSessionClosed       = errors.New("discovery session is closed")
	ErrIncompleteBirthData = errors.New("profile is missing complete birth data")
)

// User-facing error strings surfaced through the session snapshot
const (
	msgIncompleteBirthData = "Please complete your birth details (date, time, and place) in your profile to see astrological matches."
	msgLoadFailed          = "Failed to load astrological matches. Please try again."
)

// CandidateSource is the profile-store slice discovery needs
type CandidateSource interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	CountCityUsers(ctx context.Context, userID, city string) (int, error)
	GetUnseenProfiles(ctx context.Context, city string, exclude map[string]struct{}, limit int) ([]models.UserProfile, error)
}

// InteractionStore records swipes and reports which targets are already seen
type InteractionStore interface {
	RecordInteraction(ctx context.Context, userID, targetUserID, interactionType string) error
	RecordSwipe(ctx context.Context, userID, targetUserID, interactionType string, score int, description string) error
	GetInteractedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// CompatibilityScorer returns one result per target, defaults filled in
type CompatibilityScorer interface {
	ScoreCandidates(ctx context.Context, user BirthData, targets []BirthData) []CompatibilityResult
}

// DiscoverySession holds one user's score-ranked queue of swipeable candidates
// and a cursor into it, refilling transparently as the cursor approaches the
// end. A session is owned by exactly one user; the mutex covers concurrent
// HTTP handlers touching it.
type DiscoverySession struct {
	userID       string
	profiles     CandidateSource
	interactions InteractionStore
	scorer       CompatibilityScorer

	mu              sync.Mutex
	state           SessionState
	candidates      []models.RankedCandidate
	cursor          int
	hasEnoughUsers  bool
	processingCount int
	errMsg          string
	refilling       bool
	generation      uint64
	closed          bool
}

// DiscoverySnapshot is the session state handed to the HTTP layer
type DiscoverySnapshot struct {
	State           SessionState            `json:"state"`
	HasEnoughUsers  bool                    `json:"hasEnoughUsers"`
	ProcessingCount int                     `json:"processingCount"`
	Error           string                  `json:"error,omitempty"`
	QueueLength     int                     `json:"queueLength"`
	Cursor          int                     `json:"cursor"`
	Current         *models.RankedCandidate `json:"current,omitempty"`
}

func NewDiscoverySession(userID string, profiles CandidateSource, interactions InteractionStore, scorer CompatibilityScorer) *DiscoverySession {
	return &DiscoverySession{
		userID:       userID,
		profiles:     profiles,
		interactions: interactions,
		scorer:       scorer,
		state:        StateIdle,
	}
}

type refillOutcome struct {
	ranked    []models.RankedCandidate
	hasEnough bool
}

// Refill fetches, filters, scores and ranks a new batch of candidates. With
// replace it overwrites the queue and resets the cursor; otherwise it appends
// without disturbing the cursor. At most one refill runs at a time: a call
// arriving while one is in flight is dropped. Each refill carries the session
// generation as its token; completions whose token is no longer current (the
// session was closed mid-flight) are discarded.
func (s *DiscoverySession) Refill(ctx context.Context, replace bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.refilling {
		s.mu.Unlock()
		return nil
	}
	s.refilling = true
	s.state = StateLoading
	s.errMsg = ""
	s.generation++
	gen := s.generation
	queued := make(map[string]struct{}, len(s.candidates))
	for _, c := range s.candidates {
		queued[c.UserID] = struct{}{}
	}
	s.mu.Unlock()

	out, err := s.fetchAndRank(ctx, queued)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refilling = false
	s.processingCount = 0
	if s.closed || gen != s.generation {
		return nil
	}

	if err != nil {
		if errors.Is(err, ErrIncompleteBirthData) {
			s.errMsg = msgIncompleteBirthData
		} else {
			log.Printf("Refill failed for %s: %v", s.userID, err)
			s.errMsg = msgLoadFailed
		}
		s.state = StateError
		if replace {
			s.candidates = nil
			s.cursor = 0
		}
		return err
	}

	s.hasEnoughUsers = out.hasEnough
	wasSpent := s.cursor >= len(s.candidates)
	if replace {
		s.candidates = out.ranked
		s.cursor = 0
		wasSpent = true
	} else {
		s.candidates = append(s.candidates, out.ranked...)
	}

	if s.cursor < len(s.candidates) {
		s.state = StateReady
	} else {
		s.state = StateExhausted
	}

	// A candidate becoming visible gets a viewed record, whether from a fresh
	// queue or an append that revived a spent one
	if wasSpent && s.cursor < len(s.candidates) {
		go s.recordViewed(s.candidates[s.cursor].UserID)
	}
	return nil
}

// fetchAndRank does the remote legwork of a refill. queued carries ids already
// held in the local queue so an append never duplicates a pending candidate.
func (s *DiscoverySession) fetchAndRank(ctx context.Context, queued map[string]struct{}) (refillOutcome, error) {
	var out refillOutcome

	profile, err := s.profiles.GetUserProfile(ctx, s.userID)
	if err != nil {
		return out, fmt.Errorf("failed to load requesting profile: %w", err)
	}
	if !profile.HasCompleteBirthData() {
		return out, ErrIncompleteBirthData
	}

	count, err := s.profiles.CountCityUsers(ctx, s.userID, profile.CurrentCity)
	if err != nil {
		return out, fmt.Errorf("failed to count city users: %w", err)
	}
	if count < minCityUsers {
		return out, nil
	}
	out.hasEnough = true

	interacted, err := s.interactions.GetInteractedUserIDs(ctx, s.userID)
	if err != nil {
		return out, fmt.Errorf("failed to load interactions: %w", err)
	}

	exclude := make(map[string]struct{}, len(interacted)+len(queued)+1)
	exclude[s.userID] = struct{}{}
	for id := range interacted {
		exclude[id] = struct{}{}
	}
	for id := range queued {
		exclude[id] = struct{}{}
	}

	unseen, err := s.profiles.GetUnseenProfiles(ctx, profile.CurrentCity, exclude, discoveryBatchSize)
	if err != nil {
		return out, fmt.Errorf("failed to fetch unseen profiles: %w", err)
	}
	if len(unseen) == 0 {
		out.hasEnough = false
		return out, nil
	}

	var compatible []models.UserProfile
	for _, candidate := range unseen {
		if !candidate.HasCompleteBirthData() {
			continue
		}
		if !models.IsCompatibleOrientation(
			profile.SexualOrientation, profile.DatingPreference,
			candidate.SexualOrientation, candidate.DatingPreference,
		) {
			continue
		}
		compatible = append(compatible, candidate)
	}
	if len(compatible) == 0 {
		out.hasEnough = false
		return out, nil
	}

	s.mu.Lock()
	s.processingCount = len(compatible)
	s.mu.Unlock()

	targets := make([]BirthData, len(compatible))
	for i, c := range compatible {
		targets[i] = BirthDataFromProfile(&c)
	}
	results := s.scorer.ScoreCandidates(ctx, BirthDataFromProfile(profile), targets)

	ranked := make([]models.RankedCandidate, len(compatible))
	for i, c := range compatible {
		ranked[i] = models.RankedCandidate{
			UserID:                   c.UserID,
			Name:                     c.Name,
			Age:                      c.Age(),
			Bio:                      c.Bio,
			CurrentCity:              c.CurrentCity,
			SexualOrientation:        c.SexualOrientation,
			DatingPreference:         c.DatingPreference,
			ProfileImages:            c.ProfileImages,
			CompatibilityScore:       results[i].Score,
			CompatibilityDescription: results[i].Description,
		}
	}

	// Highest score first; ties keep arrival order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompatibilityScore > ranked[j].CompatibilityScore
	})

	out.ranked = ranked
	return out, nil
}

// Like records a liked interaction for the current candidate and advances
func (s *DiscoverySession) Like(ctx context.Context) error {
	return s.swipe(ctx, models.InteractionTypeLiked)
}

// Pass records a passed interaction for the current candidate and advances
func (s *DiscoverySession) Pass(ctx context.Context) error {
	return s.swipe(ctx, models.InteractionTypePassed)
}

func (s *DiscoverySession) swipe(ctx context.Context, kind string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.cursor >= len(s.candidates) {
		s.mu.Unlock()
		return ErrNoCandidate
	}
	cand := s.candidates[s.cursor]
	s.mu.Unlock()

	// The interaction write is awaited: if it fails the cursor stays put so the
	// candidate cannot be silently skipped.
	if err := s.interactions.RecordSwipe(ctx, s.userID, cand.UserID, kind, cand.CompatibilityScore, cand.CompatibilityDescription); err != nil {
		return err
	}

	var nextID string
	triggerRefill := false

	s.mu.Lock()
	s.cursor++
	consumed := float64(s.cursor) / float64(len(s.candidates))
	if s.cursor < len(s.candidates) {
		nextID = s.candidates[s.cursor].UserID
		s.state = StateReady
	} else {
		s.state = StateExhausted
	}
	if consumed >= refillThreshold && !s.refilling {
		triggerRefill = true
	}
	s.mu.Unlock()

	if nextID != "" {
		go s.recordViewed(nextID)
	}
	if triggerRefill {
		// Look-ahead refill must not block the cursor advance. The in-flight
		// guard inside Refill keeps rapid swipes from issuing duplicates.
		go func() {
			if err := s.Refill(context.Background(), false); err != nil {
				log.Printf("Look-ahead refill failed for %s: %v", s.userID, err)
			}
		}()
	}
	return nil
}

// Current returns the candidate at the cursor, or false when the queue is spent
func (s *DiscoverySession) Current() (models.RankedCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.candidates) {
		return models.RankedCandidate{}, false
	}
	return s.candidates[s.cursor], true
}

// Snapshot returns the session state for rendering
func (s *DiscoverySession) Snapshot() DiscoverySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := DiscoverySnapshot{
		State:           s.state,
		HasEnoughUsers:  s.hasEnoughUsers,
		ProcessingCount: s.processingCount,
		Error:           s.errMsg,
		QueueLength:     len(s.candidates),
		Cursor:          s.cursor,
	}
	if s.cursor < len(s.candidates) {
		current := s.candidates[s.cursor]
		snap.Current = &current
	}
	return snap
}

// Close tears the session down. The generation bump makes any in-flight refill
// discard its result instead of mutating a dead session.
func (s *DiscoverySession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}

func (s *DiscoverySession) recordViewed(targetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.interactions.RecordInteraction(ctx, s.userID, targetID, models.InteractionTypeViewed); err != nil {
		log.Printf("Failed to record viewed interaction for %s: %v", targetID, err)
	}
}

// DiscoveryService owns one discovery session per active user
type DiscoveryService struct {
	Profiles     CandidateSource
	Interactions InteractionStore
	Scorer       CompatibilityScorer

	mu       sync.Mutex
	sessions map[string]*DiscoverySession
}

func NewDiscoveryService(profiles CandidateSource, interactions InteractionStore, scorer CompatibilityScorer) *DiscoveryService {
	return &DiscoveryService{
		Profiles:     profiles,
		Interactions: interactions,
		Scorer:       scorer,
		sessions:     make(map[string]*DiscoverySession),
	}
}

// Session returns the user's discovery session, creating it on first use
func (ds *DiscoveryService) Session(userID string) *DiscoverySession {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if session, ok := ds.sessions[userID]; ok {
		return session
	}
	session := NewDiscoverySession(userID, ds.Profiles, ds.Interactions, ds.Scorer)
	ds.sessions[userID] = session
	return session
}

// CloseSession tears down and forgets the user's session
func (ds *DiscoveryService) CloseSession(userID string) {
	ds.mu.Lock()
	session, ok := ds.sessions[userID]
	delete(ds.sessions, userID)
	ds.mu.Unlock()
	if ok {
		session.Close()
	}
}
