package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/retention"
	"github.com/okian/podium/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then username ASC (deterministic).
// The BST comparator treats "less" as ranks-earlier, so an in-order
// traversal produces the leaderboard from best to worst. Nodes carry
// subtree sizes, giving O(log n) rank lookups.

// treap node
type node struct {
	id    string
	score int64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore int64, aID string, bScore int64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aID < bID // tie-breaker by username asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int64) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating the higher priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based rank of (id, score), i.e. one plus the number
// of entries that rank strictly earlier. Returns 0 if the node is absent.
func rankOf(n *node, id string, score int64) int {
	ahead := 0
	for n != nil {
		if score == n.score && id == n.id {
			return ahead + nsize(n.left) + 1
		}
		if less(score, id, n.score, n.id) {
			n = n.left
		} else {
			ahead += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in rank order, best first.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{Rank: len(*out) + 1, Username: n.id, Score: n.score})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore keeps the whole index in process memory. Reads and writes
// are linearizable via a single RWMutex; retention is checked lazily on
// every operation so an idle index clears itself without a timer.
type TreapStore struct {
	mu     sync.RWMutex
	root   *node
	byID   map[string]int64
	window *retention.Window

	retentionTTL time.Duration
	now          func() time.Time
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:         make(map[string]int64),
		retentionTTL: retention.DefaultTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.window = retention.NewWindow(
		retention.WithTTL(s.retentionTTL),
		retention.WithClock(s.now),
	)
	return s
}

// expireLocked clears the index if the retention window lapsed.
// Must be called with the write lock held.
func (s *TreapStore) expireLocked() {
	if !s.window.Expired() {
		return
	}
	s.root = nil
	s.byID = make(map[string]int64)
	s.window.Touch()
	metrics.RecordRetentionReset()
	metrics.UpdateLeaderboardSize(0)
}

// expireIfStale performs the lazy expiry check before a read. The fast
// path takes only the read lock.
func (s *TreapStore) expireIfStale() {
	s.mu.RLock()
	expired := s.window.Expired()
	s.mu.RUnlock()
	if !expired {
		return
	}
	s.mu.Lock()
	s.expireLocked()
	s.mu.Unlock()
}

// Upsert implements Store.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, username string, score int64) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if score < 0 {
		metrics.RecordInvalidScore()
		metrics.RecordErrorByComponent("store", "invalid_score")
		return Entry{}, fmt.Errorf("score %d for %q: %w", score, username, ErrInvalidScore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()

	if old, ok := s.byID[username]; ok {
		s.root = deleteNode(s.root, username, old)
	}
	s.root = insert(s.root, username, score)
	s.byID[username] = score
	s.window.Touch()

	if nsize(s.root) != len(s.byID) {
		return Entry{}, fmt.Errorf("tree size %d, map size %d: %w", nsize(s.root), len(s.byID), ErrInvariantViolation)
	}

	rank := rankOf(s.root, username, score)
	if rank < 1 || rank > len(s.byID) {
		return Entry{}, fmt.Errorf("rank %d out of range for %q: %w", rank, username, ErrInvariantViolation)
	}

	metrics.RecordSubmission()
	metrics.UpdateLeaderboardSize(len(s.byID))
	return Entry{Rank: rank, Username: username, Score: score}, nil
}

// Rank returns the current rank and score for a username in O(log n).
func (s *TreapStore) Rank(ctx context.Context, username string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.expireIfStale()

	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.byID[username]
	if !ok {
		metrics.RecordErrorByComponent("store", "not_found")
		return Entry{}, fmt.Errorf("%q: %w", username, ErrNotFound)
	}

	rank := rankOf(s.root, username, score)
	if rank == 0 {
		// Present in the map but missing from the tree.
		return Entry{}, fmt.Errorf("%q present but unranked: %w", username, ErrInvariantViolation)
	}
	return Entry{Rank: rank, Username: username, Score: score}, nil
}

// TopN returns the first n entries under the total order.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n <= 0 {
		return []Entry{}, nil
	}

	s.expireIfStale()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	return out, nil
}

// Count returns the number of participants currently ranked.
func (s *TreapStore) Count(ctx context.Context) (int, error) {
	s.expireIfStale()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
