package apiclient

import "sync"

// refreshOutcome is what queued callers receive when the in-flight refresh
// settles: either the new token or the refresh error, never both.
type refreshOutcome struct {
	token string
	err   error
}

type flightState int

const (
	flightIdle flightState = iota
	flightRefreshing
)

// refreshGate is the single-flight state machine guarding the refresh
// endpoint. Exactly one caller per expiry event becomes the leader and issues
// the refresh; everyone else queues and resumes with the leader's outcome.
// The Idle->Refreshing transition and the enqueue both happen under one lock,
// so a re-entrant 401 can never race into a second leader.
type refreshGate struct {
	mu      sync.Mutex
	state   flightState
	waiters []chan refreshOutcome
}

// begin reports whether the caller leads the refresh. Followers get a
// buffered channel that receives the outcome; channels are appended and later
// drained in FIFO arrival order.
func (g *refreshGate) begin() (leader bool, wait <-chan refreshOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == flightIdle {
		g.state = flightRefreshing
		return true, nil
	}
	ch := make(chan refreshOutcome, 1)
	g.waiters = append(g.waiters, ch)
	return false, ch
}

// settle returns the gate to Idle and resolves every waiter uniformly with
// the given outcome. The queue is drained before any waiter can replay.
func (g *refreshGate) settle(token string, err error) {
	g.mu.Lock()
	ws := g.waiters
	g.waiters = nil
	g.state = flightIdle
	g.mu.Unlock()

	for _, ch := range ws {
		ch <- refreshOutcome{token: token, err: err}
	}
}

// pending reports the queue depth, for tests.
func (g *refreshGate) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
