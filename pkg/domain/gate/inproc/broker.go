package inproc

import (
	"context"
	"fmt"
	"sync"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate"
)

// Broker matches approval requests with operator decisions in process.
//
// The release loops and the HTTP daemon run in one binary and share a
// Broker instance; nothing is persisted, an unanswered request simply
// expires on the controller's timeout after a restart.
type Broker struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest
}

type pendingRequest struct {
	req  gate.Request
	ch   chan gate.Decision
	once sync.Once
}

func New() *Broker {
	return &Broker{pending: map[string]*pendingRequest{}}
}

var (
	_ gate.Gate     = &Broker{}
	_ gate.Resolver = &Broker{}
)

func (b *Broker) Request(ctx context.Context, req gate.Request) (<-chan gate.Decision, func(), error) {
	key := req.Key()

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pending[key]; ok {
		return nil, nil, fmt.Errorf("%w: %s", gate.ErrDuplicateRequest, key)
	}

	p := &pendingRequest{req: req, ch: make(chan gate.Decision, 1)}
	b.pending[key] = p

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.pending[key]; ok && cur == p {
			delete(b.pending, key)
		}
		p.once.Do(func() { close(p.ch) })
	}

	return p.ch, cancel, nil
}

func (b *Broker) Pending(ctx context.Context) ([]gate.Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	reqs := []gate.Request{}
	for _, p := range b.pending {
		reqs = append(reqs, p.req)
	}
	return reqs, nil
}

func (b *Broker) Resolve(ctx context.Context, key string, d gate.Decision) error {
	b.mu.Lock()
	p, ok := b.pending[key]
	if ok {
		delete(b.pending, key)
	}
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: no approval pending for %s", domain.ErrMissing, key)
	}

	p.once.Do(func() {
		p.ch <- d
		close(p.ch)
	})
	return nil
}
