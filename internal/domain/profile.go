package domain

import (
	"context"
	"sync"
	"time"
)

// Span is one timed step of a request
type Span struct {
	Name      string `json:"name"`
	ElapsedMs *int64 `json:"elapsedMs"`
	start     time.Time
}

// Profile collects the spans of a single request. It is safe to add
// spans from several goroutines.
type Profile struct {
	mu    sync.Mutex
	spans []*Span
	start time.Time
}

type profileKey struct{}

func NewProfile() *Profile {
	return &Profile{
		start: time.Now(),
	}
}

func WithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext returns nil when the context has no profile;
// a nil profile ignores spans
func ProfileFromContext(ctx context.Context) *Profile {
	p, _ := ctx.Value(profileKey{}).(*Profile)
	return p
}

// StartSpan begins timing name and returns the func that ends it
func (p *Profile) StartSpan(name string) func() {
	if p == nil {
		return func() {}
	}
	s := &Span{
		Name:  name,
		start: time.Now(),
	}
	p.mu.Lock()
	p.spans = append(p.spans, s)
	p.mu.Unlock()

	return func() {
		elapsed := time.Since(s.start).Milliseconds()
		p.mu.Lock()
		defer p.mu.Unlock()
		if s.ElapsedMs == nil {
			s.ElapsedMs = &elapsed
		}
	}
}

// Spans copies out the spans recorded so far. Unfinished spans have no
// elapsed time.
func (p *Profile) Spans() []Span {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Span, len(p.spans))
	for i, s := range p.spans {
		out[i] = *s
	}
	return out
}

func (p *Profile) TotalMs() int64 {
	return time.Since(p.start).Milliseconds()
}
