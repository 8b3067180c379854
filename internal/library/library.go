// Package library holds the reading-client content model consumed by
// the playback pipeline: podcasts with dialogue scripts and an optional
// pre-produced audio reference.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrNotFound indicates the requested podcast does not exist.
var ErrNotFound = errors.New("library: podcast not found")

// GeneratedRefPrefix marks an AudioRef that names no real media: the
// audio must be generated from the script instead.
const GeneratedRefPrefix = "tts:"

// Speaker identifies who delivers a turn.
type Speaker string

// Known speakers.
const (
	SpeakerHost     Speaker = "host"
	SpeakerNarrator Speaker = "narrator"
)

// Turn is one dialogue line of a podcast script.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Podcast is an immutable content item. AudioRef may point at
// pre-produced media, carry the generated-ref sentinel, or be empty.
type Podcast struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Script   []Turn `json:"script"`
	AudioRef string `json:"audio_ref,omitempty"`
}

// NeedsGeneration reports whether playback must synthesize audio from
// the script rather than load AudioRef.
func (p *Podcast) NeedsGeneration() bool {
	return p.AudioRef == "" || strings.HasPrefix(p.AudioRef, GeneratedRefPrefix)
}

// ScriptText flattens the script into the text handed to the speech
// generator. Turns are joined in order; speakers are not voiced
// separately.
func (p *Podcast) ScriptText() string {
	parts := make([]string, 0, len(p.Script))
	for _, turn := range p.Script {
		text := strings.TrimSpace(turn.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// LoadFile reads a podcast definition from a JSON file.
func LoadFile(path string) (*Podcast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read podcast file: %w", err)
	}
	var p Podcast
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unable to parse podcast file: %w", err)
	}
	if p.ID == "" {
		p.ID = path
	}
	return &p, nil
}

// Store provides podcast lookup.
type Store interface {
	Get(ctx context.Context, id string) (*Podcast, error)
	List(ctx context.Context) ([]*Podcast, error)
	Put(ctx context.Context, p *Podcast) error
}

// MemoryStore is an in-memory Store with optional simulated latency,
// standing in for a remote content backend.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]*Podcast
	latency time.Duration
}

// NewMemoryStore creates an empty store. latency is applied to every
// operation to mimic a network backend; zero disables it.
func NewMemoryStore(latency time.Duration) *MemoryStore {
	return &MemoryStore{
		items:   make(map[string]*Podcast),
		latency: latency,
	}
}

func (s *MemoryStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Podcast, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	clone := *p
	return &clone, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Podcast, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Podcast, 0, len(s.items))
	for _, p := range s.items {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, p *Podcast) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *p
	s.items[p.ID] = &clone
	return nil
}
