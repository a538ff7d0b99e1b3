package services

import (
	"context"
	"sync"
)

// State is a step of an upload or download pipeline.
type State int

const (
	Idle State = iota
	ResolvingOwner
	FetchingKey
	UnwrappingKey
	Encrypting
	Uploading
	PersistingMetadata
	Downloading
	Decrypting
	Complete
	Failed
)

var stateNames = map[State]string{
	Idle:               "idle",
	ResolvingOwner:     "resolving owner",
	FetchingKey:        "fetching key",
	UnwrappingKey:      "unwrapping key",
	Encrypting:         "encrypting",
	Uploading:          "uploading",
	PersistingMetadata: "persisting metadata",
	Downloading:        "downloading",
	Decrypting:         "decrypting",
	Complete:           "complete",
	Failed:             "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Observer is told about every state a pipeline enters. Gallery pipelines
// run concurrently, so an Observer shared between them must be safe for
// concurrent use.
type Observer func(State)

// Pipeline records the progress of one upload or download. Once Complete or
// Failed it no longer changes.
type Pipeline struct {
	mu       sync.Mutex
	state    State
	history  []State
	err      error
	observer Observer
}

func newPipeline(obs Observer) *Pipeline {
	return &Pipeline{state: Idle, history: []State{Idle}, observer: obs}
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err is the error that moved the pipeline to Failed.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// History lists every state entered, starting with Idle.
func (p *Pipeline) History() []State {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]State, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Pipeline) set(s State, err error) bool {
	p.mu.Lock()
	if p.state == Complete || p.state == Failed {
		p.mu.Unlock()
		return false
	}
	p.state = s
	p.err = err
	p.history = append(p.history, s)
	obs := p.observer
	p.mu.Unlock()

	if obs != nil {
		obs(s)
	}
	return true
}

// enter moves to s unless ctx is already done, in which case the pipeline
// fails with the context error.
func (p *Pipeline) enter(ctx context.Context, s State) error {
	if err := ctx.Err(); err != nil {
		return p.fail(err)
	}
	p.set(s, nil)
	return nil
}

func (p *Pipeline) fail(err error) error {
	p.set(Failed, err)
	return err
}

func (p *Pipeline) complete() {
	p.set(Complete, nil)
}
