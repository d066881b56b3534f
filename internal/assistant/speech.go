package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"fitbuddy/app/internal/domain"
)

// Synthesizer converts plain text into a stream of audio bytes.
// Non-success responses must be reported as *domain.SynthesisError.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

var (
	// ErrPlaybackReleased is returned by reads on a playback that was stopped or replaced.
	ErrPlaybackReleased = errors.New("playback released")
	// ErrSuperseded is returned by Play when a later Play or Stop won while audio was loading.
	ErrSuperseded = errors.New("playback superseded")
)

// PlayerState is the snapshot of a player's flags.
type PlayerState struct {
	Loading  bool `json:"loading"`
	Speaking bool `json:"speaking"`
}

// Player owns at most one active playback. Every transition (play, stop,
// error, natural end) leaves Loading and Speaking in a consistent state.
type Player struct {
	synth Synthesizer

	mu       sync.Mutex
	gen      uint64
	pending  context.CancelFunc // cancels the synthesis call of the load in flight
	active   *Playback
	loading  bool
	speaking bool
}

// NewPlayer returns an idle player.
func NewPlayer(synth Synthesizer) *Player {
	return &Player{synth: synth}
}

// Play releases whatever is playing or loading, then synthesizes text.
// The returned playback must be closed by the caller.
func (p *Player) Play(ctx context.Context, text string) (*Playback, error) {
	clean := StripMarkup(text)
	if clean == "" {
		return nil, fmt.Errorf("nothing to speak: %w", domain.ErrInvalidInput)
	}

	p.mu.Lock()
	p.releaseLocked()
	p.gen++
	gen := p.gen
	loadCtx, cancel := context.WithCancel(ctx)
	p.pending = cancel
	p.loading = true
	p.speaking = true
	p.mu.Unlock()

	stream, err := p.synth.Synthesize(loadCtx, clean)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		// Stopped or replaced while loading; the newer owner already reset the flags.
		// Any synthesis error here is the cancellation, not an upstream failure.
		cancel()
		if stream != nil {
			stream.Close()
		}
		return nil, ErrSuperseded
	}
	p.pending = nil

	if err != nil {
		cancel()
		p.loading = false
		p.speaking = false
		if !errors.Is(err, domain.ErrSynthesis) {
			err = &domain.SynthesisError{Err: err}
		}
		return nil, err
	}

	pb := &Playback{player: p, stream: stream, cancel: cancel}
	p.active = pb
	p.loading = false
	return pb, nil
}

// Stop releases the active or loading playback and clears both flags.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked()
	p.gen++
}

// State returns the current flags.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlayerState{Loading: p.loading, Speaking: p.speaking}
}

// Active reports whether a playback currently owns the player.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

func (p *Player) releaseLocked() {
	if p.pending != nil {
		p.pending()
		p.pending = nil
	}
	if p.active != nil {
		p.active.markReleased()
		p.active = nil
	}
	p.loading = false
	p.speaking = false
}

// finish is called by a playback that ended on its own (EOF, read error or Close).
func (p *Player) finish(pb *Playback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != pb {
		return
	}
	p.active = nil
	p.loading = false
	p.speaking = false
}

// Playback is an audio stream handed out by Player.Play.
type Playback struct {
	player *Player
	stream io.ReadCloser
	cancel context.CancelFunc

	mu       sync.Mutex
	released bool
	closed   bool
}

// Read streams audio. After the playback was released by a newer Play or a
// Stop, Read returns ErrPlaybackReleased.
func (pb *Playback) Read(b []byte) (int, error) {
	pb.mu.Lock()
	released := pb.released
	pb.mu.Unlock()
	if released {
		return 0, ErrPlaybackReleased
	}

	n, err := pb.stream.Read(b)
	if err != nil {
		pb.player.finish(pb)
	}
	return n, err
}

// Close ends the playback and frees the upstream stream.
func (pb *Playback) Close() error {
	pb.mu.Lock()
	if pb.closed {
		pb.mu.Unlock()
		return nil
	}
	pb.closed = true
	pb.mu.Unlock()

	pb.player.finish(pb)
	pb.cancel()
	return pb.stream.Close()
}

// Released reports whether a newer Play or a Stop took over.
func (pb *Playback) Released() bool {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.released
}

func (pb *Playback) markReleased() {
	pb.mu.Lock()
	pb.released = true
	pb.mu.Unlock()
	pb.cancel()
}

// Players hands out one Player per owner. A player lives as long as some
// caller holds it; the last release drops it from the registry.
type Players struct {
	synth Synthesizer

	mu      sync.Mutex
	byOwner map[string]*ownedPlayer
}

type ownedPlayer struct {
	player *Player
	refs   int
}

// NewPlayers creates an empty registry backed by synth.
func NewPlayers(synth Synthesizer) *Players {
	return &Players{synth: synth, byOwner: make(map[string]*ownedPlayer)}
}

// Acquire returns the owner's player, creating it on first use. The caller
// must call release once it no longer touches the player or its playback.
func (ps *Players) Acquire(ownerID string) (player *Player, release func()) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	op, ok := ps.byOwner[ownerID]
	if !ok {
		op = &ownedPlayer{player: NewPlayer(ps.synth)}
		ps.byOwner[ownerID] = op
	}
	op.refs++

	var once sync.Once
	return op.player, func() {
		once.Do(func() { ps.release(ownerID, op) })
	}
}

func (ps *Players) release(ownerID string, op *ownedPlayer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	op.refs--
	if op.refs <= 0 && ps.byOwner[ownerID] == op {
		delete(ps.byOwner, ownerID)
	}
}

// Len reports how many owners currently have a player.
func (ps *Players) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.byOwner)
}
