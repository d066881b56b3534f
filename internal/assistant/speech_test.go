package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"fitbuddy/app/internal/domain"
)

type trackedStream struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (s *trackedStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *trackedStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSynth struct {
	mu      sync.Mutex
	texts   []string
	streams []*trackedStream
	err     error
	block   chan struct{} // when set, Synthesize signals started and waits for ctx
	started chan struct{}
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		close(f.started)
		select {
		case <-ctx.Done():
			// Real clients report a cancelled request as a synthesis failure.
			return nil, &domain.SynthesisError{Err: ctx.Err()}
		case <-block:
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	s := &trackedStream{Reader: strings.NewReader("mp3:" + text)}
	f.mu.Lock()
	f.streams = append(f.streams, s)
	f.mu.Unlock()
	return s, nil
}

func TestPlayStripsMarkupAndStreams(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPlayer(synth)

	pb, err := p.Play(context.Background(), "**Great job!** Visit [here](url)")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if synth.texts[0] != "Great job! Visit here" {
		t.Errorf("synth text = %q", synth.texts[0])
	}
	if st := p.State(); st.Loading || !st.Speaking {
		t.Errorf("state while playing = %+v", st)
	}

	audio, err := io.ReadAll(pb)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(audio) != "mp3:Great job! Visit here" {
		t.Errorf("audio = %q", audio)
	}
	if st := p.State(); st.Loading || st.Speaking {
		t.Errorf("state after natural end = %+v", st)
	}
	if p.Active() {
		t.Error("player still active after EOF")
	}
	pb.Close()
	if !synth.streams[0].isClosed() {
		t.Error("stream not closed")
	}
}

func TestPlayReleasesPrevious(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPlayer(synth)

	first, err := p.Play(context.Background(), "first")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Play(context.Background(), "second")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if !first.Released() {
		t.Error("first playback not released")
	}
	if _, err := first.Read(make([]byte, 8)); !errors.Is(err, ErrPlaybackReleased) {
		t.Errorf("first read err = %v, want ErrPlaybackReleased", err)
	}
	first.Close()

	if !p.Active() {
		t.Fatal("closing the released playback cleared the new one")
	}
	if st := p.State(); st.Loading || !st.Speaking {
		t.Errorf("state = %+v, want speaking only", st)
	}
	buf, _ := io.ReadAll(second)
	if string(buf) != "mp3:second" {
		t.Errorf("second audio = %q", buf)
	}
}

func TestStopClearsFlags(t *testing.T) {
	p := NewPlayer(&fakeSynth{})
	pb, err := p.Play(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	p.Stop()
	if st := p.State(); st.Loading || st.Speaking {
		t.Errorf("state after stop = %+v", st)
	}
	if !pb.Released() || p.Active() {
		t.Error("playback still owns the player after stop")
	}
	// Stopping an idle player is a no-op.
	p.Stop()
}

func TestStopWhileLoading(t *testing.T) {
	synth := &fakeSynth{block: make(chan struct{}), started: make(chan struct{})}
	p := NewPlayer(synth)

	errc := make(chan error, 1)
	go func() {
		_, err := p.Play(context.Background(), "slow")
		errc <- err
	}()

	<-synth.started
	if st := p.State(); !st.Loading {
		t.Errorf("state while loading = %+v", st)
	}
	p.Stop()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("err = %v, want ErrSuperseded", err)
		}
		if errors.Is(err, domain.ErrSynthesis) {
			t.Fatalf("a stopped load was reported as a synthesis failure: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not return after Stop")
	}
	if st := p.State(); st.Loading || st.Speaking {
		t.Errorf("state = %+v, want idle", st)
	}
	if p.Active() {
		t.Error("superseded load became active")
	}
}

func TestPlaySynthesisError(t *testing.T) {
	synth := &fakeSynth{err: &domain.SynthesisError{StatusCode: 401, Details: "bad key"}}
	p := NewPlayer(synth)

	_, err := p.Play(context.Background(), "hi")
	var serr *domain.SynthesisError
	if !errors.As(err, &serr) || serr.StatusCode != 401 {
		t.Fatalf("err = %v, want SynthesisError 401", err)
	}
	if st := p.State(); st.Loading || st.Speaking {
		t.Errorf("state after error = %+v", st)
	}
}

func TestPlayWrapsTransportError(t *testing.T) {
	p := NewPlayer(&fakeSynth{err: io.ErrUnexpectedEOF})
	_, err := p.Play(context.Background(), "hi")
	if !errors.Is(err, domain.ErrSynthesis) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v", err)
	}
}

func TestPlayEmptyText(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPlayer(synth)
	if _, err := p.Play(context.Background(), "** __ **"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(synth.texts) != 0 {
		t.Error("synthesizer called for empty text")
	}
}

func TestPlayWhileLoadingSupersedesFirst(t *testing.T) {
	synth := &fakeSynth{block: make(chan struct{}), started: make(chan struct{})}
	p := NewPlayer(synth)

	errc := make(chan error, 1)
	go func() {
		_, err := p.Play(context.Background(), "slow")
		errc <- err
	}()
	<-synth.started

	synth.mu.Lock()
	synth.block = nil
	synth.mu.Unlock()

	pb, err := p.Play(context.Background(), "fast")
	if err != nil {
		t.Fatalf("second Play: %v", err)
	}
	defer pb.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("first Play err = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Play did not return")
	}
	if !p.Active() {
		t.Fatal("second playback lost ownership")
	}
	audio, _ := io.ReadAll(pb)
	if string(audio) != "mp3:fast" {
		t.Errorf("audio = %q", audio)
	}
}

func TestPlayersPerOwner(t *testing.T) {
	ps := NewPlayers(&fakeSynth{})
	a1, releaseA1 := ps.Acquire("a")
	a2, releaseA2 := ps.Acquire("a")
	b, releaseB := ps.Acquire("b")
	if a1 != a2 {
		t.Error("same owner got different players")
	}
	if a1 == b {
		t.Error("different owners share a player")
	}

	releaseA1()
	releaseA1() // repeated release is a no-op
	if ps.Len() != 2 {
		t.Fatalf("Len = %d while a is still held", ps.Len())
	}
	releaseA2()
	releaseB()
	if ps.Len() != 0 {
		t.Fatalf("Len = %d after all releases, want 0", ps.Len())
	}

	fresh, release := ps.Acquire("a")
	defer release()
	if fresh == a1 {
		t.Error("released player was handed out again")
	}
}
