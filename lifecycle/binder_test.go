package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bongocat/frames"
	"bongocat/gamesense"
)

type fakeSession struct {
	mu        sync.Mutex
	calls     []string
	handlers  []gamesense.ScreenHandler
	event     string
	failOn    map[string]error
	stopDelay time.Duration
	bindBlock chan struct{}
}

func newFakeSession() *fakeSession { return &fakeSession{failOn: make(map[string]error)} }

func (s *fakeSession) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.failOn[call]
}

func (s *fakeSession) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSession) RegisterGame(context.Context) error { return s.record("register") }

func (s *fakeSession) BindEvent(ctx context.Context, event string, handlers []gamesense.ScreenHandler) error {
	s.mu.Lock()
	s.event = event
	s.handlers = handlers
	block := s.bindBlock
	s.mu.Unlock()
	if block != nil {
		close(block)
		<-ctx.Done()
		s.record("bind")
		return ctx.Err()
	}
	return s.record("bind")
}

func (s *fakeSession) SendGameEventUpdate(context.Context, gamesense.Event) error {
	return s.record("update")
}

func (s *fakeSession) StartHeartbeatSending() { s.record("heartbeat-start") }
func (s *fakeSession) StopHeartbeatSending()  { s.record("heartbeat-stop") }

func (s *fakeSession) StopGame(context.Context) error {
	if s.stopDelay > 0 {
		time.Sleep(s.stopDelay)
	}
	return s.record("stop")
}

func (s *fakeSession) RemoveGame(context.Context) error { return s.record("remove") }

func equalCalls(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newTestBinder(s *fakeSession) *Binder {
	return NewBinder(s, Options{Event: "SCREEN_EVENT", Zone: "one", Blank: frames.BlankImage(128, 40)})
}

func TestStartOrder(t *testing.T) {
	s := newFakeSession()
	b := newTestBinder(s)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := []string{"register", "bind", "heartbeat-start"}
	if got := s.snapshot(); !equalCalls(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if s.event != "SCREEN_EVENT" || len(s.handlers) != 1 {
		t.Fatalf("unexpected binding: %s %v", s.event, s.handlers)
	}
	h := s.handlers[0]
	if h.DeviceType != "screened-128x40" || h.Zone != "one" || h.Mode != "screen" {
		t.Fatalf("unexpected handler: %+v", h)
	}
	image := h.Datas[0].ImageData
	if len(image) != 640 {
		t.Fatalf("expected 640 byte blank image, got %d", len(image))
	}
	for i, v := range image {
		if v != 0 {
			t.Fatalf("expected blank image, byte %d = %d", i, v)
		}
	}
}

func TestStartStopsOnFailure(t *testing.T) {
	tests := []struct {
		failOn string
		want   []string
	}{
		{"register", []string{"register"}},
		{"bind", []string{"register", "bind"}},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			s := newFakeSession()
			s.failOn[tt.failOn] = errors.New("rejected")
			b := newTestBinder(s)

			if err := b.Start(context.Background()); err == nil {
				t.Fatal("expected start failure")
			}
			if got := s.snapshot(); !equalCalls(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestShutdownSequence(t *testing.T) {
	s := newFakeSession()
	b := newTestBinder(s)

	b.Shutdown()

	want := []string{"heartbeat-stop", "stop", "remove"}
	if got := s.snapshot(); !equalCalls(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	select {
	case <-b.ShutdownDone():
	default:
		t.Fatal("expected ShutdownDone to be closed")
	}
}

func TestShutdownContinuesAfterStopFailure(t *testing.T) {
	s := newFakeSession()
	s.failOn["stop"] = errors.New("engine gone")
	b := newTestBinder(s)

	b.Shutdown()

	want := []string{"heartbeat-stop", "stop", "remove"}
	if got := s.snapshot(); !equalCalls(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestConcurrentShutdownRunsOnce(t *testing.T) {
	s := newFakeSession()
	s.stopDelay = 20 * time.Millisecond
	b := newTestBinder(s)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Shutdown()
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}

	want := []string{"heartbeat-stop", "stop", "remove"}
	if got := s.snapshot(); !equalCalls(got, want) {
		t.Fatalf("expected exactly one teardown %v, got %v", want, got)
	}
}

func TestShutdownDuringStartCancelsAndTearsDown(t *testing.T) {
	s := newFakeSession()
	s.bindBlock = make(chan struct{})
	b := newTestBinder(s)

	startErr := make(chan error, 1)
	go func() { startErr <- b.Start(context.Background()) }()

	select {
	case <-s.bindBlock:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bind")
	}

	shutdown := make(chan struct{})
	go func() {
		b.Shutdown()
		close(shutdown)
	}()

	select {
	case err := <-startErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled start, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Start to return")
	}
	select {
	case <-shutdown:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}

	if !b.Closed() {
		t.Fatal("expected binder to report closed")
	}
	want := []string{"register", "bind", "heartbeat-stop", "stop", "remove"}
	if got := s.snapshot(); !equalCalls(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStartAfterShutdown(t *testing.T) {
	s := newFakeSession()
	b := newTestBinder(s)

	b.Shutdown()
	if err := b.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	want := []string{"heartbeat-stop", "stop", "remove"}
	if got := s.snapshot(); !equalCalls(got, want) {
		t.Fatalf("expected no start calls after shutdown, got %v", got)
	}
}
