package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/twitchalerts/internal/auth"
	"github.com/hamed0406/twitchalerts/internal/domain"
	"github.com/hamed0406/twitchalerts/internal/probe"
	"github.com/hamed0406/twitchalerts/internal/repo/memory"
)

// --- fakes ---

type fakeAuth struct {
	calls int
	err   error
}

func (f *fakeAuth) Ensure(ctx context.Context, id, secret string, current *domain.Credential) (domain.Credential, error) {
	f.calls++
	if f.err != nil {
		return domain.Credential{}, f.err
	}
	if current != nil {
		return *current, nil
	}
	return domain.Credential{Token: "tok", ClientID: id, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeProber struct {
	mu   sync.Mutex
	live map[string]bool
	fail map[string]bool
}

func (f *fakeProber) set(live map[string]bool) {
	f.mu.Lock()
	f.live = live
	f.mu.Unlock()
}

func (f *fakeProber) Probe(ctx context.Context, name string, cred domain.Credential) (domain.ChannelStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[name] {
		return domain.ChannelStatus{}, &probe.ProbeError{Channel: name, StatusCode: 500}
	}
	if f.live[name] {
		return domain.ChannelStatus{Name: name, Type: domain.StreamLive}, nil
	}
	return domain.ChannelStatus{Name: name, Type: domain.StreamOffline}, nil
}

type recordingNotifier struct {
	batches [][]string
	err     error
}

func (r *recordingNotifier) Dispatch(ctx context.Context, batch []domain.ChannelStatus) error {
	names := make([]string, 0, len(batch))
	for _, ch := range batch {
		names = append(names, ch.Name)
	}
	r.batches = append(r.batches, names)
	return r.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestScheduler(a CredentialSource, p probe.Prober, n Notifier, channels ...string) (*Scheduler, *memory.Store, *clock) {
	store := memory.New()
	s := New(zap.NewNop(), a, p, store, n, Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		Channels:     channels,
		Interval:     5 * time.Minute,
		Tick:         time.Millisecond,
	})
	c := &clock{t: time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)}
	s.Now = c.now
	return s, store, c
}

// --- tests ---

func TestScheduler_ScenarioA(t *testing.T) {
	p := &fakeProber{}
	n := &recordingNotifier{}
	s, store, c := newTestScheduler(&fakeAuth{}, p, n, "one", "two", "three")

	p.set(map[string]bool{"one": true, "three": true})
	if err := s.Run(context.Background(), false); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}

	c.t = c.t.Add(5 * time.Minute)
	p.set(map[string]bool{"one": true, "two": true, "three": true})
	if err := s.Run(context.Background(), false); err != nil {
		t.Fatalf("cycle 2: %v", err)
	}

	want := [][]string{{"one", "three"}, {"two"}}
	if !reflect.DeepEqual(n.batches, want) {
		t.Fatalf("want batches %v, got %v", want, n.batches)
	}
	if got := store.Load(context.Background()); !reflect.DeepEqual(got, domain.Snapshot{"one": true, "two": true, "three": true}) {
		t.Fatalf("unexpected persisted snapshot: %v", got)
	}
}

func TestScheduler_SingleShotBeforeBoundaryDoesNothing(t *testing.T) {
	p := &fakeProber{live: map[string]bool{"a": true}}
	n := &recordingNotifier{}
	a := &fakeAuth{}
	s, store, c := newTestScheduler(a, p, n, "a")

	_ = s.Run(context.Background(), false)
	if !s.NextScanAt().Equal(c.t.Add(5 * time.Minute)) {
		t.Fatalf("next scan not advanced: %v", s.NextScanAt())
	}

	c.t = c.t.Add(time.Minute)
	if err := s.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if store.Saves() != 1 || a.calls != 1 || len(n.batches) != 1 {
		t.Fatalf("gated run must not start a cycle: saves=%d auth=%d batches=%d", store.Saves(), a.calls, len(n.batches))
	}
}

func TestScheduler_StillLiveIsNotRenotified(t *testing.T) {
	p := &fakeProber{live: map[string]bool{"x": true}}
	n := &recordingNotifier{}
	s, _, c := newTestScheduler(&fakeAuth{}, p, n, "x")

	_ = s.Run(context.Background(), false)
	c.t = c.t.Add(10 * time.Minute)
	_ = s.Run(context.Background(), false)

	if len(n.batches) != 1 {
		t.Fatalf("x stayed live, want one notification, got %v", n.batches)
	}
}

func TestScheduler_ProbeFailureRecordedFalse(t *testing.T) {
	p := &fakeProber{live: map[string]bool{"a": true, "b": true}, fail: map[string]bool{"b": true}}
	n := &recordingNotifier{}
	s, store, _ := newTestScheduler(&fakeAuth{}, p, n, "a", "b")

	if err := s.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	got := store.Load(context.Background())
	if v, ok := got["b"]; !ok || v {
		t.Fatalf("failed probe must persist as false, got %v", got)
	}
	if !reflect.DeepEqual(n.batches, [][]string{{"a"}}) {
		t.Fatalf("unexpected batches: %v", n.batches)
	}
}

func TestScheduler_ScenarioC_NotifyFailureDoesNotStopCycle(t *testing.T) {
	p := &fakeProber{live: map[string]bool{"a": true}}
	n := &recordingNotifier{err: errors.New("pagerduty: status 500")}
	s, store, _ := newTestScheduler(&fakeAuth{}, p, n, "a")

	if err := s.Run(context.Background(), false); err != nil {
		t.Fatalf("notify failure must not escalate: %v", err)
	}
	if store.Saves() != 1 || !store.Load(context.Background())["a"] {
		t.Fatalf("snapshot must still be saved")
	}
}

func TestScheduler_ScenarioD_AuthFailureIsFatal(t *testing.T) {
	authErr := &auth.AuthError{StatusCode: 400, Body: "invalid client"}
	p := &fakeProber{}
	n := &recordingNotifier{}

	for _, continuous := range []bool{false, true} {
		s, store, _ := newTestScheduler(&fakeAuth{err: authErr}, p, n, "a")

		done := make(chan error, 1)
		go func() { done <- s.Run(context.Background(), continuous) }()

		select {
		case err := <-done:
			var ae *auth.AuthError
			if !errors.As(err, &ae) || ae.StatusCode != 400 {
				t.Fatalf("continuous=%v: want AuthError, got %v", continuous, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("continuous=%v: loop did not terminate on auth failure", continuous)
		}
		if store.Saves() != 0 {
			t.Fatalf("no snapshot may be written without a credential")
		}
	}
}

func TestScheduler_ContinuousStopsOnCancel(t *testing.T) {
	p := &fakeProber{live: map[string]bool{"a": true}}
	n := &recordingNotifier{}
	s, store, _ := newTestScheduler(&fakeAuth{}, p, n, "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel is graceful, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	// the clock is frozen, so only the first cycle ran
	if store.Saves() != 1 {
		t.Fatalf("want exactly one cycle, got %d saves", store.Saves())
	}
}

func TestScheduler_StatusReflectsLastCycle(t *testing.T) {
	p := &fakeProber{live: map[string]bool{"b": true}}
	s, _, c := newTestScheduler(&fakeAuth{}, p, &recordingNotifier{}, "a", "b")

	_ = s.Run(context.Background(), false)
	st := s.Status()
	if st.State != StateIdle || !st.LastCycleAt.Equal(c.t) || !st.NextScanAt.Equal(c.t.Add(5*time.Minute)) {
		t.Fatalf("unexpected status: %+v", st)
	}
	if len(st.Live) != 1 || st.Live[0].Name != "b" || st.Snapshot["a"] {
		t.Fatalf("unexpected status contents: %+v", st)
	}
}

func TestScheduler_CancelDuringTokenFetchIsGraceful(t *testing.T) {
	arrived := make(chan struct{})
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	}))
	defer tokenSrv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	s, store, _ := newTestScheduler(auth.NewManager(tokenSrv.URL, 5*time.Second), &fakeProber{}, &recordingNotifier{}, "a")
	s.Logger = zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("token request never arrived")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("interrupted token fetch is a graceful stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	if logs.FilterMessage("auth_failed").Len() != 0 {
		t.Fatal("cancel must not be reported as an auth failure")
	}
	if logs.FilterMessage("cycle_abandoned").Len() != 1 {
		t.Fatal("want cycle_abandoned")
	}
	if store.Saves() != 0 {
		t.Fatal("no snapshot may be written")
	}
}

func TestScheduler_AuthFailureLoggedAsCritical(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s, _, _ := newTestScheduler(&fakeAuth{err: &auth.AuthError{StatusCode: 401}}, &fakeProber{}, &recordingNotifier{}, "a")
	s.Logger = zap.New(core)

	if err := s.Run(context.Background(), false); err == nil {
		t.Fatal("want auth error")
	}
	entries := logs.FilterMessage("auth_failed").All()
	if len(entries) != 1 || entries[0].Level != zapcore.DPanicLevel {
		t.Fatalf("want one auth_failed at dpanic, got %+v", entries)
	}
}
