package fetch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sdui/pkg/fetch"
)

func TestTask_TransitionsToReady(t *testing.T) {
	task := fetch.NewTask[[]string]()

	var (
		mu     sync.Mutex
		states []fetch.State
	)
	task.OnChange(func(s fetch.Snapshot[[]string]) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s.State)
	})

	if got := task.Snapshot().State; got != fetch.StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}

	release := make(chan struct{})
	err := task.Start(context.Background(), func(context.Context) ([]string, error) {
		<-release
		return []string{"apple"}, nil
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := task.Snapshot().State; got != fetch.StateLoading {
		t.Fatalf("expected loading right after start, got %s", got)
	}
	close(release)

	snap := task.Wait(context.Background())
	if snap.State != fetch.StateReady {
		t.Fatalf("expected ready, got %s (%v)", snap.State, snap.Err)
	}
	if diff := cmp.Diff([]string{"apple"}, snap.Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]fetch.State{fetch.StateLoading, fetch.StateReady}, states); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestTask_FailuresAndPanicsSettleAsFailed(t *testing.T) {
	boom := errors.New("catalog down")
	cases := map[string]func(context.Context) (int, error){
		"error": func(context.Context) (int, error) { return 0, boom },
		"panic": func(context.Context) (int, error) { panic("bad payload") },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			task := fetch.NewTask[int]()
			if err := task.Start(context.Background(), fn); err != nil {
				t.Fatalf("start: %v", err)
			}
			snap := task.Wait(context.Background())
			if snap.State != fetch.StateFailed || snap.Err == nil {
				t.Fatalf("expected failed with error, got %+v", snap)
			}
		})
	}
}

func TestTask_TimeoutFails(t *testing.T) {
	task := fetch.NewTask[int](fetch.WithTimeout(10 * time.Millisecond))
	err := task.Start(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := task.Wait(context.Background())
	if !errors.Is(snap.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", snap.Err)
	}
}

func TestTask_StartOnlyOnce(t *testing.T) {
	task := fetch.NewTask[int]()
	fn := func(context.Context) (int, error) { return 1, nil }
	if err := task.Start(context.Background(), fn); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := task.Start(context.Background(), fn); !errors.Is(err, fetch.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}
