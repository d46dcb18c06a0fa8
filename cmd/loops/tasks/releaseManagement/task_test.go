package releaseManagement_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/tasks/releaseManagement"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	relmocks "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db/mock"
)

type fakeRunner struct {
	mu      sync.Mutex
	ran     []string
	done    chan string
	blocker chan struct{}
}

func newFakeRunner(blocking bool) *fakeRunner {
	f := &fakeRunner{done: make(chan string, 16)}
	if blocking {
		f.blocker = make(chan struct{})
	}
	return f
}

func (f *fakeRunner) Run(ctx context.Context, attemptId string) error {
	f.mu.Lock()
	f.ran = append(f.ran, attemptId)
	f.mu.Unlock()

	if f.blocker != nil {
		select {
		case <-f.blocker:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.done <- attemptId
	return nil
}

func (f *fakeRunner) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(time.Second):
			t.Fatalf("runner did not finish %d attempts in time", n)
		}
	}
}

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func release(attemptId, unitId string, state domain.ReleaseState, batchId string) domain.Release {
	return domain.Release{
		ReleaseBody: domain.ReleaseBody{
			UnitId:             unitId,
			AttemptId:          attemptId,
			ArtifactVersion:    "1.0.0",
			EnvironmentVersion: "2.0.0",
			State:              state,
			BatchId:            batchId,
		},
	}
}

func bind(releases *relmocks.ReleaseInterface, rels map[string]domain.Release) {
	releases.Impl.Find = func(ctx context.Context, q domain.ReleaseFindQuery) ([]string, error) {
		found := []string{}
		for id, rel := range rels {
			for _, s := range q.State {
				if rel.State == s {
					found = append(found, id)
					break
				}
			}
		}
		return found, nil
	}
	releases.Impl.Get = func(ctx context.Context, ids []string) (map[string]domain.Release, error) {
		got := map[string]domain.Release{}
		for _, id := range ids {
			if rel, ok := rels[id]; ok {
				got[id] = rel
			}
		}
		return got, nil
	}
}

func TestTask(t *testing.T) {
	t.Run("When attempts are parked in active states, each should get a runner", func(t *testing.T) {
		ctx := context.Background()
		releases := relmocks.NewReleaseInterface()
		bind(releases, map[string]domain.Release{
			"attempt-1": release("attempt-1", "unit-001", domain.Trained, ""),
			"attempt-2": release("attempt-2", "unit-002", domain.TestDeployed, ""),
			"attempt-3": release("attempt-3", "unit-003", domain.Production, ""),
		})

		runner := newFakeRunner(false)
		testee := releaseManagement.Task(quiet(), releases, runner)

		cursor, ok, err := testee(ctx, releaseManagement.Seed())
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Error("dispatching runners should report backlog")
		}
		if cursor.Dispatched != 2 {
			t.Errorf("dispatched %d attempts, expected 2", cursor.Dispatched)
		}

		runner.waitFor(t, 2)
		seen := map[string]bool{}
		for _, id := range runner.ran {
			seen[id] = true
		}
		if !seen["attempt-1"] || !seen["attempt-2"] || seen["attempt-3"] {
			t.Errorf("unexpected attempts driven: %v", runner.ran)
		}
	})

	t.Run("When an attempt is still claimed, the next cycle should not double-run it", func(t *testing.T) {
		ctx := context.Background()
		releases := relmocks.NewReleaseInterface()
		bind(releases, map[string]domain.Release{
			"attempt-1": release("attempt-1", "unit-001", domain.RegistryPendingApproval, ""),
		})

		runner := newFakeRunner(true) // parked, like a runner waiting on a gate
		testee := releaseManagement.Task(quiet(), releases, runner)

		cursor, _, err := testee(ctx, releaseManagement.Seed())
		if err != nil {
			t.Fatal(err)
		}
		if cursor.Dispatched != 1 {
			t.Fatalf("dispatched %d attempts, expected 1", cursor.Dispatched)
		}

		cursor, ok, err := testee(ctx, cursor)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("nothing new to dispatch, so no backlog")
		}
		if cursor.Dispatched != 1 {
			t.Errorf("dispatched %d attempts, expected still 1", cursor.Dispatched)
		}

		close(runner.blocker)
		runner.waitFor(t, 1)
		if len(runner.ran) != 1 {
			t.Errorf("attempt ran %d times, expected once", len(runner.ran))
		}
	})

	t.Run("When an attempt belongs to a batch, it should be left to the batch driver", func(t *testing.T) {
		ctx := context.Background()
		releases := relmocks.NewReleaseInterface()
		bind(releases, map[string]domain.Release{
			// batch members in any state; the batch driver would race
			// this loop for their approval keys if they were claimed.
			"attempt-1": release("attempt-1", "unit-001", domain.TestValidated, "env-2.1.0-1"),
			"attempt-3": release("attempt-3", "unit-003", domain.RegistryPendingApproval, "env-2.1.0-1"),
			"attempt-4": release("attempt-4", "unit-004", domain.Trained, "env-2.1.0-1"),
			"attempt-2": release("attempt-2", "unit-002", domain.TestValidated, ""),
		})

		runner := newFakeRunner(false)
		testee := releaseManagement.Task(quiet(), releases, runner)

		cursor, _, err := testee(ctx, releaseManagement.Seed())
		if err != nil {
			t.Fatal(err)
		}
		if cursor.Dispatched != 1 {
			t.Fatalf("dispatched %d attempts, expected 1", cursor.Dispatched)
		}

		runner.waitFor(t, 1)
		if len(runner.ran) != 1 || runner.ran[0] != "attempt-2" {
			t.Errorf("unexpected attempts driven: %v", runner.ran)
		}
	})

	t.Run("When there is nothing to do, it should report no backlog", func(t *testing.T) {
		ctx := context.Background()
		releases := relmocks.NewReleaseInterface()
		bind(releases, map[string]domain.Release{})

		runner := newFakeRunner(false)
		testee := releaseManagement.Task(quiet(), releases, runner)

		cursor, ok, err := testee(ctx, releaseManagement.Seed())
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("an empty cycle should report no backlog")
		}
		if cursor.Dispatched != 0 {
			t.Errorf("dispatched %d attempts, expected 0", cursor.Dispatched)
		}
	})
}
