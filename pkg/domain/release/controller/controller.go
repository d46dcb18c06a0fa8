package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	checkpointdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry"
	releasedb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/testexec"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/retry"
)

const ActorSystem = "system"

type Config struct {
	// how long an approval may stay unanswered before the attempt expires.
	ApprovalTimeout time.Duration

	// how often a transient test failure is retried (attempts = 1 + retries).
	TestRetries int

	// wait before the first test retry, growing linearly.
	TestBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		ApprovalTimeout: 24 * time.Hour,
		TestRetries:     2,
		TestBackoff:     30 * time.Second,
	}
}

// Controller drives release attempts through the state machine.
//
// One attempt is one state machine instance; attempts for different units
// never interact, except that records of one batch join at the test barrier.
type Controller struct {
	releases    releasedb.ReleaseInterface
	checkpoints checkpointdb.CheckpointInterface
	registry    registry.Registry
	gate        gate.Gate
	testexec    testexec.Interface
	notify      notify.Interface
	conf        Config
	logger      *log.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

type Option func(*Controller) *Controller

func WithConfig(conf Config) Option {
	return func(c *Controller) *Controller {
		c.conf = conf
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) *Controller {
		c.logger = l
		return c
	}
}

func New(
	releases releasedb.ReleaseInterface,
	checkpoints checkpointdb.CheckpointInterface,
	reg registry.Registry,
	g gate.Gate,
	te testexec.Interface,
	n notify.Interface,
	options ...Option,
) *Controller {
	c := &Controller{
		releases:    releases,
		checkpoints: checkpoints,
		registry:    reg,
		gate:        g,
		testexec:    te,
		notify:      n,
		conf:        DefaultConfig(),
		logger:      log.New(log.Writer(), "[release controller] ", log.Flags()),
		running:     map[string]context.CancelFunc{},
	}
	for _, option := range options {
		c = option(c)
	}
	return c
}

// Open starts a release attempt for a freshly trained artifact.
//
// The record is created at Trained and immediately advanced to
// RegistryPendingApproval: once artifact and environment versions are both
// resolved there is nothing to wait for.
func (c *Controller) Open(ctx context.Context, unitId, artifactVersion, environmentVersion string) (string, error) {
	return c.open(ctx, domain.ReleaseBody{
		UnitId:             unitId,
		ArtifactVersion:    artifactVersion,
		EnvironmentVersion: environmentVersion,
	})
}

func (c *Controller) open(ctx context.Context, body domain.ReleaseBody) (string, error) {
	attemptId, err := c.releases.New(ctx, body)
	if err != nil {
		return "", err
	}

	if _, err := c.releases.Transit(
		ctx, attemptId, domain.RegistryPendingApproval,
		domain.HistoryEntry{
			Actor:  ActorSystem,
			Reason: "artifact and environment versions resolved",
		},
	); err != nil {
		return "", err
	}
	return attemptId, nil
}

// Cancel cooperatively stops an in-flight Run of the attempt.
//
// Used by the rollback side: the record's state is already RolledBack by
// then, the runner just should not keep waiting on gates or probes.
func (c *Controller) Cancel(attemptId string) {
	c.mu.Lock()
	cancel, ok := c.running[attemptId]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *Controller) track(attemptId string, cancel context.CancelFunc) func() {
	c.mu.Lock()
	c.running[attemptId] = cancel
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.running, attemptId)
		c.mu.Unlock()
		cancel()
	}
}

// Run drives the attempt until it parks.
//
// A standalone attempt runs to a terminal state. A batch attempt parks at
// its test outcome; the batch side owns everything beyond the barrier.
//
// Returned errors are infrastructure trouble (stores, registry, context);
// domain outcomes like TestFailed or PendingExpired are states, not errors.
func (c *Controller) Run(ctx context.Context, attemptId string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer c.track(attemptId, cancel)()

	for {
		rel, err := c.get(ctx, attemptId)
		if err != nil {
			return err
		}

		if rel.State.Terminal() {
			return nil
		}

		switch rel.State {
		case domain.Trained:
			_, err = c.releases.Transit(
				ctx, attemptId, domain.RegistryPendingApproval,
				domain.HistoryEntry{
					Actor:  ActorSystem,
					Reason: "artifact and environment versions resolved",
				},
			)

		case domain.RegistryPendingApproval:
			err = c.approveThenPromote(ctx, rel)

		case domain.Registry:
			_, err = c.releases.Transit(
				ctx, attemptId, domain.TestDeployed,
				domain.HistoryEntry{
					Actor:  ActorSystem,
					Reason: fmt.Sprintf("deployed to test stage as %s/%s", rel.ArtifactVersion, rel.EnvironmentVersion),
				},
			)

		case domain.TestDeployed:
			err = c.runTest(ctx, rel)

		case domain.TestValidated:
			if rel.BatchId != "" {
				// the batch joins at the test barrier.
				return nil
			}
			_, err = c.releases.Transit(
				ctx, attemptId, domain.ProdPendingApproval,
				domain.HistoryEntry{Actor: ActorSystem, Reason: "test validated"},
			)

		case domain.ProdPendingApproval:
			err = c.approveThenRelease(ctx, rel)

		default:
			return fmt.Errorf("release %s parked in unexpected state %s", attemptId, rel.State)
		}

		if err != nil {
			return err
		}
	}
}

func (c *Controller) get(ctx context.Context, attemptId string) (domain.Release, error) {
	rels, err := c.releases.Get(ctx, []string{attemptId})
	if err != nil {
		return domain.Release{}, err
	}
	rel, ok := rels[attemptId]
	if !ok {
		return domain.Release{}, fmt.Errorf("%w: release %s", domain.ErrMissing, attemptId)
	}
	return rel, nil
}

// awaitDecision suspends on the gate, racing the decision against the
// approval timeout. The first event wins; the loser is ignored.
func (c *Controller) awaitDecision(ctx context.Context, rel domain.Release, stage gate.Stage) (gate.Decision, bool, error) {
	ch, withdraw, err := c.gate.Request(ctx, gate.Request{
		UnitId:             rel.UnitId,
		ArtifactVersion:    rel.ArtifactVersion,
		EnvironmentVersion: rel.EnvironmentVersion,
		Stage:              stage,
		Detail:             fmt.Sprintf("promote unit %s to %s", rel.UnitId, stage),
	})
	if err != nil {
		return gate.Decision{}, false, err
	}
	defer withdraw()

	if c.notify != nil {
		c.notify.Notify(notify.Event{
			Kind:   notify.ApprovalRequested,
			UnitId: rel.UnitId,
			Detail: fmt.Sprintf("%s promotion of %s/%s awaits approval", stage, rel.ArtifactVersion, rel.EnvironmentVersion),
		})
	}

	timeout := time.NewTimer(c.conf.ApprovalTimeout)
	defer timeout.Stop()

	select {
	case d, ok := <-ch:
		if !ok {
			return gate.Decision{}, false, fmt.Errorf("approval request for %s withdrawn", rel.AttemptId)
		}
		return d, false, nil
	case <-timeout.C:
		return gate.Decision{}, true, nil
	case <-ctx.Done():
		return gate.Decision{}, false, ctx.Err()
	}
}

// decisionEvent translates a gate outcome into a release event.
func (c *Controller) decisionEvent(d gate.Decision, expired bool, stage gate.Stage) domain.ReleaseEvent {
	if expired {
		return domain.ReleaseEvent{
			Type:   domain.ApprovalTimeout,
			Actor:  ActorSystem,
			Detail: fmt.Sprintf("%s approval unanswered for %s", stage, c.conf.ApprovalTimeout),
		}
	}
	if !d.Approved {
		return domain.ReleaseEvent{
			Type:   domain.ApprovalDenied,
			Actor:  d.Actor,
			Detail: fmt.Sprintf("%s promotion denied: %s", stage, d.Reason),
		}
	}
	return domain.ReleaseEvent{
		Type:        domain.ApprovalGranted,
		Actor:       d.Actor,
		EvidenceRef: d.EvidenceRef,
		Detail:      fmt.Sprintf("%s promotion approved", stage),
	}
}

func (c *Controller) approveThenPromote(ctx context.Context, rel domain.Release) error {
	d, expired, err := c.awaitDecision(ctx, rel, gate.StageRegistry)
	if err != nil {
		return err
	}

	ev := c.decisionEvent(d, expired, gate.StageRegistry)
	to, err := rel.State.Advance(ev)
	if err != nil {
		return err
	}

	if ev.Type == domain.ApprovalGranted {
		err := c.registry.Promote(ctx, registry.Ref{
			UnitId:             rel.UnitId,
			ArtifactVersion:    rel.ArtifactVersion,
			EnvironmentVersion: rel.EnvironmentVersion,
		}, registry.StageRegistry)
		if err != nil && !errors.Is(err, registry.ErrAlreadyPromoted) {
			return err
		}
	}

	_, err = c.releases.Transit(
		ctx, rel.AttemptId, to,
		domain.HistoryEntry{Actor: ev.Actor, EvidenceRef: ev.EvidenceRef, Reason: ev.Detail},
	)
	return err
}

func (c *Controller) runTest(ctx context.Context, rel domain.Release) error {
	_, err := retry.Blocking(
		ctx,
		retry.LinearBackoff(c.conf.TestBackoff, c.conf.TestBackoff),
		retry.WithLimit(c.conf.TestRetries, func() (struct{}, error) {
			err := c.testexec.Run(ctx, rel.UnitId, rel.ArtifactVersion, rel.EnvironmentVersion)
			if err == nil {
				return struct{}{}, nil
			}
			te := domain.TestExecution{}
			if errors.As(err, &te) && te.Transient {
				return struct{}{}, retry.Retriable(err)
			}
			return struct{}{}, err
		}),
	)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !errors.Is(err, domain.ErrTestExecution) {
			return err
		}
	}

	ev := domain.ReleaseEvent{
		Type:       domain.TestResultArrived,
		Actor:      ActorSystem,
		TestPassed: err == nil,
		Detail:     "synthetic inference succeeded",
	}
	if err != nil {
		ev.Detail = err.Error()
	}

	to, err := rel.State.Advance(ev)
	if err != nil {
		return err
	}
	_, err = c.releases.Transit(
		ctx, rel.AttemptId, to,
		domain.HistoryEntry{Actor: ev.Actor, Reason: ev.Detail},
	)
	return err
}

func (c *Controller) approveThenRelease(ctx context.Context, rel domain.Release) error {
	d, expired, err := c.awaitDecision(ctx, rel, gate.StageProduction)
	if err != nil {
		return err
	}

	ev := c.decisionEvent(d, expired, gate.StageProduction)
	if ev.Type != domain.ApprovalGranted {
		to, err := rel.State.Advance(ev)
		if err != nil {
			return err
		}
		_, err = c.releases.Transit(
			ctx, rel.AttemptId, to,
			domain.HistoryEntry{Actor: ev.Actor, Reason: ev.Detail},
		)
		return err
	}

	return c.release(ctx, rel, d.Actor, d.EvidenceRef)
}

// release promotes rel to production.
//
// The previous production pair is checkpointed before the production tag
// moves, so a rollback target exists the moment the promotion lands. A
// unit going to production for the first time has nothing to checkpoint.
func (c *Controller) release(ctx context.Context, rel domain.Release, actor, evidenceRef string) error {
	prev, err := c.registry.GetCurrent(ctx, rel.UnitId)
	switch {
	case err == nil:
		if err := c.checkpoints.Supersede(ctx, domain.RollbackCheckpoint{
			UnitId:             rel.UnitId,
			ArtifactVersion:    prev.ArtifactVersion,
			EnvironmentVersion: prev.EnvironmentVersion,
			Reason:             fmt.Sprintf("superseded by %s/%s", rel.ArtifactVersion, rel.EnvironmentVersion),
		}); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrMissing):
		c.logger.Printf("unit %s: first production release, no checkpoint to record", rel.UnitId)
	default:
		return err
	}

	err = c.registry.Promote(ctx, registry.Ref{
		UnitId:             rel.UnitId,
		ArtifactVersion:    rel.ArtifactVersion,
		EnvironmentVersion: rel.EnvironmentVersion,
	}, registry.StageProduction)
	if err != nil && !errors.Is(err, registry.ErrAlreadyPromoted) {
		return err
	}

	to, err := rel.State.Advance(domain.ReleaseEvent{
		Type: domain.ApprovalGranted, Actor: actor, EvidenceRef: evidenceRef,
	})
	if err != nil {
		return err
	}
	if _, err := c.releases.Transit(
		ctx, rel.AttemptId, to,
		domain.HistoryEntry{Actor: actor, EvidenceRef: evidenceRef, Reason: "production promotion approved"},
	); err != nil {
		return err
	}

	if c.notify != nil {
		c.notify.Notify(notify.Event{
			Kind:   notify.ReleaseTransition,
			UnitId: rel.UnitId,
			Detail: fmt.Sprintf("%s/%s is serving production", rel.ArtifactVersion, rel.EnvironmentVersion),
		})
	}
	return nil
}
