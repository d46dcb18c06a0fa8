package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify"
)

// outcome of a batch's test barrier.
type BatchOutcome struct {
	BatchId string

	// attempt ids which reached TestValidated.
	Passed []string

	// attempt ids which ended TestFailed.
	Failed []string
}

// Blocked reports whether the batch needs an operator decision.
func (o BatchOutcome) Blocked() bool {
	return 0 < len(o.Failed)
}

// OpenBatch opens one release attempt per production unit for a
// non-breaking environment rollout.
//
// Each record carries the unit's current production artifact unchanged and
// the new environment version. A breaking change is refused: it needs a
// fleet retrain, which produces ordinary per-unit attempts instead.
func (c *Controller) OpenBatch(ctx context.Context, change domain.EnvironmentChange, productionUnits []string) (string, []string, error) {
	if change.Class.RequiresFleetRetrain() {
		return "", nil, fmt.Errorf(
			"environment change %s -> %s is breaking: batch rollout refused, retrain the fleet",
			change.FromVersion, change.ToVersion,
		)
	}

	batchId := fmt.Sprintf("env-%s-%d", change.ToVersion, time.Now().Unix())

	attemptIds := make([]string, 0, len(productionUnits))
	for _, unitId := range productionUnits {
		cur, err := c.registry.GetCurrent(ctx, unitId)
		if err != nil {
			return "", nil, fmt.Errorf("unit %s: %w", unitId, err)
		}
		attemptId, err := c.open(ctx, domain.ReleaseBody{
			UnitId:             unitId,
			ArtifactVersion:    cur.ArtifactVersion,
			EnvironmentVersion: change.ToVersion,
			BatchId:            batchId,
		})
		if err != nil {
			return "", nil, fmt.Errorf("unit %s: %w", unitId, err)
		}
		attemptIds = append(attemptIds, attemptId)
	}

	return batchId, attemptIds, nil
}

// OpenBatches lists batches with at least one record still in flight, in
// first-opened order. Callers re-drive each with RunBatch after a restart.
func (c *Controller) OpenBatches(ctx context.Context) ([]string, error) {
	attemptIds, err := c.releases.Find(ctx, domain.ReleaseFindQuery{
		State: []domain.ReleaseState{
			domain.Trained,
			domain.RegistryPendingApproval,
			domain.Registry,
			domain.TestDeployed,
			domain.TestValidated,
			domain.ProdPendingApproval,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(attemptIds) == 0 {
		return nil, nil
	}

	rels, err := c.releases.Get(ctx, attemptIds)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	batchIds := []string{}
	for _, attemptId := range attemptIds {
		rel, ok := rels[attemptId]
		if !ok || rel.BatchId == "" {
			continue
		}
		if _, ok := seen[rel.BatchId]; ok {
			continue
		}
		seen[rel.BatchId] = struct{}{}
		batchIds = append(batchIds, rel.BatchId)
	}
	return batchIds, nil
}

// RunBatch drives every record of the batch to the test barrier, joins,
// and resolves the whole.
//
// All units validated: the batch proceeds to production collectively, each
// unit through its own production approval. Any unit failed: no unit
// reaches production; the batch is reported blocked and waits for an
// explicit operator decision through ResolveBatch.
func (c *Controller) RunBatch(ctx context.Context, batchId string) (BatchOutcome, error) {
	attemptIds, err := c.releases.Find(ctx, domain.ReleaseFindQuery{BatchId: batchId})
	if err != nil {
		return BatchOutcome{}, err
	}

	// fan out to the barrier. Runs park at their test outcome.
	errs := make([]error, len(attemptIds))
	wg := sync.WaitGroup{}
	for i, attemptId := range attemptIds {
		wg.Add(1)
		go func(i int, attemptId string) {
			defer wg.Done()
			errs[i] = c.Run(ctx, attemptId)
		}(i, attemptId)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return BatchOutcome{}, fmt.Errorf("batch %s, release %s: %w", batchId, attemptIds[i], err)
		}
	}

	outcome, err := c.batchOutcome(ctx, batchId, attemptIds)
	if err != nil {
		return BatchOutcome{}, err
	}

	if outcome.Blocked() {
		if c.notify != nil {
			c.notify.Notify(notify.Event{
				Kind:   notify.BatchBlocked,
				UnitId: domain.AllUnits,
				Detail: fmt.Sprintf(
					"batch %s: %d of %d units failed testing; production is blocked until an operator proceeds or aborts",
					batchId, len(outcome.Failed), len(outcome.Failed)+len(outcome.Passed),
				),
			})
		}
		return outcome, nil
	}

	return outcome, c.releaseBatch(ctx, outcome.Passed)
}

func (c *Controller) batchOutcome(ctx context.Context, batchId string, attemptIds []string) (BatchOutcome, error) {
	rels, err := c.releases.Get(ctx, attemptIds)
	if err != nil {
		return BatchOutcome{}, err
	}

	outcome := BatchOutcome{BatchId: batchId}
	for _, attemptId := range attemptIds {
		rel, ok := rels[attemptId]
		if !ok {
			return BatchOutcome{}, fmt.Errorf("%w: release %s", domain.ErrMissing, attemptId)
		}
		switch rel.State {
		case domain.TestValidated:
			outcome.Passed = append(outcome.Passed, attemptId)
		default:
			// TestFailed, or expired on the way to the barrier.
			outcome.Failed = append(outcome.Failed, attemptId)
		}
	}
	return outcome, nil
}

// releaseBatch walks the validated records through production, each behind
// its own approval.
func (c *Controller) releaseBatch(ctx context.Context, attemptIds []string) error {
	errs := make([]error, len(attemptIds))
	wg := sync.WaitGroup{}
	for i, attemptId := range attemptIds {
		wg.Add(1)
		go func(i int, attemptId string) {
			defer wg.Done()

			if _, err := c.releases.Transit(
				ctx, attemptId, domain.ProdPendingApproval,
				domain.HistoryEntry{Actor: ActorSystem, Reason: "batch test barrier passed"},
			); err != nil {
				errs[i] = err
				return
			}
			errs[i] = c.Run(ctx, attemptId)
		}(i, attemptId)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("release %s: %w", attemptIds[i], err)
		}
	}
	return nil
}

// ResolveBatch applies the operator's decision on a blocked batch.
//
// Proceeding releases the validated subset, taking the operator's decision
// as the production approval of every passed unit. Aborting parks every
// non-terminal record at RolledBack with reason "batch aborted"; serving
// state is untouched, the units never left their previous production pair.
func (c *Controller) ResolveBatch(ctx context.Context, batchId string, proceed bool, actor, evidenceRef string) error {
	attemptIds, err := c.releases.Find(ctx, domain.ReleaseFindQuery{BatchId: batchId})
	if err != nil {
		return err
	}
	if len(attemptIds) == 0 {
		return fmt.Errorf("%w: batch %s", domain.ErrMissing, batchId)
	}

	rels, err := c.releases.Get(ctx, attemptIds)
	if err != nil {
		return err
	}

	if proceed {
		for _, attemptId := range attemptIds {
			rel := rels[attemptId]
			if rel.State != domain.TestValidated {
				continue
			}
			if _, err := c.releases.Transit(
				ctx, attemptId, domain.ProdPendingApproval,
				domain.HistoryEntry{Actor: actor, EvidenceRef: evidenceRef, Reason: "operator proceeds with passed subset"},
			); err != nil {
				return err
			}
			rel.State = domain.ProdPendingApproval
			if err := c.release(ctx, rel, actor, evidenceRef); err != nil {
				return err
			}
		}
		return nil
	}

	for _, attemptId := range attemptIds {
		rel := rels[attemptId]
		if rel.State.Terminal() {
			continue
		}
		c.Cancel(attemptId)

		to := domain.RolledBack
		if !rel.State.Rollbackable() {
			// never reached the registry; nothing was published to undo.
			to = domain.PendingExpired
		}
		entry := domain.HistoryEntry{Actor: actor, EvidenceRef: evidenceRef, Reason: "batch aborted"}
		if !rel.State.CanTransit(to) {
			// a member aborted before it ever reached a gate steps
			// through the machine to its expiry.
			if _, err := c.releases.Transit(ctx, attemptId, domain.RegistryPendingApproval, entry); err != nil {
				return err
			}
		}
		if _, err := c.releases.Transit(ctx, attemptId, to, entry); err != nil {
			return err
		}
	}

	if c.notify != nil {
		c.notify.Notify(notify.Event{
			Kind:   notify.BatchAborted,
			UnitId: domain.AllUnits,
			Detail: fmt.Sprintf("batch %s aborted by %s", batchId, actor),
		})
	}
	return nil
}
