package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/recurring"
	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/tasks/driftscan"
	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/tasks/releaseManagement"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/drift"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/driftgate"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/controller"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/loop"
)

type LoggerOptions func(*log.Logger) *log.Logger

func byLogger(l *log.Logger, opt ...LoggerOptions) *log.Logger {
	for _, o := range opt {
		l = o(l)
	}
	return l
}

func Copied() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		return log.New(l.Writer(), l.Prefix(), l.Flags())
	}
}

func WithPrefix(pre string) LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

// Wrapper for monitoring loop tasks
//
//	Log the start and end of each time a task is executed. Essentially, it executes a task.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	// counter for execution of the task
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		timestamp := time.Now()

		logger.Printf("task start: #0x%X: ", counter)

		// log at the end of the task
		defer func() {
			logger.Printf(
				"task end: #0x%X (takes %s): %s\n with value = %#v",
				counter, time.Since(timestamp), next, ret,
			)
		}()

		ret, next = task(ctx, t)
		return
	}
}

// Manifest for starting a loop, which determines how the loop should behave.
type LoopManifest struct {
	// which loop to run
	Type domain.LoopType

	// Policy for the looping
	Policy recurring.Policy
}

func StartLoop(
	ctx context.Context,
	logger *log.Logger,
	dg driftgate.Driftgate,
	manifest LoopManifest,
) error {
	switch manifest.Type {
	case domain.DriftScan:
		return StartDriftScanLoop(ctx, logger, dg, manifest)
	case domain.ReleaseManagement:
		return StartReleaseManagementLoop(ctx, logger, dg, manifest)
	default:
		return fmt.Errorf(`%w: "%s"`, domain.ErrUnknownLoopType, manifest.Type)
	}
}

func StartDriftScanLoop(
	ctx context.Context,
	logger *log.Logger,
	dg driftgate.Driftgate,
	manifest LoopManifest,
) error {
	conf := dg.Config()

	evaluator := drift.NewEvaluator(drift.Thresholds{
		Alpha:       conf.Drift().Alpha(),
		Wasserstein: conf.Drift().Wasserstein(),
		PSI:         conf.Drift().PSI(),
		Bins:        conf.Drift().Bins(),
	})
	scanner := drift.NewScanner(
		dg.Database().Sample(), evaluator, conf.Fleet().Features(),
		drift.WithConcurrency(conf.Drift().Concurrency()),
		drift.WithNotify(dg.Notify()),
	)

	_, err := loop.Start(
		ctx, driftscan.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[drift scan loop]")),
			driftscan.Task(
				dg.Database().Sample(),
				scanner,
				conf.Fleet().Units(),
				conf.Drift().BaselineDays(),
				conf.Drift().CurrentDays(),
			).Applied(manifest.Policy),
		),
	)
	return err
}

func StartReleaseManagementLoop(
	ctx context.Context,
	logger *log.Logger,
	dg driftgate.Driftgate,
	manifest LoopManifest,
) error {
	conf := dg.Config()
	l := byLogger(logger, Copied(), WithPrefix("[release management loop]"))

	ctl := controller.New(
		dg.Database().Release(),
		dg.Database().Checkpoint(),
		dg.Registry(),
		dg.Gate(),
		dg.TestExec(),
		dg.Notify(),
		controller.WithConfig(controller.Config{
			ApprovalTimeout: conf.Release().ApprovalTimeout(),
			TestRetries:     conf.Release().TestRetries(),
			TestBackoff:     conf.Release().TestBackoff(),
		}),
		controller.WithLogger(byLogger(l, Copied())),
	)

	// runner goroutines park on approval gates for up to the approval
	// timeout, so this loop runs without a per-cycle timeout.
	_, err := loop.Start(
		ctx, releaseManagement.Seed(),
		monitor(
			l,
			releaseManagement.Task(
				byLogger(l, Copied()),
				dg.Database().Release(),
				ctl,
			).Applied(manifest.Policy),
		),
	)
	return err
}
