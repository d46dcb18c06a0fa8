package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/recurring"
	configs "github.com/KHUSHWANTsRathore11/driftgate/pkg/configs/monitor"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/driftgate"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/args"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/filewatch"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/try"
)

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	// call cancel() when this function exits
	defer cancel()

	// define command line flags
	//-- path to config file
	pconfig := flag.String(
		"config", os.Getenv("DRIFTGATE_CONFIG"), "path to config file",
	)
	//-- which loop type to run
	loopType := args.Parser(domain.AsLoopType)
	flag.Var(loopType, "type", "one of loop type")
	//-- loop policy
	policy := args.Parser(recurring.ParsePolicy)
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog).`+
			` "forever[:COOLDOWN]" = run forever until error. When backlog is over, `+
			`wait COOLDOWN (optional duration. default: 0) as interval.`+
			` "backlog" = run until error or backlog is over.`,
	)
	// parse command line flags
	flag.Parse()

	{
		// watch config; the process restarts on change
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadMonitorConfig(*pconfig)).OrFatal(logger)
	dg := try.To(driftgate.Default(ctx, conf)).OrFatal(logger)
	defer dg.Database().Close()

	logger.Printf(
		`start loop "%s" /w policy "%s"`,
		loopType.Value().String(), policy.Value().String(),
	)

	err := StartLoop(
		ctx, logger, dg,
		LoopManifest{
			Type:   loopType.Value(),
			Policy: recurring.UntilError(policy.Value()),
		},
	)

	if err == nil {
		return
	} else if errors.Is(err, context.Canceled) {
		logger.Fatal(err, "(loop context is cancelled by:", context.Cause(ctx), ")")
	}

	logger.Fatal(err)
}
