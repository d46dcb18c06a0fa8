package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/KHUSHWANTsRathore11/driftgate/cmd/gated/auth"
	"github.com/KHUSHWANTsRathore11/driftgate/cmd/gated/handlers"
	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/recurring"
	"github.com/KHUSHWANTsRathore11/driftgate/cmd/loops/tasks/releaseManagement"
	configs "github.com/KHUSHWANTsRathore11/driftgate/pkg/configs/monitor"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/driftgate"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/controller"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/rollback"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/loop"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/filewatch"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/try"
)

// pause between dispatch sweeps when no new attempt showed up.
const dispatchCooldown = 10 * time.Second

func main() {
	logger := log.Default()

	configPath := flag.String(
		"config", os.Getenv("DRIFTGATE_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	defer cancel()

	{
		// watch config; the process restarts on change
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *configPath)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadMonitorConfig(*configPath)).OrFatal(logger)
	dg := try.To(driftgate.Default(ctx, conf)).OrFatal(logger)
	defer dg.Database().Close()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	setLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	context.AfterFunc(ctx, func() {
		logger.Printf("shutting down: %s", context.Cause(ctx))
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			logger.Printf("error on shutdown: %s", err)
		}
	})

	// decisions resolve into the in-process gate broker, so the release
	// runners parked on that broker live here too.
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
	)
	rollbacker := rollback.New(
		dg.Database().Release(),
		dg.Database().Checkpoint(),
		dg.Registry(),
		ctl,
		rollback.WithNotify(dg.Notify()),
	)

	go func() {
		_, err := loop.Start(
			ctx, releaseManagement.Seed(),
			releaseManagement.Task(
				log.New(logger.Writer(), "[release management loop]", logger.Flags()),
				dg.Database().Release(),
				ctl,
			).Applied(recurring.UntilError(recurring.Forever(dispatchCooldown))),
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("release management loop stopped: %s", err)
		}
		cancel()
	}()

	runBatch := func(batchId string) {
		go func() {
			if _, err := ctl.RunBatch(ctx, batchId); err != nil {
				logger.Printf("batch %s stopped: %s", batchId, err)
			}
		}()
	}

	// batches left open by a previous process get their driver back.
	{
		batchIds := try.To(ctl.OpenBatches(ctx)).OrFatal(logger)
		for _, batchId := range batchIds {
			logger.Printf("resuming batch %s", batchId)
			runBatch(batchId)
		}
	}

	authn := auth.ByToken([]byte(conf.Api().JwtKey()))

	// handlers
	{
		e.GET("/api/releases/", handlers.FindReleaseHandler(dg.Database().Release()))
		e.GET("/api/releases/:attemptId/", handlers.GetReleaseHandler(dg.Database().Release(), "attemptId"))
		e.POST("/api/releases/", handlers.OpenReleaseHandler(ctl), authn)
	}

	{
		e.GET("/api/approvals/", handlers.ListApprovalsHandler(dg.GateResolver()))
		e.PUT("/api/approvals/:key/", handlers.ResolveApprovalHandler(dg.GateResolver(), "key"), authn)
	}

	{
		e.POST("/api/batches/", handlers.OpenBatchHandler(ctl, dg.Database().Checkpoint(), runBatch), authn)
		e.PUT("/api/batches/:batchId/", handlers.ResolveBatchHandler(ctl, "batchId"), authn)
	}

	e.POST("/api/rollback/", handlers.RollbackHandler(rollbacker), authn)

	logger.Println("registered routes:")
	for _, r := range e.Routes() {
		logger.Println(r.Method, r.Path)
	}

	addr := fmt.Sprintf(":%d", conf.Api().Port())
	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(addr, cert, key))
	} else {
		e.Logger.Fatal(e.Start(addr))
	}
}

func setLevel(e *echo.Echo, level string) {
	switch level {
	case "debug":
		e.Logger.SetLevel(glog.DEBUG)
	case "warn":
		e.Logger.SetLevel(glog.WARN)
	case "error":
		e.Logger.SetLevel(glog.ERROR)
	case "off":
		e.Logger.SetLevel(glog.OFF)
	default:
		e.Logger.SetLevel(glog.INFO)
	}
}
