package driftgate

import (
	"context"
	"log"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/configs/monitor"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/driftgate/db"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/driftgate/db/postgres"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/gate/inproc"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/notify"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry/oci"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/testexec"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/testexec/httpprobe"
)

// Driftgate bundles the stores and collaborators one process needs.
type Driftgate interface {
	Config() *monitor.MonitorConfig

	Database() db.MonitorDatabase
	Registry() registry.Registry
	Gate() gate.Gate
	GateResolver() gate.Resolver
	TestExec() testexec.Interface
	Notify() notify.Interface
}

type driftgate struct {
	config *monitor.MonitorConfig

	database db.MonitorDatabase
	registry registry.Registry
	broker   *inproc.Broker
	testexec testexec.Interface
	notify   notify.Interface
}

// Default connects to the configured database and wires everything else
// from config.
func Default(
	ctx context.Context,
	config *monitor.MonitorConfig,
	options ...Option,
) (Driftgate, error) {
	database, err := postgres.New(ctx, config.Database())
	if err != nil {
		return nil, err
	}
	return New(config, database, options...), nil
}

func New(
	config *monitor.MonitorConfig,
	database db.MonitorDatabase,
	options ...Option,
) Driftgate {
	opt := &_options{}
	for _, o := range options {
		o(opt)
	}

	reg := opt.registry
	if reg == nil {
		reg = oci.New(config.Release().RegistryBase())
	}

	te := opt.testexec
	if te == nil {
		features := map[string]float64{}
		for _, f := range config.Fleet().Features() {
			features[f] = 1.0
		}
		te = httpprobe.New(config.Release().TestEndpoint(), features)
	}

	n := opt.notify
	if n == nil {
		n = notify.NewLogger(log.Default())
	}

	return &driftgate{
		config:   config,
		database: database,
		registry: reg,
		broker:   inproc.New(),
		testexec: te,
		notify:   n,
	}
}

type Option func(*_options)

type _options struct {
	registry registry.Registry
	testexec testexec.Interface
	notify   notify.Interface
}

func WithRegistry(r registry.Registry) Option {
	return func(o *_options) { o.registry = r }
}

func WithTestExec(te testexec.Interface) Option {
	return func(o *_options) { o.testexec = te }
}

func WithNotify(n notify.Interface) Option {
	return func(o *_options) { o.notify = n }
}

func (d *driftgate) Config() *monitor.MonitorConfig {
	return d.config
}

func (d *driftgate) Database() db.MonitorDatabase {
	return d.database
}

func (d *driftgate) Registry() registry.Registry {
	return d.registry
}

// Gate is where release controllers park waiting for a decision.
func (d *driftgate) Gate() gate.Gate {
	return d.broker
}

// GateResolver is the operator-facing side of the same broker.
func (d *driftgate) GateResolver() gate.Resolver {
	return d.broker
}

func (d *driftgate) TestExec() testexec.Interface {
	return d.testexec
}

func (d *driftgate) Notify() notify.Interface {
	return d.notify
}
