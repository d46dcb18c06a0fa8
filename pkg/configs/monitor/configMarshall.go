package monitor

import (
	"fmt"
	"time"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// the six sensor features forecast per unit, unless a deployment says otherwise.
var defaultFeatures = []string{
	"temperature", "pressure", "vibration", "current", "voltage", "flow_rate",
}

type MonitorConfigMarshall struct {
	Database string                 `yaml:"database"`
	Fleet    *FleetConfigMarshall   `yaml:"fleet,omitempty"`
	Drift    *DriftConfigMarshall   `yaml:"drift,omitempty"`
	Release  *ReleaseConfigMarshall `yaml:"release"`
	Api      *ApiConfigMarshall     `yaml:"api,omitempty"`
}

var _ Marshalled[*MonitorConfig] = &MonitorConfigMarshall{}

func (m *MonitorConfigMarshall) trySeal(path string) *MonitorConfig {
	fleet := m.Fleet
	if fleet == nil {
		fleet = &FleetConfigMarshall{}
	}
	drift := m.Drift
	if drift == nil {
		drift = &DriftConfigMarshall{}
	}
	api := m.Api
	if api == nil {
		api = &ApiConfigMarshall{}
	}
	return &MonitorConfig{
		database: required(m.Database, path+".database"),
		fleet:    fleet.trySeal(path + ".fleet"),
		drift:    drift.trySeal(path + ".drift"),
		release:  nonnil(m.Release, path+".release").trySeal(path + ".release"),
		api:      api.trySeal(path + ".api"),
	}
}

type FleetConfigMarshall struct {
	Units    []string `yaml:"units,omitempty"`
	Features []string `yaml:"features,omitempty"`
}

func (f *FleetConfigMarshall) trySeal(string) *FleetConfig {
	features := f.Features
	if len(features) == 0 {
		features = defaultFeatures
	}
	return &FleetConfig{
		units:    f.Units,
		features: features,
	}
}

type DriftConfigMarshall struct {
	Alpha        float64 `yaml:"alpha,omitempty"`
	Wasserstein  float64 `yaml:"wasserstein,omitempty"`
	PSI          float64 `yaml:"psi,omitempty"`
	Bins         int     `yaml:"bins,omitempty"`
	Concurrency  int     `yaml:"concurrency,omitempty"`
	BaselineDays int     `yaml:"baselineDays,omitempty"`
	CurrentDays  int     `yaml:"currentDays,omitempty"`
}

func (d *DriftConfigMarshall) trySeal(string) *DriftConfig {
	return &DriftConfig{
		alpha:        orDefault(d.Alpha, 0.05),
		wasserstein:  orDefault(d.Wasserstein, 0.15),
		psi:          orDefault(d.PSI, 0.25),
		bins:         orDefault(d.Bins, 10),
		concurrency:  orDefault(d.Concurrency, 5),
		baselineDays: orDefault(d.BaselineDays, 30),
		currentDays:  orDefault(d.CurrentDays, 7),
	}
}

type ReleaseConfigMarshall struct {
	ApprovalTimeout string `yaml:"approvalTimeout,omitempty"`
	TestRetries     *int   `yaml:"testRetries,omitempty"`
	TestBackoff     string `yaml:"testBackoff,omitempty"`
	RegistryBase    string `yaml:"registryBase"`
	TestEndpoint    string `yaml:"testEndpoint"`
}

func (r *ReleaseConfigMarshall) trySeal(path string) *ReleaseConfig {
	retries := 2
	if r.TestRetries != nil {
		retries = *r.TestRetries
	}
	return &ReleaseConfig{
		approvalTimeout: duration(r.ApprovalTimeout, 24*time.Hour, path+".approvalTimeout"),
		testRetries:     retries,
		testBackoff:     duration(r.TestBackoff, 30*time.Second, path+".testBackoff"),
		registryBase:    required(r.RegistryBase, path+".registryBase"),
		testEndpoint:    required(r.TestEndpoint, path+".testEndpoint"),
	}
}

type ApiConfigMarshall struct {
	Port   int32  `yaml:"port,omitempty"`
	JwtKey string `yaml:"jwtKey,omitempty"`
}

func (a *ApiConfigMarshall) trySeal(string) *ApiConfig {
	return &ApiConfig{
		port:   orDefault(a.Port, 8080),
		jwtKey: a.JwtKey,
	}
}

func duration(v string, def time.Duration, path string) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	return d
}

func orDefault[T comparable](v T, def T) T {
	if v == *new(T) {
		return def
	}
	return v
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
