package monitor

import (
	"time"
)

// Configuration of the fleet monitor daemons.
//
// To get a MonitorConfig instance, use `MonitorConfigMarshall.TrySeal()`.
type MonitorConfig struct {
	database string
	fleet    *FleetConfig
	drift    *DriftConfig
	release  *ReleaseConfig
	api      *ApiConfig
}

// Connection string for the database.
func (c *MonitorConfig) Database() string {
	return c.database
}

func (c *MonitorConfig) Fleet() *FleetConfig {
	return c.fleet
}

func (c *MonitorConfig) Drift() *DriftConfig {
	return c.drift
}

func (c *MonitorConfig) Release() *ReleaseConfig {
	return c.release
}

func (c *MonitorConfig) Api() *ApiConfig {
	return c.api
}

type FleetConfig struct {
	units    []string
	features []string
}

// Explicitly selected units. Empty = every unit with observations.
func (f *FleetConfig) Units() []string {
	return f.units
}

// Sensor features evaluated per unit.
func (f *FleetConfig) Features() []string {
	return f.features
}

type DriftConfig struct {
	alpha        float64
	wasserstein  float64
	psi          float64
	bins         int
	concurrency  int
	baselineDays int
	currentDays  int
}

// Significance level for the KS test. default = 0.05
func (d *DriftConfig) Alpha() float64 {
	return d.alpha
}

// Wasserstein distance threshold. default = 0.15
func (d *DriftConfig) Wasserstein() float64 {
	return d.wasserstein
}

// PSI threshold. default = 0.25
func (d *DriftConfig) PSI() float64 {
	return d.psi
}

// PSI bucket count. default = 10
func (d *DriftConfig) Bins() int {
	return d.bins
}

// Units scanned in parallel. default = 5
func (d *DriftConfig) Concurrency() int {
	return d.concurrency
}

// Length of the baseline window, in days. default = 30
func (d *DriftConfig) BaselineDays() int {
	return d.baselineDays
}

// Length of the current window, in days. default = 7
func (d *DriftConfig) CurrentDays() int {
	return d.currentDays
}

type ReleaseConfig struct {
	approvalTimeout time.Duration
	testRetries     int
	testBackoff     time.Duration
	registryBase    string
	testEndpoint    string
}

// How long approvals may stay unanswered. default = 24h
func (r *ReleaseConfig) ApprovalTimeout() time.Duration {
	return r.approvalTimeout
}

// Retries of a transiently failing synthetic inference. default = 2
func (r *ReleaseConfig) TestRetries() int {
	return r.testRetries
}

// Wait before the first test retry, growing linearly. default = 30s
func (r *ReleaseConfig) TestBackoff() time.Duration {
	return r.testBackoff
}

// Root of the OCI registry holding the fleet's models.
func (r *ReleaseConfig) RegistryBase() string {
	return r.registryBase
}

// Root of the test-stage scoring endpoint.
func (r *ReleaseConfig) TestEndpoint() string {
	return r.testEndpoint
}

type ApiConfig struct {
	port   int32
	jwtKey string
}

// Port the HTTP daemon listens on. default = 8080
func (a *ApiConfig) Port() int32 {
	return a.port
}

// HS256 key verifying operator tokens.
func (a *ApiConfig) JwtKey() string {
	return a.jwtKey
}
