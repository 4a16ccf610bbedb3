package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string // Grafana Cloud only
	BasicAuthPassword string
	// ProfileTypes names the profile groups to collect: cpu, alloc, inuse,
	// goroutines, mutex, block. Empty selects DefaultProfileTypes.
	ProfileTypes []string
}

// DefaultProfileTypes are collected when none are configured
var DefaultProfileTypes = []string{"cpu", "alloc", "inuse", "goroutines"}

var profileGroups = map[string][]pyroscope.ProfileType{
	"cpu":        {pyroscope.ProfileCPU},
	"alloc":      {pyroscope.ProfileAllocObjects, pyroscope.ProfileAllocSpace},
	"inuse":      {pyroscope.ProfileInuseObjects, pyroscope.ProfileInuseSpace},
	"goroutines": {pyroscope.ProfileGoroutines},
	"mutex":      {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":      {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// runtime sampling rates for mutex and block profiles
const (
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

// ParseProfileTypes maps profile group names onto Pyroscope profile types.
// Unknown names are an error so a typo in configuration is not silently
// ignored.
func ParseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	if len(names) == 0 {
		names = DefaultProfileTypes
	}
	seen := make(map[string]bool, len(names))
	var types []pyroscope.ProfileType
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		group, ok := profileGroups[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		seen[name] = true
		types = append(types, group...)
	}
	return types, nil
}

// Profiler wraps the Pyroscope profiler with lifecycle management.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	mu       sync.Mutex
	stopped  bool
}

// NewProfiler creates and starts a Pyroscope profiler.
// If profiling is disabled, it returns a no-op profiler.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return p, nil
	}

	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}

	types, err := ParseProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		switch t {
		case pyroscope.ProfileMutexCount:
			runtime.SetMutexProfileFraction(mutexProfileFraction)
		case pyroscope.ProfileBlockCount:
			runtime.SetBlockProfileRate(blockProfileRate)
		}
	}

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}
	if podName := os.Getenv("POD_NAME"); podName != "" {
		tags["pod"] = podName
	}

	pyroscopeCfg := pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          newPyroscopeLogger(logger),
		Tags:            tags,
		ProfileTypes:    types,
	}
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPassword != "" {
		pyroscopeCfg.BasicAuthUser = cfg.BasicAuthUser
		pyroscopeCfg.BasicAuthPassword = cfg.BasicAuthPassword
	}

	profiler, err := pyroscope.Start(pyroscopeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
	)
	return p, nil
}

// Stop flushes pending profiles and stops the profiler. Safe to call twice.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.profiler == nil {
		p.stopped = true
		return nil
	}
	p.stopped = true

	if err := p.profiler.Stop(); err != nil {
		p.logger.Error("Error stopping profiler", zap.Error(err))
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	p.logger.Info("Pyroscope profiler stopped")
	return nil
}

// Shutdown stops the profiler. The Pyroscope SDK takes no context, so ctx
// is unused.
func (p *Profiler) Shutdown(_ context.Context) error {
	return p.Stop()
}

// IsEnabled returns whether profiles are being collected.
func (p *Profiler) IsEnabled() bool {
	return p.config.Enabled && p.profiler != nil
}

// pyroscopeLogger adapts zap.Logger to pyroscope.Logger.
type pyroscopeLogger struct {
	logger *zap.SugaredLogger
}

func newPyroscopeLogger(logger *zap.Logger) pyroscope.Logger {
	return &pyroscopeLogger{logger: logger.Named("pyroscope").Sugar()}
}

func (l *pyroscopeLogger) Infof(format string, args ...any)  { l.logger.Infof(format, args...) }
func (l *pyroscopeLogger) Debugf(format string, args ...any) { l.logger.Debugf(format, args...) }
func (l *pyroscopeLogger) Errorf(format string, args ...any) { l.logger.Errorf(format, args...) }
