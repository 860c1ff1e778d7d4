// =======================
// command/telemetry.go
// =======================

package command

import (
	"fmt"
	"time"

	metrics "github.com/armon/go-metrics"

	"hashviz/config"
)

// setupTelemetry installs the global metrics sink. The in-memory sink is
// dumped to stderr when SIGUSR1 is received.
func setupTelemetry(cfg *config.Telemetry) (*metrics.InmemSink, error) {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	if cfg == nil {
		cfg = &config.Telemetry{}
	}

	metricsConf := metrics.DefaultConfig("hashviz")
	metricsConf.EnableHostname = !cfg.DisableHostname

	var fanout metrics.FanoutSink
	if cfg.StatsiteAddr != "" {
		sink, err := metrics.NewStatsiteSink(cfg.StatsiteAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to setup statsite sink: %w", err)
		}
		fanout = append(fanout, sink)
	}

	if cfg.StatsdAddr != "" {
		sink, err := metrics.NewStatsdSink(cfg.StatsdAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to setup statsd sink: %w", err)
		}
		fanout = append(fanout, sink)
	}

	fanout = append(fanout, inm)

	if _, err := metrics.NewGlobal(metricsConf, fanout); err != nil {
		return nil, fmt.Errorf("failed to setup global sink: %w", err)
	}
	return inm, nil
}
