// Package simlog wraps logrus with the structured fields every
// simulator component logs against: simulated time and, where
// relevant, the host involved.
package simlog

import (
	"github.com/sirupsen/logrus"

	"github.com/AgentDudu/the-one/internal/sim"
)

// Logger is the package-wide logrus instance. Callers that want
// per-run output control (e.g. the CLI's --verbose flag) mutate its
// Level/Formatter directly.
var Logger = logrus.New()

// At returns an entry pre-populated with the simulated clock time, for
// components that log from within the tick loop.
func At(now float64) *logrus.Entry {
	return Logger.WithField("sim_time", now)
}

// ForHost returns an entry pre-populated with simulated time and host
// ID, the common case for router/mobility logging.
func ForHost(now float64, host sim.HostID) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{
		"sim_time": now,
		"host":     host.String(),
	})
}
