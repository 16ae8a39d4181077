// Package config parses the participant daemon's command-line flags the
// way the teacher's pkg/flags does: a plain flag.FlagSet, no
// viper/cobra, log-level wired straight into logrus.
package config

import (
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Participant holds everything cmd/rtpsparticipantd/main.go needs to
// stand up one domain participant.
type Participant struct {
	DomainID            int
	ParticipantIndex     int
	BindAddress         string
	LeaseDuration       time.Duration
	HistoryDepth        int
	AdminAddress        string
	LogLevel            string
}

// Parse registers the daemon's flags on fs, parses args, and validates
// the log level, mirroring pkg/flags.ConfigureAndParse's
// register-then-parse-then-validate shape.
func Parse(fs *flag.FlagSet, args []string) (*Participant, error) {
	p := &Participant{}
	fs.IntVar(&p.DomainID, "domain-id", 0, "RTPS domain id (0-232)")
	fs.IntVar(&p.ParticipantIndex, "participant-index", 0, "participant index, used to derive the unicast metatraffic port")
	fs.StringVar(&p.BindAddress, "bind-address", "0.0.0.0", "local address to bind user-traffic and metatraffic sockets on")
	fs.DurationVar(&p.LeaseDuration, "lease-duration", 10*time.Second, "SPDP lease duration advertised to peers")
	fs.IntVar(&p.HistoryDepth, "history-depth", 1, "default KEEP_LAST history depth for user endpoints")
	fs.StringVar(&p.AdminAddress, "admin-address", ":9996", "address the admin/metrics HTTP server listens on")
	fs.StringVar(&p.LogLevel, "log-level", log.InfoLevel.String(), "log level, must be one of: panic, fatal, error, warn, info, debug")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if _, err := log.ParseLevel(p.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log-level %q: %w", p.LogLevel, err)
	}
	if p.DomainID < 0 || p.DomainID > 232 {
		return nil, fmt.Errorf("domain-id %d out of range [0,232]", p.DomainID)
	}
	return p, nil
}

// ApplyLogging sets logrus's global level from p.LogLevel, the same
// setLogLevel step pkg/flags.ConfigureAndParse performs.
func (p *Participant) ApplyLogging() {
	level, _ := log.ParseLevel(p.LogLevel)
	log.SetLevel(level)
}
