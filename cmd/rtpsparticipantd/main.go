// Command rtpsparticipantd is a demo binary that exercises the whole
// stack over real UDP: it stands up one domain participant's metatraffic
// socket, SPDP/SEDP discovery, the orchestrator task group, and the
// admin/metrics server, then blocks until a signal arrives. Grounded on
// controller/cmd/destination/main.go's flag-parse → Config →
// admin-server-goroutine → signal-channel → done-chan shutdown shape.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lanterndds/rtpscore/internal/rtps/adminsrv"
	"github.com/lanterndds/rtpscore/internal/rtps/config"
	"github.com/lanterndds/rtpscore/internal/rtps/discovery"
	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/metrics"
	"github.com/lanterndds/rtpscore/internal/rtps/orchestrator"
	"github.com/lanterndds/rtpscore/internal/rtps/transport"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

func main() {
	cmd := flag.NewFlagSet("rtpsparticipantd", flag.ExitOnError)
	cfg, err := config.Parse(cmd, os.Args[1:])
	if err != nil {
		log.Fatalf("failed to parse flags: %s", err)
	}
	cfg.ApplyLogging()

	entry := log.WithFields(log.Fields{"component": "rtpsparticipantd", "domain-id": cfg.DomainID})

	prefix, err := newGUIDPrefix()
	if err != nil {
		log.Fatalf("failed to generate participant guid prefix: %s", err)
	}
	self := guid.New(prefix, guid.EntityIDParticipant)
	entry = entry.WithField("participant", self.String())

	unicastPort := locator.MetatrafficUnicastPort(uint32(cfg.DomainID), uint32(cfg.ParticipantIndex))
	bindLoc, err := resolveBindLocator(cfg.BindAddress, unicastPort)
	if err != nil {
		log.Fatalf("failed to resolve bind address %s: %s", cfg.BindAddress, err)
	}

	udp, err := transport.NewUDP(bindLoc)
	if err != nil {
		log.Fatalf("failed to bind metatraffic socket on %s: %s", bindLoc, err)
	}
	defer udp.Close()

	spdpGroup := locator.Locator{
		Kind:    locator.KindUDPv4,
		Port:    locator.MetatrafficMulticastPort(uint32(cfg.DomainID)),
		Address: locator.SPDPMulticastGroup(),
	}

	var (
		enabled                atomic.Bool
		discoveredParticipants atomic.Int64
		matchedEndpoints       atomic.Int64
	)
	seenParticipants := make(map[guid.Prefix]bool)

	adminServer := adminsrv.NewServer(cfg.AdminAddress, false, func() adminsrv.Status {
		return adminsrv.Status{
			Enabled:                enabled.Load(),
			DiscoveredParticipants: int(discoveredParticipants.Load()),
			MatchedEndpoints:       int(matchedEndpoints.Load()),
		}
	})
	go func() {
		entry.Infof("starting admin server on %s", cfg.AdminAddress)
		if err := adminServer.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				entry.Infof("admin server closed (%s)", cfg.AdminAddress)
			} else {
				entry.Errorf("admin server error (%s): %s", cfg.AdminAddress, err)
			}
		}
	}()

	spdp := discovery.NewSPDPDetector(prefix,
		func(local guid.EntityID, remote guid.GUID, unicast, multicast locator.List) {
			entry.WithFields(log.Fields{"local": local, "remote": remote.String()}).Info("builtin endpoint matched")
			metrics.MatchesTotal.WithLabelValues("builtin").Inc()
			matchedEndpoints.Add(1)
			if !seenParticipants[remote.Prefix] {
				seenParticipants[remote.Prefix] = true
				discoveredParticipants.Add(1)
			}
		},
		func(removed guid.Prefix) {
			entry.WithField("remote-prefix", fmt.Sprintf("%x", removed)).Info("participant proxy removed")
			if seenParticipants[removed] {
				delete(seenParticipants, removed)
				discoveredParticipants.Add(-1)
			}
		},
	)
	// sedp and topics are constructed here because they're per-participant
	// state a façade's CreateDataWriter/CreateDataReader would feed as
	// user endpoints are created; this demo binary creates none, so they
	// sit idle rather than unused — wiring an application's own topics is
	// the façade's job, not this binary's.
	_ = discovery.NewSEDPDetector(spdp)
	_ = discovery.NewTopicCache()

	task := orchestrator.New(entry, time.Second)

	task.StartReceiver(udp, func(source locator.Locator, frame []byte) {
		_, err := wire.Parse(frame)
		if err != nil {
			metrics.MalformedSubmessagesTotal.Inc()
			entry.WithError(err).WithField("source", source.String()).Debug("dropping malformed frame")
			return
		}
	})

	announcePeriod := cfg.LeaseDuration / 3
	if announcePeriod <= 0 {
		announcePeriod = time.Second
	}
	task.StartPeriodicSender(announcePeriod, func(now time.Time) {
		frame := spdpAnnounceFrame(prefix, now)
		if err := udp.Send(frame, []locator.Locator{spdpGroup}); err != nil {
			entry.WithError(err).Debug("spdp announce send failed")
		}
	})

	task.AddStatusEvaluator(func(now time.Time) {
		spdp.ExpireStaleParticipants(now)
	})
	task.StartStatusEvaluator()
	task.StartListenerDispatch()

	metrics.ParticipantsGauge.Inc()
	enabled.Store(true)
	entry.Info("participant enabled")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	entry.Info("shutting down")
	enabled.Store(false)
	task.Shutdown()
	adminServer.Shutdown(context.Background())
	metrics.ParticipantsGauge.Dec()
}

// newGUIDPrefix draws 12 random bytes for the participant's GUID prefix,
// the same "unique per process, no coordination required" approach the
// well-known-port formula assumes peers use to avoid collisions on a
// shared domain.
func newGUIDPrefix() (guid.Prefix, error) {
	var p guid.Prefix
	if _, err := rand.Read(p[:]); err != nil {
		return p, err
	}
	return p, nil
}

func resolveBindLocator(bindAddress string, port uint32) (locator.Locator, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", bindAddress, port))
	if err != nil {
		return locator.Locator{}, err
	}
	return locator.FromUDPAddr(addr), nil
}

// spdpAnnounceFrame builds a minimal keepalive frame carrying only the
// protocol header and an INFOTS submessage; CDR serialization of the full
// ParticipantBuiltinTopicData payload is an external collaborator's
// concern (spec.md §1), so the demo binary proves out transport +
// scheduling wiring without depending on it.
func spdpAnnounceFrame(prefix guid.Prefix, now time.Time) []byte {
	header := wire.Header{
		Version: wire.ProtocolVersion{Major: 2, Minor: 3},
		Vendor:  wire.VendorID{'R', 'C'},
		Prefix:  prefix,
	}
	ts := wire.InfoTS{Timestamp: wire.Timestamp{Seconds: uint32(now.Unix()), Fraction: 0}}
	return wire.Emit(header, []wire.Submessage{{Kind: wire.KindInfoTS, Flags: 0, Body: ts}})
}
