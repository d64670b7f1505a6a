// Command rapid-engine is a thin wiring example: it shows how an embedding
// program constructs the timing engine out of its packages (storage, GPS
// source, active-session workflow, track-detection workflow, REST client)
// and runs its event loop. It is deliberately not a full product: there is
// no HTTP server here (out of scope, see internal/config and SPEC_FULL.md
// §1), and the GPS source is the replay-based ConstantGpsPositionProvider
// rather than a real receiver.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mFlorianW/rapid/internal/activesession"
	"github.com/mFlorianW/rapid/internal/config"
	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/laptimer"
	"github.com/mFlorianW/rapid/internal/positioning"
	"github.com/mFlorianW/rapid/internal/restclient"
	"github.com/mFlorianW/rapid/internal/rlog"
	"github.com/mFlorianW/rapid/internal/storage"
	"github.com/mFlorianW/rapid/internal/track"
	"github.com/mFlorianW/rapid/internal/types"
	"github.com/mFlorianW/rapid/internal/workflow"
)

var log = rlog.For("rapid-engine")

func main() {
	os.Exit(run())
}

func run() int {
	dbPath := flag.String("db-path", "", "Path to the SQLite database file (required)")
	serverAddress := flag.String("server-address", "", "REST server address the engine talks to (default: restclient's 127.0.0.1)")
	serverPort := flag.Uint("server-port", 0, "REST server port (default: restclient's 27018)")
	radius := flag.Float64("track-radius-m", 0, "Track-detection radius in meters (default: track.DefaultRadius)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default: info)")
	flag.Parse()

	cfg := config.Config{
		DatabasePath:               *dbPath,
		ServerAddress:              *serverAddress,
		ServerPort:                 uint16(*serverPort),
		TrackDetectionRadiusMeters: *radius,
		LogLevel:                   *logLevel,
	}.WithDefaults()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	rlog.SetLevel(cfg.LogrusLevel())

	loop := eventloop.NewLoop()

	trackDB, err := storage.NewTrackDatabase(loop, cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Error("failed to open track database")
		return 1
	}
	defer trackDB.Close()

	sessionDB, err := storage.NewSessionDatabase(loop, cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Error("failed to open session database")
		return 1
	}
	defer sessionDB.Close()

	gps := positioning.NewConstantGpsPositionProvider(loop, nil)
	gps.SetVelocityInMetersPerSecond(30)

	lapTimer := laptimer.New(loop)
	session := activesession.New(loop, gps, lapTimer, sessionDB)

	detector := track.NewDetector(cfg.TrackDetectionRadiusMeters)
	tracks := trackDB.GetTracks()
	detection := workflow.NewTrackDetectionWorkflow(gps, detector, tracks)
	detection.TrackDetected.Connect(func(t types.TrackData) {
		log.WithField("track", t.Name).Info("track detected, arming active session")
		session.SetTrack(t)
		session.StartActiveSession()
	})

	client := restclient.New(loop)
	client.SetServerAddress(cfg.ServerAddress)
	client.SetServerPort(cfg.ServerPort)
	restSessions := workflow.NewRestSessionManagementWorkflow(client)
	_ = restSessions // wired for an embedder to drive; this example doesn't poll it

	gps.Start()
	detection.StartDetection()
	log.WithField("db", cfg.DatabasePath).Info("rapid-engine running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		loop.Quit()
	}()

	if err := loop.Exec(); err != nil {
		log.WithError(err).Error("event loop exited with error")
		return 1
	}
	return 0
}
