// ondeestou — narrates where you are.
//
// Receives a stream of raw geolocation samples over HTTP, filters it
// down to real movement, reverse-geocodes accepted fixes and speaks the
// address changes in Brazilian Portuguese.
//
// Usage:
//
//	ondeestou [-verbose] [-quiet] [-addr :8765] [-config ondeestou.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/andrevmm/ondeestou/internal/address"
	"github.com/andrevmm/ondeestou/internal/config"
	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/geocode"
	"github.com/andrevmm/ondeestou/internal/logger"
	"github.com/andrevmm/ondeestou/internal/position"
	"github.com/andrevmm/ondeestou/internal/speech"
	"github.com/andrevmm/ondeestou/internal/tracker"
	"github.com/andrevmm/ondeestou/internal/web"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (default: stderr)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "", "path to a YAML config file")
	noSpeech := flag.Bool("no-speech", false, "disable audio output even if speech keys are set")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libs that use the stdlib logger share our output.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Wire the pipeline.
	validator := position.New(log,
		position.WithMinDistance(cfg.MinDistanceM),
		position.WithImmediateWindow(cfg.ImmediateWindow),
		position.WithStrictAccuracy(cfg.StrictAccuracy),
	)
	cache := address.NewChangeCache(log)

	queue, err := speech.NewQueue(log,
		speech.WithMaxSize(cfg.QueueMaxSize),
		speech.WithTTL(cfg.QueueTTL),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := speech.NewAnnouncer(queue, log).Attach(cache); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var geocoder domain.Geocoder = geocode.NewClient(log,
		geocode.WithBaseURL(cfg.GeocoderBaseURL),
	)
	geocoder = geocode.NewCachedGeocoder(geocoder, log,
		geocode.WithResolution(cfg.H3Resolution),
	)

	tr, err := tracker.New(validator, geocoder, cache, queue, log,
		tracker.WithGeocodeTimeout(cfg.GeocodeTimeout),
		tracker.WithSweepInterval(cfg.SweepInterval),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Build the speech output. Without credentials or with -no-speech the
	// speaker degrades to logging the announcements.
	var tts domain.Synthesizer
	var sink speech.AudioSink

	speechKey := os.Getenv(speech.EnvSpeechKey)
	speechRegion := os.Getenv(speech.EnvSpeechRegion)

	if speechKey != "" && speechRegion != "" && !*noSpeech {
		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
		} else {
			tts = speech.NewTTSClient(speechKey, speechRegion, log)
			sink = player
			log.Info("TTS enabled (voice=%s, region=%s)", speech.DefaultVoice, speechRegion)
		}
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvSpeechKey, speech.EnvSpeechRegion)
	}

	speaker := speech.NewSpeaker(queue, tts, sink, log)

	srv, err := web.NewServer(tr, validator, cache, queue, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	go speaker.Run(ctx)
	go tr.Run(ctx)

	go func() {
		<-ctx.Done()
		tr.WaitResolves()
		if err := srv.Shutdown(); err != nil {
			log.Error("web shutdown: %v", err)
		}
	}()

	log.Info("ondeestou listening on %s", cfg.HTTPAddr)
	if err := srv.Listen(cfg.HTTPAddr); err != nil {
		log.Error("web: %v", err)
		os.Exit(1)
	}
}
