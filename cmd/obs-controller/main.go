package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mathiascn/obs-controller/internal/controller"
	"github.com/mathiascn/obs-controller/internal/obsconfig"
	"github.com/mathiascn/obs-controller/internal/obsws"
	"github.com/mathiascn/obs-controller/internal/platform/config"
	"github.com/mathiascn/obs-controller/internal/platform/logger"
	"github.com/mathiascn/obs-controller/internal/platform/metrics"
	"github.com/mathiascn/obs-controller/internal/process"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultCapBytes   = 5 * 1024 * 1024 * 1024
	launchWaitRetries = 30
	launchWaitDelay   = time.Second
)

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	obsHost := config.GetEnv("OBS_HOST", "localhost")
	obsPort := config.GetEnvInt("OBS_PORT", 4455)
	obsPassword := config.GetEnv("OBS_PASSWORD", "")
	obsBinDir := config.GetEnv("OBS_BIN_DIR", "C:/Program Files/obs-studio/bin/64bit")
	obsExe := config.GetEnv("OBS_EXECUTABLE", "obs64.exe")

	videoDir := config.GetEnv("VIDEO_DIR", defaultVideoDir())
	maxBytes := config.GetEnvInt64("MAX_FOLDER_BYTES", defaultCapBytes)
	saveTimeout := config.GetEnvDuration("SAVE_TIMEOUT", controller.DefaultSaveTimeout)
	pollInterval := config.GetEnvDuration("POLL_INTERVAL", controller.DefaultPollInterval)
	retentionInterval := config.GetEnvDuration("RETENTION_INTERVAL", controller.DefaultRetentionInterval)
	connectAttempts := config.GetEnvInt("CONNECT_ATTEMPTS", 5)
	connectDelay := config.GetEnvDuration("CONNECT_DELAY", 2*time.Second)

	log := logger.New(logLevel, logFormat)

	if obsPassword == "" {
		log.Error("OBS_PASSWORD is required")
		os.Exit(1)
	}

	prepareOBS(log, obsPort, obsPassword, videoDir)

	supervisor := process.NewSupervisor(obsBinDir, obsExe, obsconfig.ProfileName, log)
	launchOBS(log, supervisor)

	index := controller.NewDirectoryIndex(videoDir, log)
	met := metrics.New()
	session := controller.NewSession(obsHost, obsPort, obsPassword, obsws.Dialer{}, supervisor, log)
	replay := controller.NewReplayController(session, index, saveTimeout, pollInterval, log)
	retention := controller.NewRetentionManager(index, maxBytes, retentionInterval, log, met)
	h := controller.NewHandler(replay, session, index, log, met)

	connectWithRetry(log, session, connectAttempts, connectDelay)

	if session.IsConnected() {
		if err := replay.StartBuffer(); err != nil {
			log.Error("could not start replay buffer", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go retention.Run(ctx)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler(func() {
			met.SetDirectoryBytes(index.TotalSize())
			met.SetConnected(session.IsConnected())
		}).ServeHTTP(w, req)
	})
	r.Get("/healthz", h.Healthz)
	r.Get("/status", h.Status)
	r.Get("/version", h.Version)
	r.Route("/replay", func(r chi.Router) {
		r.Post("/start", h.StartReplay)
		r.Post("/stop", h.StopReplay)
		r.Post("/save", h.SaveReplay)
	})

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("controller starting",
		"port", port,
		"video_dir", videoDir,
		"max_folder_bytes", maxBytes,
		"obs", obsHost,
		"obs_port", obsPort,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	cancel()
	cleanup(log, replay, session, supervisor)

	log.Info("controller stopped")
}

// prepareOBS enables the websocket server in global.ini and installs the
// recording profile. Both are best-effort: a fresh host may not have the
// config files yet, and OBS may already be configured.
func prepareOBS(log *slog.Logger, port int, password, videoDir string) {
	globalINI := config.GetEnv("OBS_GLOBAL_INI", defaultGlobalINI())
	profilesDir := config.GetEnv("OBS_PROFILES_DIR", defaultProfilesDir())

	if err := obsconfig.EnableWebSocket(globalINI, port, password); err != nil {
		log.Warn("could not enable websocket server in global.ini", "path", globalINI, "error", err)
	}
	if dest, err := obsconfig.InstallProfile(profilesDir, videoDir); err != nil {
		log.Warn("could not install recording profile", "error", err)
	} else {
		log.Info("recording profile installed", "path", dest)
	}
}

// launchOBS starts OBS if installed and waits until it shows up in the
// process table. A missing installation is logged; the controller keeps
// running so it can attach to an OBS started by other means.
func launchOBS(log *slog.Logger, supervisor *process.Supervisor) {
	if !supervisor.Installed() {
		log.Warn("obs executable not found, skipping launch")
		return
	}

	supervisor.Launch()
	for i := 0; i < launchWaitRetries; i++ {
		if supervisor.IsRunning() {
			return
		}
		time.Sleep(launchWaitDelay)
	}
	log.Warn("obs did not appear in the process table after launch")
}

// connectWithRetry attempts to open the websocket session a bounded number
// of times. The websocket server only accepts connections once OBS has
// finished starting up.
func connectWithRetry(log *slog.Logger, session *controller.Session, attempts int, delay time.Duration) {
	for attempt := 1; attempt <= attempts; attempt++ {
		err := session.Connect()
		if err == nil {
			return
		}
		log.Warn("connect attempt failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)
		if attempt < attempts {
			time.Sleep(delay)
		}
	}
	log.Error("could not connect to obs websocket, operations will fail until /healthz recovers")
}

// cleanup releases resources in dependency order: stop the buffer, close the
// session, then terminate the OBS process.
func cleanup(log *slog.Logger, replay *controller.ReplayController, session *controller.Session, supervisor *process.Supervisor) {
	if session.IsConnected() {
		if err := replay.StopBuffer(); err != nil {
			log.Warn("could not stop replay buffer", "error", err)
		}
		if err := session.Disconnect(); err != nil {
			log.Warn("disconnect failed", "error", err)
		}
	}
	supervisor.Terminate()
}

func defaultVideoDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Videos"
	}
	return filepath.Join(home, "Videos")
}

func defaultGlobalINI() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("obs-studio", "global.ini")
	}
	return filepath.Join(cfgDir, "obs-studio", "global.ini")
}

func defaultProfilesDir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("obs-studio", "basic", "profiles")
	}
	return filepath.Join(cfgDir, "obs-studio", "basic", "profiles")
}
