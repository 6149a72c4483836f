package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"image/png"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/config"
	"wordclock.ai/internal/overlay"
	persistlog "wordclock.ai/internal/persistence/log"
	"wordclock.ai/internal/transport/observer"
	"wordclock.ai/internal/transport/settings"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)
	loadDotEnv(logger)

	var (
		configPath  = flag.String("config", envString("WORDCLOCK_CONFIG", "./configs/wordclock.yaml"), "path to wordclock.yaml")
		addr        = flag.String("addr", "", "http listen address (default: server.addr from config)")
		dataDir     = flag.String("data", "", "runtime data directory (default: server.data_dir from config)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite settings store and minute index")
		allowRemote = flag.Bool("allow_remote", envBool("WORDCLOCK_ALLOW_REMOTE", false), "serve settings writes and observers to non-loopback clients")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("load config: %v", err)
		}
		logger.Printf("config not found (%s); using defaults", *configPath)
		cfg = config.Defaults()
		cfg.Normalize()
	}
	if strings.TrimSpace(*addr) != "" {
		cfg.Server.Addr = strings.TrimSpace(*addr)
	}
	if strings.TrimSpace(*dataDir) != "" {
		cfg.Server.DataDir = strings.TrimSpace(*dataDir)
	}
	if *disableDB {
		cfg.Server.DisableDB = true
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("timezone: %v", err)
	}
	_ = os.MkdirAll(cfg.Server.DataDir, 0o755)

	bootID := uuid.NewString()
	logger.Printf("boot id %s tz=%s poll=%s", bootID, loc, cfg.PollInterval())

	ctx, cancel := signalContext()
	defer cancel()

	// Optional: settings store + minute index.
	idx, err := openRuntimeIndex(cfg.Server.DataDir, cfg.Server.DisableDB, logger)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	st := overlay.Settings{Active: cfg.Clock.Active, Color: config.ColorOrDefault(cfg.Clock.WordColor)}
	if idx != nil {
		st, err = loadSettings(ctx, idx, st, logger)
		if err != nil {
			logger.Fatalf("load settings: %v", err)
		}
	}

	display := overlay.NewDisplay(st, cfg.Display.OffsetX, cfg.Display.OffsetY)
	runner := clock.New(clock.Config{
		PollInterval: cfg.PollInterval(),
		BootID:       bootID,
	}, clock.SystemSource{Location: loc}, display, log.New(os.Stdout, "[clock] ", log.LstdFlags|log.Lmicroseconds))

	mirror, err := buildMinuteMirror(cfg.Server.DataDir, log.New(os.Stdout, "[mirror] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("init minute mirror: %v", err)
	}
	defer mirror.Close()

	logOpts := persistlog.LoggerOptions{}
	if mirror != nil {
		logOpts.OnClose = mirror.Enqueue
	}
	minuteLog := persistlog.NewMinuteLoggerWithOptions(cfg.Server.DataDir, logOpts)
	defer minuteLog.Close()
	runner.SetMinuteLogger(minuteLog)
	if idx != nil {
		runner.SetMinuteIndex(idx)
	}

	go func() {
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("clock stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		writeMetrics(rw, runner, idx, mirror)
	})

	var store settings.Store
	if idx != nil {
		store = idx
	}
	settingsSrv := settings.NewServer(runner, store, logger)
	settingsSrv.AllowRemote = *allowRemote
	mux.HandleFunc("/v1/settings", settingsSrv.Handler())

	obsSrv := observer.NewServer(runner, logger)
	obsSrv.AllowRemote = *allowRemote
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())
	mux.HandleFunc("/v1/preview.png", previewHandler(display, cfg.Display))

	enableAdminHTTP := envBool("WORDCLOCK_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("WORDCLOCK_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			h, m, ok := display.Time()
			f := display.Frame()
			s := display.Settings()
			resp := struct {
				BootID    string      `json:"boot_id"`
				HasTime   bool        `json:"has_time"`
				Hour      int         `json:"hour"`
				Minute    int         `json:"minute"`
				Text      string      `json:"text"`
				Lit       int         `json:"lit"`
				Active    bool        `json:"active"`
				WordColor string      `json:"word_color"`
				Stats     clock.Stats `json:"stats"`
			}{
				BootID:    bootID,
				HasTime:   ok,
				Hour:      h,
				Minute:    m,
				Text:      f.Text(),
				Lit:       f.Lit(),
				Active:    s.Active,
				WordColor: s.Color.Hex(),
				Stats:     runner.Stats(),
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/minutes", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				http.Error(rw, "index disabled", http.StatusNotFound)
				return
			}
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			rows, err := idx.RecentMinutes(ctx2, limit)
			if err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(rows)
		})
	} else {
		logger.Printf("admin endpoints disabled (WORDCLOCK_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// previewHandler renders the display into a matrix-sized canvas as PNG.
func previewHandler(display *overlay.Display, dc config.DisplayConfig) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		scale, err := strconv.Atoi(r.URL.Query().Get("scale"))
		if err != nil || scale <= 0 {
			scale = 16
		}
		if scale > 64 {
			scale = 64
		}
		c := overlay.NewCanvas(dc.Width, dc.Height)
		display.Draw(c)
		rw.Header().Set("Content-Type", "image/png")
		rw.Header().Set("Cache-Control", "no-store")
		_ = png.Encode(rw, c.ScaledImage(scale))
	}
}

func loadDotEnv(logger *log.Logger) {
	// godotenv never overrides variables that are already set, so the more
	// specific file goes first.
	for _, p := range []string{".env.local", ".env"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.Printf("load %s: %v", p, err)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
