// Package web provides the main web server implementation for the bazaar
// panel, including HTTP/HTTPS serving, routing, and background job scheduling.
package web

import (
	"context"
	"crypto/subtle"
	"crypto/tls"
	"embed"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/bazaarpanel/bazaar/config"
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/util/common"
	"github.com/bazaarpanel/bazaar/web/controller"
	"github.com/bazaarpanel/bazaar/web/job"
	"github.com/bazaarpanel/bazaar/web/locale"
	"github.com/bazaarpanel/bazaar/web/middleware"
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

//go:embed translation/*
var i18nFS embed.FS

// Server is the bazaar panel web server with its controllers, services, and
// scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index  *controller.IndexController
	panel  *controller.PanelController
	public *controller.PublicReferralController

	settingService service.SettingService
	tgbotService   service.Tgbot

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// initRouter initializes Gin, registers middleware, controllers and returns
// the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	webDomain, err := s.settingService.GetWebDomain()
	if err != nil {
		return nil, err
	}
	if webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}

	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return nil, err
	}

	if err := locale.InitLocalizer(i18nFS, &s.settingService); err != nil {
		return nil, err
	}

	store := cookie.NewStore(secret)
	engine.Use(sessions.Sessions("bazaar", store))
	engine.Use(locale.LocalizerMiddleware())
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "panel/api/"}),
	))

	// Redirects (/admin -> /panel etc.)
	engine.Use(middleware.RedirectMiddleware(basePath))

	g := engine.Group(basePath)

	// Login and signup share a tight per-IP budget.
	authLimit := middleware.DefaultRateLimitConfig()
	authLimit.RequestsPerMinute = 10
	auth := g.Group("/", middleware.RateLimitMiddleware(authLimit))
	s.index = controller.NewIndexController(auth)
	s.panel = controller.NewPanelController(g)
	s.public = controller.NewPublicReferralController(g)

	engine.GET(basePath+"metrics", s.metricsHandler())

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// metricsHandler serves the Prometheus registry, gated by the configured
// scrape token when one is set.
func (s *Server) metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		token, err := s.settingService.GetMetricsToken()
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if token != "" {
			got := c.Query("token")
			if got == "" {
				got = c.GetHeader("X-Metrics-Token")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// startTask schedules the background jobs.
func (s *Server) startTask() {
	cleanupCron, err := s.settingService.GetKycCleanupCron()
	if err != nil || cleanupCron == "" {
		cleanupCron = "@daily"
	}
	if _, err := s.cron.AddJob(cleanupCron, job.NewKycOrphanCleanupJob()); err != nil {
		logger.Warning("Add KycOrphanCleanupJob error:", err)
	}

	if informEnabled, _ := s.settingService.GetReferralInformEnable(); informEnabled {
		if _, err := s.cron.AddJob("@hourly", job.NewReferralInformJob()); err != nil {
			logger.Warning("Add ReferralInformJob error:", err)
		}
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	certFile, err := s.settingService.GetCertFile()
	if err != nil {
		return err
	}
	keyFile, err := s.settingService.GetKeyFile()
	if err != nil {
		return err
	}
	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if certFile != "" || keyFile != "" {
		if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil {
			cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
			listener = tls.NewListener(listener, cfg)
			logger.Info("Web server running HTTPS on", listener.Addr())
		} else {
			logger.Error("Error loading certificates:", err)
			logger.Info("Web server running HTTP on", listener.Addr())
		}
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	if isTgbotEnabled, err := s.settingService.GetTgbotEnabled(); (err == nil) && isTgbotEnabled {
		tgBot := s.tgbotService.NewTgbot()
		if err := tgBot.Start(); err != nil {
			logger.Warning("Start telegram notifier failed:", err)
		}
	}

	return nil
}

// Stop gracefully shuts down the web server, cron jobs, and the Telegram notifier.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.tgbotService.IsRunning() {
		s.tgbotService.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
