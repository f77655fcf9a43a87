package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"safeher/config"
	"safeher/handler"
	"safeher/logger"
	"safeher/middleware"
	"safeher/repository"
	"safeher/scheduler"
	"safeher/services"
	"safeher/usecase"
	"safeher/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

type app struct {
	cfg       *config.Config
	lg        *zap.Logger
	mongo     *mongo.Client
	redis     *redis.Client
	tokens    *services.TokenService
	blacklist services.TokenBlacklist
	watchdog  *usecase.Watchdog
	sms       *services.TwilioSMS
	mail      *services.SMTPMailer

	sessionRepo *repository.SessionRepo

	auth     *handler.AuthHandler
	contacts *handler.ContactHandler
	sessions *handler.SessionHandler
	alerts   *handler.AlertHandler
}

func setupRouter(a *app) (*gin.Engine, error) {
	gin.SetMode(a.cfg.GinMode)
	router := gin.New()

	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.RecoveryMiddleware(a.lg))
	router.Use(logger.GinLogger(a.lg))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(a.cfg.ClientURL))
	router.Use(middleware.RequestSizeLimiter(maxRequestBody))

	store := middleware.NewLimiterStore(a.redis, a.lg)
	observer := middleware.NewPrometheusObserver()
	apiLimiter, err := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Name:       "api",
		Rate:       a.cfg.RateLimit,
		AddHeaders: true,
	}, store)
	if err != nil {
		return nil, err
	}
	authLimiter, err := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Name:       "auth",
		Rate:       a.cfg.AuthRateLimit,
		AddHeaders: true,
	}, store)
	if err != nil {
		return nil, err
	}
	apiLimiter.WithObserver(observer)
	authLimiter.WithObserver(observer)

	health := &handler.HealthHandler{
		Database: handler.PingFunc(func(ctx context.Context) error {
			return a.mongo.Ping(ctx, readpref.Primary())
		}),
		Watchdog:  a.watchdog,
		Sessions:  a.sessionRepo,
		SMSReady:  a.sms.Configured(),
		MailReady: a.mail.Configured(),
		Started:   time.Now(),
		CPUSample: 100 * time.Millisecond,
	}
	if a.redis != nil {
		health.Cache = handler.PingFunc(func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}

	router.GET("/health", health.Health)
	router.GET("/metrics", handler.Metrics())

	api := router.Group("/api", middleware.NoStore(), apiLimiter.Middleware())
	api.GET("/status", health.Status)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), a.auth.Register)
		auth.POST("/login", authLimiter.Middleware(), a.auth.Login)
	}

	// Protected routes
	requireAuth := middleware.AuthMiddleware(a.tokens, a.blacklist)
	auth.GET("/me", requireAuth, a.auth.Me)
	auth.POST("/logout", requireAuth, a.auth.Logout)

	contacts := api.Group("/contacts", requireAuth)
	{
		contacts.GET("", a.contacts.List)
		contacts.POST("", a.contacts.Create)
		contacts.DELETE("", a.contacts.DeleteAll)
		contacts.GET("/stats/count", a.contacts.Count)
		contacts.GET("/:id", a.contacts.Get)
		contacts.PUT("/:id", a.contacts.Update)
		contacts.DELETE("/:id", a.contacts.Delete)
	}

	session := api.Group("/session", requireAuth)
	{
		session.POST("/start", a.sessions.Start)
		session.GET("", a.sessions.List)
		session.GET("/active", a.sessions.Active)
		session.GET("/:id", a.sessions.Get)
		session.POST("/:id/stop", a.sessions.Stop)
		session.POST("/:id/location", a.sessions.UpdateLocation)
		session.POST("/:id/alert", a.sessions.TriggerAlert)
	}

	alerts := api.Group("/alerts", requireAuth)
	{
		alerts.GET("", a.alerts.List)
		alerts.DELETE("", a.alerts.DeleteAll)
		alerts.GET("/stats/overview", a.alerts.Overview)
		alerts.GET("/session/:sessionId", a.alerts.ListBySession)
		alerts.GET("/:id", a.alerts.Get)
		alerts.DELETE("/:id", a.alerts.Delete)
	}

	return router, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.Lg

	if err := utils.InitValidator(); err != nil {
		lg.Fatal("Failed to register validators", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := utils.ConnectMongo(ctx, utils.MongoOptions{
		URI:             cfg.Database.URI,
		MaxPoolSize:     cfg.Database.MaxPoolSize,
		MinPoolSize:     cfg.Database.MinPoolSize,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		RetryWrites:     cfg.Database.RetryWrites,
	})
	if err != nil {
		lg.Fatal("MongoDB connection failed", zap.Error(err))
	}
	lg.Info("Connected to MongoDB", zap.String("database", cfg.Database.DatabaseName))

	db := mongoClient.Database(cfg.Database.DatabaseName)
	if err := repository.SetupIndexes(ctx, db); err != nil {
		lg.Fatal("Failed to create indexes", zap.Error(err))
	}

	userRepo := repository.GetUserRepo(db)
	sessionRepo := repository.GetSessionRepo(db)
	contactRepo := repository.GetContactRepo(db)
	alertRepo := repository.GetAlertRepo(db)

	var blacklist services.TokenBlacklist = services.NoopBlacklist{}
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		bl, err := services.NewTokenBlacklist(cfg.RedisURL, lg)
		if err != nil {
			lg.Warn("Redis unavailable, logout will not revoke tokens", zap.Error(err))
		} else {
			blacklist = bl
			redisClient = bl.Client
			defer bl.Close()
		}
	}

	cipher, err := services.NewPhoneCipher(cfg.EncryptionKey)
	if err != nil {
		lg.Fatal("Invalid encryption key", zap.Error(err))
	}

	alertZone, err := time.LoadLocation(cfg.Watchdog.Timezone)
	if err != nil {
		lg.Fatal("Invalid alert timezone", zap.Error(err))
	}

	clock := scheduler.NewRealClock()
	sms := services.NewTwilioSMS(cfg.Twilio, lg)
	mail := services.NewSMTPMailer(cfg.Mail, lg)
	tokens := services.NewTokenService(cfg.JWT)

	dispatcher := usecase.NewDispatcher(usecase.DispatcherDeps{
		Sessions: sessionRepo,
		Contacts: contactRepo,
		Alerts:   alertRepo,
		Users:    services.NewUserCache(userRepo, 5*time.Minute),
		Crypto:   cipher,
		SMS:      sms,
		Email:    mail,
		Clock:    clock,
	}, usecase.DispatcherConfig{
		SendTimeout: cfg.Watchdog.SendTimeout,
		Location:    alertZone,
	}, lg.Named("dispatcher"))

	watchdog := usecase.NewWatchdog(sessionRepo, dispatcher, clock, cfg.Watchdog.GracePeriod, lg.Named("watchdog"))

	if err := watchdog.Reconcile(ctx); err != nil {
		lg.Error("Startup reconcile failed", zap.Error(err))
	}

	cron := scheduler.NewCron(alertZone, lg.Named("cron"))
	if _, err := cron.Every(cfg.Watchdog.ReconcileInterval, watchdog.ReconcileJob()); err != nil {
		lg.Fatal("Failed to schedule reconcile", zap.Error(err))
	}
	cron.Start()

	a := &app{
		cfg:       cfg,
		lg:        lg,
		mongo:     mongoClient,
		redis:     redisClient,
		tokens:    tokens,
		blacklist: blacklist,
		watchdog:  watchdog,
		sms:       sms,
		mail:      mail,

		sessionRepo: sessionRepo,

		auth:     handler.NewAuthHandler(usecase.NewUserService(userRepo, tokens, blacklist, clock, lg.Named("users"))),
		contacts: handler.NewContactHandler(usecase.NewContactService(contactRepo, cipher, clock, lg.Named("contacts"))),
		sessions: handler.NewSessionHandler(usecase.NewSessionService(sessionRepo, watchdog, dispatcher, clock, lg.Named("sessions"))),
		alerts:   handler.NewAlertHandler(usecase.NewAlertService(alertRepo)),
	}

	router, err := setupRouter(a)
	if err != nil {
		lg.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("Server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("HTTP shutdown failed", zap.Error(err))
	}
	cron.Stop()
	watchdog.Stop()
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		lg.Error("MongoDB disconnect failed", zap.Error(err))
	}
	lg.Info("Server stopped")
}
