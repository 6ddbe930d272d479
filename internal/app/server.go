// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"lsa-service/internal/config"
	"lsa-service/internal/db"
	"lsa-service/internal/gateway/payhere"
	billingHandler "lsa-service/internal/handlers/billing"
	decisionHandler "lsa-service/internal/handlers/decision"
	offboardingHandler "lsa-service/internal/handlers/offboarding"
	wsHandler "lsa-service/internal/handlers/websocket"
	"lsa-service/internal/middleware"
	"lsa-service/internal/pkg/jwt"
	"lsa-service/internal/pkg/session"
	"lsa-service/internal/repository/postgres"
	"lsa-service/internal/repository/redisstore"
	billingService "lsa-service/internal/service/billing"
	offboardingService "lsa-service/internal/service/offboarding"
	"lsa-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	httpd  *http.Server
	cancel context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected successfully")

	// ----- JWT Verifier -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Session Manager -----
	sessionManager := session.NewManager(redisClient)

	// ----- Repositories -----
	txManager := postgres.NewTxManager(pool)
	stateRepo := postgres.NewSubscriptionStateRepo(pool)
	attemptRepo := postgres.NewPaymentAttemptRepo(pool)
	staffRepo := postgres.NewStaffRepo(pool)
	requestRepo := postgres.NewOffboardingRequestRepo(pool)
	draftStore := redisstore.NewDraftStore(redisClient)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(verifier, sessionManager)
	go hub.Run(ctx)

	// ----- Payment Gateway -----
	gatewayClient := payhere.NewClient(payhere.Config{
		BaseURL:        s.cfg.GatewayBaseURL,
		MerchantID:     s.cfg.GatewayMerchant,
		MerchantSecret: s.cfg.GatewaySecret,
		Timeout:        s.cfg.GatewayTimeout,
	}, logger)

	// ----- Services -----
	paymentService := billingService.NewPaymentService(
		stateRepo,
		attemptRepo,
		gatewayClient,
		hub,
		billingService.SystemClock(),
		logger,
	)
	offService := offboardingService.NewOffboardingService(
		staffRepo,
		requestRepo,
		draftStore,
		paymentService,
		txManager,
		hub,
		offboardingService.SystemClock(),
		logger,
	)

	// ----- Handlers -----
	paymentHandlerInst := billingHandler.NewPaymentHandler(paymentService, logger)
	offboardingHandlerInst := offboardingHandler.NewOffboardingHandler(offService, logger)
	decisionHandlerInst := decisionHandler.NewDecisionHandler(paymentService, offService, logger)
	wsHandlerInst := wsHandler.NewWSHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier, sessionManager, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		PaymentHandler:     paymentHandlerInst,
		OffboardingHandler: offboardingHandlerInst,
		DecisionHandler:    decisionHandlerInst,
		WSHandler:          wsHandlerInst,
		AuthMiddleware:     authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	s.httpd = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener and the websocket hub.
func (s *Server) Shutdown(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpd != nil {
		if err := s.httpd.Shutdown(ctx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}
}
