package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/traindiary/backend/internal/auth"
	"github.com/traindiary/backend/internal/config"
	"github.com/traindiary/backend/internal/db"
	"github.com/traindiary/backend/internal/exercises"
	"github.com/traindiary/backend/internal/foods"
	"github.com/traindiary/backend/internal/meals"
	"github.com/traindiary/backend/internal/middleware"
	"github.com/traindiary/backend/internal/progress"
	"github.com/traindiary/backend/internal/telemetry/metrics"
	"github.com/traindiary/backend/internal/telemetry/tracing"
	"github.com/traindiary/backend/internal/users"
	"github.com/traindiary/backend/internal/workouts"
	"github.com/traindiary/backend/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient *redis.Client
	authService *auth.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("traindiary", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "train-diary-backend", rdb)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient: rdb,
		authService: authService,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "train diary backend")
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	usersRepo := users.NewRepo(s.dbPool)
	usersHandler := users.NewHandler(usersRepo, s.authService)
	r.HandleFunc("/users", usersHandler.HandleList).Methods("GET", "OPTIONS").Name("list-users")
	r.HandleFunc("/users/{id}", usersHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
	r.HandleFunc("/users/{id}", usersHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-user")
	r.HandleFunc("/users/{id}", usersHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-user")

	// register and login are rate limited, the rest of the api is behind the
	// session token check
	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	authRouter := r.PathPrefix("/a").Subrouter()
	authRouter.Use(middleware.RateLimit(
		reqRateLimiter, "auth", s.config.LoginRateLimitAllowedPerMin, s.metricsManager,
	))
	authRouter.HandleFunc("/register", usersHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", usersHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", usersHandler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")

	exercisesHandler := exercises.NewHandler(exercises.NewRepo(s.dbPool))
	r.HandleFunc("/exercises", exercisesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")

	foodsHandler := foods.NewHandler(foods.NewRepo(s.dbPool))
	r.HandleFunc("/foods", foodsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-food")
	r.HandleFunc("/foods", foodsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-foods")
	r.HandleFunc("/foods/{id}", foodsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-food")
	r.HandleFunc("/foods/{id}", foodsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-food")
	r.HandleFunc("/foods/{id}", foodsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-food")

	mealsHandler := meals.NewHandler(meals.NewRepo(s.dbPool), s.metricsManager)
	r.HandleFunc("/meals", mealsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-meal")
	r.HandleFunc("/meals", mealsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-meals")
	r.HandleFunc("/meals/{id}", mealsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-meal")
	r.HandleFunc("/meals/{id}", mealsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-meal")
	r.HandleFunc("/meals/{id}/nutrition", mealsHandler.HandleNutrition).Methods("GET", "OPTIONS").Name("meal-nutrition")

	workoutsHandler := workouts.NewHandler(workouts.NewRepo(s.dbPool), s.metricsManager)
	r.HandleFunc("/sessions", workoutsHandler.HandleAddSession).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc("/sessions", workoutsHandler.HandleListSessions).Methods("GET", "OPTIONS").Name("list-sessions")
	r.HandleFunc("/sessions/{id}", workoutsHandler.HandleGetSession).Methods("GET", "OPTIONS").Name("get-session")
	r.HandleFunc("/sessions/{id}", workoutsHandler.HandleDeleteSession).Methods("DELETE", "OPTIONS").Name("delete-session")
	r.HandleFunc("/sessions/{id}/complete", workoutsHandler.HandleCompleteSession).Methods("POST", "OPTIONS").Name("complete-session")
	r.HandleFunc("/sessions/{id}/details", workoutsHandler.HandleAddDetail).Methods("POST", "OPTIONS").Name("new-session-detail")
	r.HandleFunc("/sessions/{id}/details", workoutsHandler.HandleListDetails).Methods("GET", "OPTIONS").Name("list-session-details")
	r.HandleFunc("/sessions/details/{detailId}/logs", workoutsHandler.HandleAddLog).Methods("POST", "OPTIONS").Name("new-exercise-log")
	r.HandleFunc("/sessions/details/{detailId}/logs", workoutsHandler.HandleListLogs).Methods("GET", "OPTIONS").Name("list-exercise-logs")

	progressService := progress.NewService(progress.NewRepo(s.dbPool), usersRepo)
	progressHandler := progress.NewHandler(progressService, s.metricsManager)
	r.HandleFunc("/summary", progressHandler.HandleGetSummary).Methods("GET", "OPTIONS").Name("get-summary")
	r.HandleFunc("/summary", progressHandler.HandleGenerateSummary).Methods("POST", "OPTIONS").Name("generate-summary")
	r.HandleFunc("/summary/list", progressHandler.HandleListSummaries).Methods("GET", "OPTIONS").Name("list-summaries")
	r.HandleFunc("/progress/daily", progressHandler.HandleDailyGRScores).Methods("GET", "OPTIONS").Name("daily-gr-scores")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
