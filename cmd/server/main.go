// @title           Travel Guide API
// @version         1.0
// @description     Generates AI travel guides enriched with weather, traffic and booking guidance.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripwise/travel-guide/internal/api"
	"github.com/tripwise/travel-guide/internal/api/handler"
	"github.com/tripwise/travel-guide/internal/core/ports"
	"github.com/tripwise/travel-guide/internal/core/service"
	"github.com/tripwise/travel-guide/internal/infrastructure/config"
	"github.com/tripwise/travel-guide/internal/infrastructure/db/memory"
	mongodb "github.com/tripwise/travel-guide/internal/infrastructure/db/mongo"
	redisdb "github.com/tripwise/travel-guide/internal/infrastructure/db/redis"
	"github.com/tripwise/travel-guide/internal/infrastructure/db/sqlite"
	"github.com/tripwise/travel-guide/internal/infrastructure/events"
	"github.com/tripwise/travel-guide/internal/infrastructure/geocode"
	"github.com/tripwise/travel-guide/internal/infrastructure/queue"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient/amap"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient/deepseek"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient/feishu"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient/openweather"
	"github.com/tripwise/travel-guide/internal/infrastructure/restclient/qweather"
	"github.com/tripwise/travel-guide/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "travel-guide",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Check{}
	retry := restclient.DefaultRetryPolicy()

	// --- Vendors ---
	llm := deepseek.NewClient(deepseek.Config{
		APIKey:            cfg.DeepSeek.APIKey,
		BaseURL:           cfg.DeepSeek.BaseURL,
		Model:             cfg.DeepSeek.Model,
		RequestsPerSecond: cfg.DeepSeek.RequestsPerSecond,
		Retry:             retry,
	}, log)

	var routes ports.RouteProvider
	var liveGeocoders []ports.Geocoder
	if cfg.Amap.APIKey != "" {
		amapClient := amap.NewClient(amap.Config{APIKey: cfg.Amap.APIKey, Retry: retry}, log)
		routes = amapClient
		liveGeocoders = append(liveGeocoders, amapClient)
	} else {
		log.Warn().Msg("AMAP_API_KEY not set, traffic falls back to static advice")
	}

	var weatherProvider ports.WeatherProvider
	switch cfg.WeatherProvider {
	case config.WeatherOpenWeather:
		ow := openweather.NewClient(openweather.Config{APIKey: cfg.Weather.APIKey, Retry: retry}, log)
		weatherProvider = ow
		liveGeocoders = append(liveGeocoders, ow)
	default:
		qw := qweather.NewClient(qweather.Config{APIKey: cfg.Weather.APIKey, Retry: retry}, log)
		weatherProvider = qw
		liveGeocoders = append(liveGeocoders, qw)
	}

	// --- Redis: sessions + geocode cache ---
	var sessions ports.SessionStore = memory.NewSessionStore()
	var geoCache geocode.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rdb.Close()
		sessions = redisdb.NewSessionStore(rdb)
		geoCache = redisdb.NewGeocodeCache(rdb)
		checks["redis"] = redisdb.Check(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
	}

	geocoder := geocode.NewChain(geoCache, log, liveGeocoders...)

	// --- Trip and user store ---
	var (
		trips ports.TripRepository
		users ports.UserRepository
	)
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.SQLitePath).Msg("sqlite open failed")
		}
		if err := sqlite.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("sqlite migrate failed")
		}
		trips = sqlite.NewTripStore(db)
		users = sqlite.NewUserStore(db)
	default:
		fs := feishu.NewClient(feishu.Config{
			AppID:     cfg.Feishu.AppID,
			AppSecret: cfg.Feishu.AppSecret,
			Retry:     retry,
		}, log)
		trips = feishu.NewTripStore(fs,
			feishu.Table{AppToken: cfg.Feishu.RequestAppToken, TableID: cfg.Feishu.RequestTableID},
			feishu.Table{AppToken: cfg.Feishu.GuideAppToken, TableID: cfg.Feishu.GuideTableID},
			feishu.Table{AppToken: cfg.Feishu.UserAppToken, TableID: cfg.Feishu.UserTableID},
			log)
		users = feishu.NewUserStore(fs,
			feishu.Table{AppToken: cfg.Feishu.UserAppToken, TableID: cfg.Feishu.UserTableID},
			log)
	}

	// --- Mongo archive ---
	var archive ports.GuideArchive
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		defer mongodb.Disconnect(client)
		ga := mongodb.NewGuideArchive(db)
		if err := ga.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("guide archive indexes not created")
		}
		archive = ga
		checks["mongo"] = mongodb.Check(client)
	}

	// --- Event bus ---
	var publisher ports.EventPublisher = events.NewLogPublisher(log)
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL, "travel-guide", log)
		if err != nil {
			log.Error().Err(err).Msg("nats connect failed, events will only be logged")
		} else {
			defer nc.Close()
			publisher = nc
			checks["nats"] = nc.Ping
		}
	}

	// The dispatcher outlives the signal context so events enqueued by
	// in-flight requests are still archived during shutdown.
	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, archive, publisher, log)
	dispatcher.Start(context.Background())

	// --- Services ---
	authService := service.NewAuthService(users, sessions, publisher, cfg.JWTSecret, cfg.SessionTTL, log)
	weatherService := service.NewWeatherService(geocoder, weatherProvider, log)
	bookingService := service.NewBookingService(llm, log)
	preferenceService := service.NewPreferenceService(llm, log)

	trafficService := service.NewTrafficService(geocoder, routes, log)

	guideService := service.NewGuideService(service.GuideDeps{
		LLM:     llm,
		Store:   trips,
		Weather: weatherService,
		Traffic: trafficService,
		Booking: bookingService,
		Archive: archive,
		Queue:   dispatcher,
	}, log)

	e := api.NewRouter(api.Deps{
		Auth:           authService,
		Guides:         guideService,
		Weather:        weatherService,
		Traffic:        trafficService,
		Booking:        bookingService,
		Preferences:    preferenceService,
		Sessions:       sessions,
		JWTSecret:      cfg.JWTSecret,
		Checks:         checks,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Log:            logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		// Guide generation may take a full LLM timeout plus enrichment.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Backend).Str("weather", weatherProvider.Name()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if err := dispatcher.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("dispatcher did not drain before the shutdown deadline")
	}
	log.Info().Msg("stopped")
}
