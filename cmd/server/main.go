package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/dasanworld/concert-reserve/internal/config"
	"github.com/dasanworld/concert-reserve/internal/database"
	"github.com/dasanworld/concert-reserve/internal/handler"
	"github.com/dasanworld/concert-reserve/internal/queue"
	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/router"
	"github.com/dasanworld/concert-reserve/internal/service"
	"github.com/dasanworld/concert-reserve/internal/sweeper"
)

func main() {
	// .env is a local development convenience; in deployment the
	// variables come from the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	// Redis is optional: a nil client disables the response cache and
	// rate limiter but never the booking flow itself.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache and rate limiter disabled")
	}

	concertRepo := repository.NewConcertRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	concertSvc := service.NewConcertService(concertRepo, seatRepo)
	holdSvc := service.NewHoldService(db, seatRepo, concertRepo, cfg.HoldTokenSecret)
	reservationSvc := service.NewReservationService(db, seatRepo, reservationRepo, concertRepo, cfg.BcryptCost, cfg.HoldTokenSecret)
	sweepSvc := service.NewSweepService(seatRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterBrowse(e, handler.NewConcertHandler(concertSvc), config.LoadCacheConfig(), rdb)
	router.RegisterBooking(e, handler.NewSeatHandler(holdSvc), handler.NewReservationHandler(reservationSvc), config.LoadRateLimitConfig(), rdb)
	router.RegisterJobs(e, handler.NewJobsHandler(sweepSvc), cfg.CleanupJobSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background loops: the expired-hold sweeper and the reservation
	// event consumer. Both stop with the process.
	go sweeper.New(sweepSvc, cfg.SweepInterval).Start(ctx)
	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
