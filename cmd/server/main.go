package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/msoylu/seatplanner/internal/config"
	"github.com/msoylu/seatplanner/internal/database"
	"github.com/msoylu/seatplanner/internal/handler"
	"github.com/msoylu/seatplanner/internal/middleware"
	"github.com/msoylu/seatplanner/internal/model"
	"github.com/msoylu/seatplanner/internal/queue"
	"github.com/msoylu/seatplanner/internal/repository"
	"github.com/msoylu/seatplanner/internal/router"
	"github.com/msoylu/seatplanner/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	seatRepo := repository.NewSeatRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Materialise the configured seat layout.  Idempotent, so restarts
	// and layout additions are safe.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seatRepo.Seed(ctx, seatsFromLayout(cfg.SeatLayout)); err != nil {
		log.Fatalf("seat seed failed: %v", err)
	}
	cancel()

	engine := service.NewEngine(seatRepo, customerRepo, assignmentRepo)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Seats:       handler.NewSeatHandler(seatRepo),
		Assignments: handler.NewAssignmentHandler(engine),
		Customers:   handler.NewCustomerHandler(customerRepo, assignmentRepo),
		Reports:     handler.NewReportHandler(reportRepo),
	}
	mw := router.Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}
	router.Register(e, h, mw, cfg.JWTSecret)

	// The audit consumer reconnects on its own; run it for the lifetime
	// of the server.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seatsFromLayout expands the configured rows into individual seats.
func seatsFromLayout(rows []config.SeatRow) []model.Seat {
	var seats []model.Seat
	for _, row := range rows {
		for n := 1; n <= row.Count; n++ {
			seats = append(seats, model.Seat{
				RowLabel:   row.Label,
				SeatNumber: uint32(n),
				SeatType:   row.Type,
			})
		}
	}
	return seats
}
