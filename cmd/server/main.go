package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Manikandan063/air-ambulance-backend/internal/booking"
	"github.com/Manikandan063/air-ambulance-backend/internal/config"
	"github.com/Manikandan063/air-ambulance-backend/internal/database"
	"github.com/Manikandan063/air-ambulance-backend/internal/handler"
	"github.com/Manikandan063/air-ambulance-backend/internal/middleware"
	"github.com/Manikandan063/air-ambulance-backend/internal/notify"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
	"github.com/Manikandan063/air-ambulance-backend/internal/router"
	"github.com/Manikandan063/air-ambulance-backend/internal/utils"
	"github.com/Manikandan063/air-ambulance-backend/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db, "migrations"); err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	patients := repository.NewPatientRepo(db)
	bookings := repository.NewBookingRepo(db)
	hospitals := repository.NewHospitalRepo(db)
	aircraft := repository.NewAircraftRepo(db)

	notifier := notify.NewService(users, cfg.AMQPURL)
	go notify.StartConsumer(cfg.AMQPURL)

	hub := ws.NewHub()
	bookingSvc := booking.NewService(bookings, patients, notifier, hub, nil)

	mailer := &utils.Mailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	authMW := middleware.Authenticate(cfg.JWTSecret, users)

	router.RegisterRoutes(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, mailer),
		Users:     handler.NewUserHandler(users),
		Patients:  handler.NewPatientHandler(patients),
		Bookings:  handler.NewBookingHandler(bookingSvc),
		BookingWS: handler.NewBookingWSHandler(hub),
		Hospitals: handler.NewHospitalHandler(hospitals),
		Aircraft:  handler.NewAircraftHandler(aircraft),
		Dashboard: handler.NewDashboardHandler(bookingSvc),
		Health:    handler.NewHealthHandler(db),
	}, authMW, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
