package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"magazin-backend/config"
	"magazin-backend/database"
	"magazin-backend/handlers"
	customMiddleware "magazin-backend/middleware"
	"magazin-backend/routes"
	"magazin-backend/utils"
)

func main() {
	config.LoadEnv()

	client, db, err := database.Connect(
		config.GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		config.GetEnv("MONGODB_NAME", "magazin"),
	)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Disconnect(client)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(customMiddleware.Metrics)

	h := handlers.New(client, db, utils.NewMailerFromEnv(), config.UploadDir())
	routes.SetupRoutes(e, h)

	port := config.GetEnv("PORT", "5000")
	go func() {
		if err := e.Start(":" + port); err != nil {
			log.Println("Server stopped:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}
}
