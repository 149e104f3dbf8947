package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/faceattend/attendbackend/config"
	"github.com/faceattend/attendbackend/database"
	"github.com/faceattend/attendbackend/handlers"
	"github.com/faceattend/attendbackend/media"
	"github.com/faceattend/attendbackend/repository"
	"github.com/faceattend/attendbackend/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.UploadsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}

	identityRepo := repository.NewIdentityRepository(db, cfg.EmbeddingDim)
	eventRepo, err := repository.NewEventRepository(db)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize event repository: %v", err)
	}
	settingsRepo := repository.NewSettingsRepository(db)

	thresholdService := services.NewThresholdService(settingsRepo, cfg.DefaultThreshold, cfg.StorageTimeout)
	if err := thresholdService.Load(context.Background()); err != nil {
		log.Fatalf("FATAL: Failed to load similarity threshold: %v", err)
	}
	recognitionService := services.NewRecognitionService(identityRepo, thresholdService, cfg.StorageTimeout)
	attendanceService := services.NewAttendanceService(eventRepo, cfg.StorageTimeout)

	photoStore, err := media.NewPhotoStore(cfg.UploadsPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize photo store: %v", err)
	}

	extractor := media.NewFaceExtractor(cfg.FaceDetectConfigPath, cfg.FaceDetectModelPath, cfg.FaceEmbedModelPath, cfg.EmbeddingDim)
	defer extractor.Close()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing reference photos in: %s", cfg.UploadsPath)
	log.Printf("Embedding dimensionality: %d", cfg.EmbeddingDim)
	log.Printf("Similarity threshold in effect: %.4f", thresholdService.Get())

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	userHandler := &handlers.UserHandler{Identities: identityRepo, Extractor: extractor, Photos: photoStore}
	recognitionHandler := &handlers.RecognitionHandler{Recognizer: recognitionService}
	attendanceHandler := &handlers.AttendanceHandler{
		Attendance: attendanceService,
		Recognizer: recognitionService,
		Threshold:  thresholdService,
	}
	settingsHandler := &handlers.SettingsHandler{Threshold: thresholdService}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","service":"attendance backend"}`)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Post("/vector", userHandler.CreateUserFromVector)
			r.Delete("/{user_id}", userHandler.DeleteUser)
		})

		r.Get("/face/feature/{user_id}", userHandler.GetUserFeature)
		r.Post("/identify", recognitionHandler.Identify)

		r.Post("/attendance", attendanceHandler.CheckIn)
		r.Post("/report", attendanceHandler.Report)
		r.Get("/logs", attendanceHandler.ListLogs)

		r.Route("/settings/threshold", func(r chi.Router) {
			r.Get("/", settingsHandler.GetThreshold)
			r.Put("/", settingsHandler.PutThreshold)
		})
	})

	r.Get("/static/*", handlers.AssetServer(cfg.UploadsPath, "/static/"))
	log.Printf("Registered photo server at /static/*")

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
