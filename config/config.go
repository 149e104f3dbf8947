package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultEmbeddingDim     = 512
	defaultThreshold        = 0.45
	defaultStorageTimeoutMs = 5000
)

type Config struct {
	// database path (sqlite file)
	DatabasePath string

	// uploads storage (enrollment reference photos)
	UploadsPath string

	// embedding dimensionality; every stored and queried vector must have
	// exactly this many float32 elements
	EmbeddingDim int

	// match acceptance threshold used until a persisted override exists
	DefaultThreshold float64

	// bound on any single storage operation
	StorageTimeout time.Duration

	// face extraction model paths (DNN)
	FaceDetectConfigPath string
	FaceDetectModelPath  string
	FaceEmbedModelPath   string

	// HTTP listen port
	Port string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "attendance.db")

	uploads := getEnvOrDefault("UPLOADS_PATH", filepath.Join(".", "uploads"))
	absUploads, err := filepath.Abs(uploads)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for uploads directory '%s': %w", uploads, err)
	}

	embeddingDim := getEnvIntOrDefault("EMBEDDING_DIM", defaultEmbeddingDim)

	threshold := getEnvFloatOrDefault("DEFAULT_THRESHOLD", defaultThreshold)
	if threshold < 0 || threshold > 1 {
		log.Printf("Warning: DEFAULT_THRESHOLD %g is outside [0, 1]. Using default %g", threshold, defaultThreshold)
		threshold = defaultThreshold
	}

	timeoutMs := getEnvIntOrDefault("STORAGE_TIMEOUT_MS", defaultStorageTimeoutMs)

	faceDetectConfig := getEnvOrDefault("FACE_DETECT_CONFIG_PATH", "./models/deploy.prototxt.txt")
	faceDetectModel := getEnvOrDefault("FACE_DETECT_MODEL_PATH", "./models/res10_300x300_ssd_iter_140000_fp16.caffemodel")
	faceEmbedModel := getEnvOrDefault("FACE_EMBED_MODEL_PATH", "./models/arcface.onnx")

	cfg := Config{
		DatabasePath:         dbPath,
		UploadsPath:          absUploads,
		EmbeddingDim:         embeddingDim,
		DefaultThreshold:     threshold,
		StorageTimeout:       time.Duration(timeoutMs) * time.Millisecond,
		FaceDetectConfigPath: faceDetectConfig,
		FaceDetectModelPath:  faceDetectModel,
		FaceEmbedModelPath:   faceEmbedModel,
		Port:                 getEnvOrDefault("PORT", "8070"),
	}

	return cfg, nil
}
