// Package config loads the gridviz server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the server configuration.
type Config struct {
	Addr       string        // Address the HTTP server listens on
	GinMode    string        // Mode for the Gin framework (release, debug, test)
	LogLevel   logrus.Level  // Minimum level written by the server logger
	GridWidth  int           // Width used when a create request omits it
	GridHeight int           // Height used when a create request omits it
	StepDelay  time.Duration // Pause between expansions on a streamed search
	CellSize   float64       // World units per cell when rasterizing obstacles

	MaxWidth        int           // Widest grid a create request may ask for
	MaxHeight       int           // Tallest grid a create request may ask for
	MaxScatterSteps int           // Cap on clusters times steps of a random wall scatter
	WriteTimeout    time.Duration // Deadline for each frame written to a stream
}

// Load reads a .env file from the working directory when there is one and
// then builds a Config from the environment, falling back to defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	level, err := logrus.ParseLevel(getEnvWithDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	width, err := getEnvAsPositiveInt("GRID_WIDTH", 50)
	if err != nil {
		return Config{}, err
	}
	height, err := getEnvAsPositiveInt("GRID_HEIGHT", 50)
	if err != nil {
		return Config{}, err
	}
	maxWidth, err := getEnvAsPositiveInt("GRID_MAX_WIDTH", 1000)
	if err != nil {
		return Config{}, err
	}
	maxHeight, err := getEnvAsPositiveInt("GRID_MAX_HEIGHT", 1000)
	if err != nil {
		return Config{}, err
	}
	if width > maxWidth || height > maxHeight {
		return Config{}, fmt.Errorf("GRID_WIDTH and GRID_HEIGHT must fit GRID_MAX_WIDTH and GRID_MAX_HEIGHT, got %dx%d over %dx%d", width, height, maxWidth, maxHeight)
	}
	maxScatter, err := getEnvAsPositiveInt("SCATTER_MAX_STEPS", 1_000_000)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := time.ParseDuration(getEnvWithDefault("STREAM_WRITE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("STREAM_WRITE_TIMEOUT: %w", err)
	}
	if writeTimeout <= 0 {
		return Config{}, fmt.Errorf("STREAM_WRITE_TIMEOUT must be positive, got %v", writeTimeout)
	}
	delay, err := time.ParseDuration(getEnvWithDefault("STEP_DELAY", "10ms"))
	if err != nil {
		return Config{}, fmt.Errorf("STEP_DELAY: %w", err)
	}
	if delay < 0 {
		return Config{}, fmt.Errorf("STEP_DELAY must not be negative, got %v", delay)
	}
	cellSize, err := strconv.ParseFloat(getEnvWithDefault("CELL_SIZE", "20"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("CELL_SIZE: %w", err)
	}
	if cellSize <= 0 {
		return Config{}, fmt.Errorf("CELL_SIZE must be positive, got %v", cellSize)
	}

	return Config{
		Addr:       getEnvWithDefault("GRIDVIZ_ADDR", ":8080"),
		GinMode:    getEnvWithDefault("GIN_MODE", "release"),
		LogLevel:   level,
		GridWidth:  width,
		GridHeight: height,
		StepDelay:  delay,
		CellSize:   cellSize,

		MaxWidth:        maxWidth,
		MaxHeight:       maxHeight,
		MaxScatterSteps: maxScatter,
		WriteTimeout:    writeTimeout,
	}, nil
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsPositiveInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, value)
	}
	return value, nil
}
