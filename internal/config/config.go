package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	BLEAdapter    string
	ScanQueueSize int

	// Periodic scan windows. ScanIdleWindow of 0 means continuous scanning.
	ScanActiveWindow time.Duration
	ScanIdleWindow   time.Duration

	// MQTT bridge. An empty broker disables the MQTT sink.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string

	// SQLite archive. An empty path disables the archive sink.
	SQLiteDriver    string
	SQLiteDSN       string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	bleAdapter := strings.TrimSpace(os.Getenv("BLE_ADAPTER"))
	if bleAdapter == "" {
		bleAdapter = "hci0"
	}

	scanQueueSizeStr := strings.TrimSpace(os.Getenv("SCAN_QUEUE_SIZE"))
	if scanQueueSizeStr == "" {
		scanQueueSizeStr = "256"
	}
	scanQueueSize, err := strconv.Atoi(scanQueueSizeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SCAN_QUEUE_SIZE %q: %w", scanQueueSizeStr, err)
	}
	if scanQueueSize <= 0 {
		return Config{}, fmt.Errorf("SCAN_QUEUE_SIZE must be positive, got %d", scanQueueSize)
	}

	scanActiveStr := strings.TrimSpace(os.Getenv("SCAN_ACTIVE_WINDOW"))
	if scanActiveStr == "" {
		scanActiveStr = "30s"
	}
	scanActive, err := time.ParseDuration(scanActiveStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SCAN_ACTIVE_WINDOW %q: %w", scanActiveStr, err)
	}
	if scanActive <= 0 {
		return Config{}, fmt.Errorf("SCAN_ACTIVE_WINDOW must be positive, got %v", scanActive)
	}

	scanIdleStr := strings.TrimSpace(os.Getenv("SCAN_IDLE_WINDOW"))
	if scanIdleStr == "" {
		scanIdleStr = "0s"
	}
	scanIdle, err := time.ParseDuration(scanIdleStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SCAN_IDLE_WINDOW %q: %w", scanIdleStr, err)
	}
	if scanIdle < 0 {
		return Config{}, fmt.Errorf("SCAN_IDLE_WINDOW must not be negative, got %v", scanIdle)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "blesensed"
	}

	mqttTopicPrefix := strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX"))
	if mqttTopicPrefix == "" {
		mqttTopicPrefix = "sensors"
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))

	maxOpenConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS"))
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS"))
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:           appEnv,
		LogLevel:         level,
		HTTPAddr:         httpAddr,
		BLEAdapter:       bleAdapter,
		ScanQueueSize:    scanQueueSize,
		ScanActiveWindow: scanActive,
		ScanIdleWindow:   scanIdle,
		MQTTBroker:       mqttBroker,
		MQTTPort:         mqttPort,
		MQTTClientID:     mqttClientID,
		MQTTTopicPrefix:  mqttTopicPrefix,
		SQLiteDriver:     driver,
		SQLiteDSN:        dsn,
		SQLitePath:       path,
		MaxOpenConns:     maxOpenConns,
		MaxIdleConns:     maxIdleConns,
		ConnMaxLifetime:  connMaxLifetime,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
