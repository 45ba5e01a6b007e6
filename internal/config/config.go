package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Realtime RealtimeConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	realtime, err := loadRealtimeConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Realtime: realtime}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RealtimeConfig 描述上游实时语音服务的连接配置。
type RealtimeConfig struct {
	APIKey           string
	URL              string
	Model            string
	HandshakeTimeout time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c RealtimeConfig) Enabled() bool {
	return c.APIKey != ""
}

// Endpoint returns the dial URL with the model selector attached.
func (c RealtimeConfig) Endpoint() string {
	if c.Model == "" || strings.Contains(c.URL, "model=") {
		return c.URL
	}
	sep := "?"
	if strings.Contains(c.URL, "?") {
		sep = "&"
	}
	return c.URL + sep + "model=" + url.QueryEscape(c.Model)
}

func loadRealtimeConfig() (RealtimeConfig, error) {
	timeout, err := parseOptionalIntEnv("REALTIME_HANDSHAKE_TIMEOUT")
	if err != nil {
		return RealtimeConfig{}, err
	}
	timeoutSeconds := 30 // 默认30秒
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return RealtimeConfig{
		APIKey:           strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		URL:              getEnvOrDefault("REALTIME_URL", "wss://api.openai.com/v1/realtime"),
		Model:            getEnvOrDefault("REALTIME_MODEL", "gpt-4o-realtime-preview-2024-10-01"),
		HandshakeTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
