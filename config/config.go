package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Gemini grounding defaults
const GEMINI_ENDPOINT_BASE_V1BETA = "https://generativelanguage.googleapis.com/v1beta"
const GEMINI_DEFAULT_MODEL = "gemini-2.5-flash"

// Startup queries for the location fallback chain
const NEARBY_QUERY = "best restaurants nearby"
const FALLBACK_QUERY = "popular restaurants"

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const GROUNDING_RESPONSE_RESOURCE = "grounding_response.json"

// Config is everything read from the environment at startup.
type Config struct {
	Env  string
	Port string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeminiAPIKey       string
	GeminiEndpointBase string
	GeminiModel        string

	SearchCacheTTL        time.Duration
	SessionIdleTTL        time.Duration
	SessionReaperSchedule time.Duration
	SearchRatePerSecond   float64
	SearchRateBurst       int

	CORSAllowedOrigins []string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "8080"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiEndpointBase: getEnv("GEMINI_ENDPOINT_BASE", GEMINI_ENDPOINT_BASE_V1BETA),
		GeminiModel:        getEnv("GEMINI_MODEL", GEMINI_DEFAULT_MODEL),

		SearchCacheTTL:        time.Duration(getEnvInt("SEARCH_CACHE_TTL_MINUTES", 10)) * time.Minute,
		SessionIdleTTL:        time.Duration(getEnvInt("SESSION_IDLE_TTL_MINUTES", 60)) * time.Minute,
		SessionReaperSchedule: time.Duration(getEnvInt("SESSION_REAPER_SCHEDULE_MINUTES", 5)) * time.Minute,
		SearchRatePerSecond:   getEnvFloat("SEARCH_RATE_PER_SECOND", 2),
		SearchRateBurst:       getEnvInt("SEARCH_RATE_BURST", 5),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}
}

// IsProd reports whether the real grounding api should be used.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
