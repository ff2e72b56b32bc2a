package config

import (
	"crypto/rsa"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	JWTPublicKey    *rsa.PublicKey
	DatabaseURL     string
	RedisAddress    string
	RedisPassword   string
	BackendBaseURL  string
	BackendAPIToken string
	ScorerBaseURL   string
	ScorerAPIToken  string
	AllowedOrigins  []string
	MutationTimeout time.Duration
	Port            string
}

func Load() *Config {
	publicKeyPath := os.Getenv("PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		publicKeyPath = "/etc/certs/public.pem"
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	backendURL := os.Getenv("PLATFORM_BACKEND_URL")
	if backendURL == "" {
		panic("PLATFORM_BACKEND_URL environment variable is required")
	}

	scorerURL := os.Getenv("MATCH_SCORER_URL")
	if scorerURL == "" {
		// The scorer usually lives behind the same gateway as the backend.
		scorerURL = backendURL
	}

	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	origins := []string{"*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	mutationTimeout := 15 * time.Second
	if raw := os.Getenv("MUTATION_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			mutationTimeout = d
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		JWTPublicKey:    publicKey,
		DatabaseURL:     dbURL,
		RedisAddress:    redisAddr,
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		BackendBaseURL:  backendURL,
		BackendAPIToken: os.Getenv("PLATFORM_BACKEND_TOKEN"),
		ScorerBaseURL:   scorerURL,
		ScorerAPIToken:  os.Getenv("MATCH_SCORER_TOKEN"),
		AllowedOrigins:  origins,
		MutationTimeout: mutationTimeout,
		Port:            port,
	}
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
