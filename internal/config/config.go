package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"mindlog/internal/crypto"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte
	Development bool

	// Required only with a database; the memory store keeps plaintext.
	EncryptionKey []byte
	BlindIndexKey []byte
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		Development: getenv("APP_ENV", "production") == "development",
	}
	if len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		return cfg, nil
	}

	var err error
	if cfg.EncryptionKey, err = decodeKey("ENCRYPTION_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.BlindIndexKey, err = decodeKey("BLIND_INDEX_KEY"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeKey(name string) ([]byte, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return nil, fmt.Errorf("%s is required when DATABASE_URL is set", name)
	}
	key, err := crypto.DecodeKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
	}
	return key, nil
}
