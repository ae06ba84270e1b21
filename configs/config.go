package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	DBName       string
	DBNameTest   string
	RedisHost    string
	RedisPort    int
	ListenAddr   string
	JWTSecret    string
	TokenTTL     time.Duration
	QueryTimeout time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Only log outside of test runs
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432
	}

	redisPort, err := strconv.Atoi(os.Getenv("REDIS_PORT"))
	if err != nil {
		redisPort = 6379
	}

	ttlMinutes, err := strconv.Atoi(os.Getenv("TOKEN_TTL_MINUTES"))
	if err != nil || ttlMinutes <= 0 {
		ttlMinutes = 30
	}

	queryTimeout, err := strconv.Atoi(os.Getenv("QUERY_TIMEOUT_SECONDS"))
	if err != nil || queryTimeout <= 0 {
		queryTimeout = 5
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":3004"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "secret"
		if os.Getenv("GO_ENV") != "test" {
			log.Println("JWT_SECRET not set, using insecure default")
		}
	}

	return Config{
		DBHost:       os.Getenv("DB_HOST"),
		DBPort:       dbPort,
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBNameTest:   os.Getenv("DB_NAME_TEST"),
		RedisHost:    os.Getenv("REDIS_HOST"),
		RedisPort:    redisPort,
		ListenAddr:   listenAddr,
		JWTSecret:    secret,
		TokenTTL:     time.Duration(ttlMinutes) * time.Minute,
		QueryTimeout: time.Duration(queryTimeout) * time.Second,
	}
}
