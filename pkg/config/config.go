package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	DBDriver                string // postgres or sqlite
	PostgresConnStr         string
	SQLitePath              string
	MongoURI                string
	MongoDatabase           string
	JWTSecret               string
	AuthProvider            string // jwt or firebase
	FirebaseCredentialsPath string
	NatsURL                 string
	FeedMaxFanout           int
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		DBDriver:                getEnv("DB_DRIVER", "postgres"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:              getEnv("SQLITE_PATH", "feed.db"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		AuthProvider:            getEnv("AUTH_PROVIDER", "jwt"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		NatsURL:                 getEnv("NATS_URL", ""),
		FeedMaxFanout:           getEnvInt("FEED_MAX_FANOUT", 32),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
