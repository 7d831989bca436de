package environment

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	envFileDevelopment = ".env.development"
	envFileProduction  = ".env.production"

	defaultRecordingsPath = "./recordings"
	defaultHTTPAddress    = ":8088"
)

// LoadEnvironmentVariables loads the .env file appropriate for APP_ENV and
// fills in defaults for anything the operator left unset. Mirrors the
// plugin's documented configuration surface: `path` (required in the
// original janus.cfg, defaulted here) and `events` (§6).
func LoadEnvironmentVariables() {
	envFile := envFileProduction
	if os.Getenv(AppEnv) == "development" {
		envFile = envFileDevelopment
	}

	if err := godotenv.Load(envFile); err != nil {
		log.Printf("Environment: Could not load `%s`: %v", envFile, err)
	}

	setDefaultEnvironmentVariables()
}

func setDefaultEnvironmentVariables() {
	if os.Getenv(RecordingsPath) == "" {
		if err := os.Setenv(RecordingsPath, defaultRecordingsPath); err != nil {
			log.Panic("Environment: could not set default RECORDINGS_PATH")
		}
	}

	if os.Getenv(HTTPAddress) == "" {
		if err := os.Setenv(HTTPAddress, defaultHTTPAddress); err != nil {
			log.Panic("Environment: could not set default HTTP_ADDRESS")
		}
	}
}

// RecordingsDir returns the directory recordings are read from and written
// to, creating it if it does not yet exist.
func RecordingsDir() string {
	path := os.Getenv(RecordingsPath)
	if path == "" {
		path = defaultRecordingsPath
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Println("Environment: could not create recordings directory:", err)
	}

	return path
}

// EventsAreEnabled reports whether observability events should be emitted,
// per the `events` configuration option in §6.
func EventsAreEnabled() bool {
	return os.Getenv(EventsEnabled) == "true"
}
