package devserver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Env is the environment a generated project runs with.
type Env struct {
	Port     int
	MongoURI string
	LogLevel string
}

// LoadEnv reads dir/.env and the process environment. Process variables win
// over the file, and a missing file is not an error. PORT falls back to
// defaultPort when absent or not a valid port number.
func LoadEnv(dir string, defaultPort int) (Env, error) {
	path := filepath.Join(dir, ".env")
	file, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("load %s: %w", path, err)
	}

	return envFrom(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return file[key]
	}, defaultPort), nil
}

func envFrom(getenv func(string) string, defaultPort int) Env {
	port, err := strconv.Atoi(strings.TrimSpace(getenv("PORT")))
	if err != nil || port < 0 || port > 65535 {
		port = defaultPort
	}
	return Env{
		Port:     port,
		MongoURI: strings.TrimSpace(getenv("MONGO_URI")),
		LogLevel: strings.TrimSpace(getenv("LOG_LEVEL")),
	}
}
