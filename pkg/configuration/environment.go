package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/roster-import/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory. When none of
// them exist there, it walks up to the nearest directory containing a go.mod
// and retries, so tests running from package directories still pick up the
// repository-root .env files.
func LoadEnv(envFiles []string) (int, error) {
	n, err := loadEnvFrom("", envFiles)
	if n > 0 || err != nil {
		return n, err
	}
	root, ok := findGoModRoot()
	if !ok {
		return 0, nil
	}
	return loadEnvFrom(root, envFiles)
}

func loadEnvFrom(dir string, envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		path := file
		if dir != "" {
			path = filepath.Join(dir, file)
		}
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func findGoModRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type SPARQLOptions struct {
	// Endpoint accepts both SPARQL queries and updates (SPARQL 1.1 protocol).
	Endpoint string        `env:"SPARQL_ENDPOINT" envDefault:"http://localhost:8890/sparql"`
	Timeout  time.Duration `env:"SPARQL_TIMEOUT" envDefault:"30s"`
}

type RosterOptions struct {
	// ResourceBaseURI is the base under which new person/account/identifier
	// URIs are minted. The service cannot start without it.
	ResourceBaseURI string `env:"RESOURCE_BASE_URI"`
	Delimiter       string `env:"CSV_DELIMITER" envDefault:";"`
	HeaderRows      int    `env:"CSV_HEADER_ROWS" envDefault:"1"`
}

func (o *RosterOptions) Validate() error {
	if strings.TrimSpace(o.ResourceBaseURI) == "" {
		return fmt.Errorf("RESOURCE_BASE_URI is required to mint entity identifiers")
	}
	if !strings.HasSuffix(o.ResourceBaseURI, "/") {
		o.ResourceBaseURI += "/"
	}
	switch o.Delimiter {
	case ",", ";":
	default:
		return fmt.Errorf("invalid CSV_DELIMITER=%q (expected ',' or ';')", o.Delimiter)
	}
	if o.HeaderRows < 0 {
		return fmt.Errorf("CSV_HEADER_ROWS must be non-negative, got %d", o.HeaderRows)
	}
	return nil
}

func (o *RosterOptions) DelimiterRune() rune {
	return rune(o.Delimiter[0])
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int  `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"100"`
}

func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	return nil
}

type Configuration struct {
	SPARQL     SPARQLOptions
	Roster     RosterOptions
	Prometheus PrometheusOptions
	RateLimit  RateLimitOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	MaxUploadSize    int64  `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`
	MaxUploadMemory  int64  `env:"MAX_UPLOAD_MEMORY" envDefault:"33554432"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS" envDefault:"*"`
	// Service will look for this header in the request, if it's not present, it will generate a random uuidv4
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Service will look for this header in the request, if it's not present, it will use request.RemoteAddr
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Roster.Validate(); err != nil {
		return fmt.Errorf("roster configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
