package internal

import (
	"fmt"
	"time"
)

// Config is the server-side environment. Every knob has a default so a bare
// `go run ./cmd` starts a working relay.
type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=4600"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	HistoryLimit         int           `env:"HISTORY_LIMIT,default=100"`
	DedupRetention       time.Duration `env:"DEDUP_RETENTION,default=5m"`
	DedupSweepInterval   time.Duration `env:"DEDUP_SWEEP_INTERVAL,default=30s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=1m"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`

	ModerationEnabled bool   `env:"MODERATION_ENABLED,default=false"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`
}

// CharacterRune enforces that the replacement variable holds exactly one
// character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
