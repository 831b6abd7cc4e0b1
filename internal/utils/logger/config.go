// internal/utils/logger/config.go
package logger

// Config controls log level and file rotation.
type Config struct {
	LogFile     string // empty disables the file sink
	MaxSize     int    // megabytes
	MaxAge      int    // days
	MaxBackups  int    // rotated files kept
	Compress    bool   // gzip rotated files
	Development bool   // debug level, development encoder
	BufferSize  int    // recent entries kept in memory; 0 disables
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "logs/tokenboard.log",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
		BufferSize: DefaultBufferSize,
	}
}
