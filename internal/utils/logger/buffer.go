package logger

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultBufferSize is the number of recent entries kept in memory.
const DefaultBufferSize = 200

// Entry is one log line held by a Buffer.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Buffer is a thread-safe ring of the most recent log entries.
type Buffer struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	wrapped bool
	total   uint64
}

func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{ring: make([]Entry, size)}
}

// Add stores e, overwriting the oldest entry once the ring is full.
func (b *Buffer) Add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ring[b.next] = e
	b.next = (b.next + 1) % len(b.ring)
	if b.next == 0 {
		b.wrapped = true
	}
	b.total++
}

// Recent returns up to limit of the newest entries, oldest first. A limit
// of zero or less returns everything held.
func (b *Buffer) Recent(limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	held := b.next
	start := 0
	if b.wrapped {
		held = len(b.ring)
		start = b.next
	}
	if limit > 0 && limit < held {
		start += held - limit
		held = limit
	}

	out := make([]Entry, 0, held)
	for i := 0; i < held; i++ {
		out = append(out, b.ring[(start+i)%len(b.ring)])
	}
	return out
}

// Stats returns how many entries were ever added and how many are held.
func (b *Buffer) Stats() (total uint64, held int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.wrapped {
		return b.total, len(b.ring)
	}
	return b.total, b.next
}

// bufferCore is a zapcore.Core that records entries into a Buffer.
type bufferCore struct {
	zapcore.LevelEnabler
	buf    *Buffer
	fields []zapcore.Field
}

// NewBufferCore returns a core writing entries at or above level into buf.
func NewBufferCore(buf *Buffer, level zapcore.LevelEnabler) zapcore.Core {
	return &bufferCore{LevelEnabler: level, buf: buf}
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &bufferCore{LevelEnabler: c.LevelEnabler, buf: c.buf, fields: merged}
}

func (c *bufferCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *bufferCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var extra map[string]interface{}
	if len(c.fields)+len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}
		extra = enc.Fields
	}
	c.buf.Add(Entry{
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Logger:    entry.LoggerName,
		Message:   entry.Message,
		Fields:    extra,
	})
	return nil
}

func (c *bufferCore) Sync() error { return nil }
