package media

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// Capabilities reports which external tools are usable.
type Capabilities struct {
	HasFFmpeg      bool      `json:"has_ffmpeg"`
	HasFFprobe     bool      `json:"has_ffprobe"`
	FFmpegVersion  string    `json:"ffmpeg_version,omitempty"`
	FFprobeVersion string    `json:"ffprobe_version,omitempty"`
	ProbedAt       time.Time `json:"-"`
}

func (c *Capabilities) CanProbe() bool {
	return c.HasFFprobe
}

func (c *Capabilities) CanRender() bool {
	return c.HasFFmpeg
}

// ToolProber checks tool availability. Split out so the doctor can be
// tested without binaries on PATH.
type ToolProber interface {
	ProbeTools(ctx context.Context) (*Capabilities, error)
}

// Doctor caches capability probes with a TTL so job processing does not
// spawn version checks on every tick.
type Doctor struct {
	prober ToolProber
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.RWMutex
	cached *Capabilities
}

func NewDoctor(prober ToolProber, logger *slog.Logger) *Doctor {
	return &Doctor{
		prober: prober,
		ttl:    defaultCacheTTL,
		logger: logger,
	}
}

// Get returns cached capabilities if fresh, otherwise re-probes.
func (d *Doctor) Get(ctx context.Context) (*Capabilities, error) {
	d.mu.RLock()
	if d.cached != nil && time.Since(d.cached.ProbedAt) < d.ttl {
		caps := d.cached
		d.mu.RUnlock()
		return caps, nil
	}
	d.mu.RUnlock()

	return d.Refresh(ctx)
}

func (d *Doctor) Peek() *Capabilities {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cached
}

// Refresh forces a new probe regardless of cache freshness.
func (d *Doctor) Refresh(ctx context.Context) (*Capabilities, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	caps, err := d.prober.ProbeTools(ctx)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("tool probe failed", "error", err)
		}
		// Return stale cache if available
		if d.cached != nil {
			return d.cached, nil
		}
		return nil, err
	}

	d.cached = caps
	return caps, nil
}

func (d *Doctor) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.mu.Unlock()
}

// ExecProber runs `<tool> -version` for each binary.
type ExecProber struct {
	FFmpegPath  string
	FFprobePath string
}

func (p *ExecProber) ProbeTools(ctx context.Context) (*Capabilities, error) {
	caps := &Capabilities{ProbedAt: time.Now()}

	if version, ok := toolVersion(ctx, p.FFmpegPath); ok {
		caps.HasFFmpeg = true
		caps.FFmpegVersion = version
	}
	if version, ok := toolVersion(ctx, p.FFprobePath); ok {
		caps.HasFFprobe = true
		caps.FFprobeVersion = version
	}
	return caps, nil
}

func toolVersion(ctx context.Context, path string) (string, bool) {
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", false
	}
	return firstLine(string(out)), true
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
