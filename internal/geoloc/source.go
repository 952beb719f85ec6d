package geoloc

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"time"

	"go.uber.org/zap"
)

// Fix is one position report from a location source.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Source produces a stream of position fixes. Implementations must close the
// returned channel once the context is cancelled or the stream ends.
type Source interface {
	Watch(ctx context.Context) (<-chan Fix, error)
}

// StaticSource reports a single fixed coordinate, emitted once and then held
// until cancellation. Used when the device position is supplied up front.
type StaticSource struct {
	Latitude  float64
	Longitude float64
}

// Watch implements Source.
func (s StaticSource) Watch(ctx context.Context) (<-chan Fix, error) {
	out := make(chan Fix, 1)
	go func() {
		defer close(out)
		select {
		case out <- Fix{Latitude: s.Latitude, Longitude: s.Longitude, Timestamp: time.Now()}:
		case <-ctx.Done():
			return
		}
		<-ctx.Done()
	}()
	return out, nil
}

// ReplaySource reads JSON-lines fixes from a reader, emitting one per
// interval. It stands in for platform geolocation on headless hosts and in
// rehearsals of recorded tracks.
type ReplaySource struct {
	Reader   io.Reader
	Interval time.Duration
	Logger   *zap.Logger
}

// Watch implements Source. Malformed lines are skipped, not fatal.
func (s ReplaySource) Watch(ctx context.Context) (<-chan Fix, error) {
	out := make(chan Fix)
	scanner := bufio.NewScanner(s.Reader)

	go func() {
		defer close(out)
		var ticker *time.Ticker
		if s.Interval > 0 {
			ticker = time.NewTicker(s.Interval)
			defer ticker.Stop()
		}

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var fix Fix
			if err := json.Unmarshal(line, &fix); err != nil {
				if s.Logger != nil {
					s.Logger.Warn("skipping malformed fix", zap.Error(err))
				}
				continue
			}
			if fix.Timestamp.IsZero() {
				fix.Timestamp = time.Now()
			}

			select {
			case out <- fix:
			case <-ctx.Done():
				return
			}

			if ticker != nil {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
