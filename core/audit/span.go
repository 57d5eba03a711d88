// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"encoding/base64"
	"net/http"
	"runtime/trace"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Span represents an HTTP request in flight.
type Span struct {
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	Destination TrafficDestination
	RequestID   string
	Method      string
	URL         string
	StatusCode  int
	Error       error
	Size        int
}

// TrafficDestination describes who a request was sent to.
type TrafficDestination string

const (
	// ToUser is a response served to a browser or API client.
	ToUser TrafficDestination = "user"

	// ToTranslatorAPI is an outgoing call of the translator API client.
	ToTranslatorAPI TrafficDestination = "translator-api"
)

// ServerTimingName is the metric name: destination, method and the
// unpadded base64 URL joined by "$".
func (span Span) ServerTimingName() string {
	return string(span.Destination) + "$" + span.Method + "$" + base64.RawURLEncoding.EncodeToString([]byte(span.URL))
}

// Begin starts the span. When ctx carries a server timing header, a metric is added to it.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))
	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric(span.ServerTimingName())
		span.metric.Extra = map[string]string{
			"start": strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64),
		}
	}

	return ctx
}

// End stops the span. Calling it again has no effect.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()

	if span.metric != nil {
		span.metric.Duration = span.duration
	}

	span.task = nil
}

// Duration is the measured time between Begin and End.
func (span Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span as a single "http" event. Failed or 5xx spans are
// logged at warn level, everything else at debug.
func (span Span) Log() {
	level := zerolog.DebugLevel
	if span.Error != nil || span.StatusCode >= http.StatusInternalServerError {
		level = zerolog.WarnLevel
	}

	log.WithLevel(level).
		Str("sys", "http").
		Str("destination", string(span.Destination)).
		Str("method", span.Method).
		Str("url", span.URL).
		Int("status_code", span.StatusCode).
		Str("len", humanize.IBytes(uint64(max(span.Size, 0)))).
		Dur("dur", span.duration).
		Str("request_id", span.RequestID).
		AnErr("error", span.Error).
		Send()
}
