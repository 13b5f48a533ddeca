// SPDX-License-Identifier: MIT

package player

import (
	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/catalog"
	"github.com/ytwall/ytwall/internal/log"
)

// LogSink is a Sink that records playback decisions as structured log
// events. It stands in when no rendering frontend is attached, and doubles
// as the reference for what a real frontend has to implement.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a logging sink.
func NewLogSink() *LogSink {
	return &LogSink{logger: log.WithComponent("playback")}
}

func (s *LogSink) StartPlayback(e catalog.Entry) {
	s.logger.Info().
		Str("event", "playback.start").
		Str("id", e.ID).
		Str("url", e.URL).
		Str("name", e.Name).
		Msg("starting playback")
}

func (s *LogSink) StopPlayback() {
	s.logger.Info().Str("event", "playback.stop").Msg("stopping playback")
}

func (s *LogSink) SetVolume(v float64) {
	s.logger.Info().Str("event", "playback.volume").Float64("volume", v).Msg("volume changed")
}

func (s *LogSink) Chime() {
	s.logger.Info().Str("event", "playback.chime").Msg("chime")
}

func (s *LogSink) Flash(id string) {
	s.logger.Info().Str("event", "playback.flash").Str("id", id).Msg("flash")
}

func (s *LogSink) Countdown(id, display string) {
	s.logger.Debug().
		Str("event", "playback.countdown").
		Str("id", id).
		Str("remaining", display).
		Msg("countdown tick")
}
