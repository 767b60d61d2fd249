package services

import (
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"
	"github.com/Netboss008/yacoolo/internal/core/ports"
)

// nopStats stands in when no collector is configured, so the services
// never nil-check before recording.
type nopStats struct{}

func (nopStats) RecordStreamLive(domain.StreamID)             {}
func (nopStats) RecordStreamEnded(domain.StreamID)            {}
func (nopStats) RecordViewerJoined(domain.StreamID, int)      {}
func (nopStats) RecordViewerLeft(domain.StreamID, int)        {}
func (nopStats) RecordGuestCount(domain.StreamID, int)        {}
func (nopStats) RecordModeration(domain.ModerationAction)     {}
func (nopStats) RecordJudgmentCall(time.Duration, error)      {}
func (nopStats) RecordControlStarted(domain.StreamID, string) {}
func (nopStats) RecordControlEnded(domain.StreamID, string)   {}

func statsOrNop(stats ports.StatsCollector) ports.StatsCollector {
	if stats == nil {
		return nopStats{}
	}
	return stats
}
