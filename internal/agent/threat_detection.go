package agent

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"snagdef/internal/event"
	"snagdef/internal/model"
	"snagdef/pkg/apierror"
)

// ThreatDetectionAgent screens submitted log records for numeric outliers.
// This is a coarse pre-filter, not a trained model: a record is flagged when
// any numeric feature sits more than three standard deviations from that
// feature's mean across the batch.
type ThreatDetectionAgent struct {
	bus event.Bus
}

func NewThreatDetectionAgent(bus event.Bus) *ThreatDetectionAgent {
	return &ThreatDetectionAgent{bus: bus}
}

func (a *ThreatDetectionAgent) AnalyzeLogs(ctx context.Context, logs []map[string]any, actorID string) ([]map[string]any, error) {
	if len(logs) == 0 {
		return nil, apierror.New("BAD_REQUEST", "No log data provided", "", http.StatusBadRequest)
	}

	stats := featureStats(logs)
	threats := make([]map[string]any, 0)
	for _, record := range logs {
		if isOutlier(record, stats) {
			threats = append(threats, record)
		}
	}

	if len(threats) > 0 {
		a.bus.Publish(event.Event{
			ID:        uuid.NewString(),
			Type:      event.TypeThreatsDetected,
			Payload:   model.ThreatDetectResponse{Threats: threats, Count: len(threats)},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			ActorID:   actorID,
		})
	}

	return threats, nil
}

type featureStat struct {
	mean   float64
	stddev float64
}

func featureStats(logs []map[string]any) map[string]featureStat {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, record := range logs {
		for key, value := range record {
			if v, ok := numeric(value); ok {
				sums[key] += v
				counts[key]++
			}
		}
	}

	stats := map[string]featureStat{}
	for key, count := range counts {
		mean := sums[key] / float64(count)

		var variance float64
		for _, record := range logs {
			if v, ok := numeric(record[key]); ok {
				variance += (v - mean) * (v - mean)
			}
		}
		variance /= float64(count)

		stats[key] = featureStat{mean: mean, stddev: math.Sqrt(variance)}
	}
	return stats
}

func isOutlier(record map[string]any, stats map[string]featureStat) bool {
	for key, value := range record {
		v, ok := numeric(value)
		if !ok {
			continue
		}

		stat := stats[key]
		if stat.stddev == 0 {
			continue
		}
		if math.Abs(v-stat.mean) > 3*stat.stddev {
			return true
		}
	}
	return false
}

// numeric accepts the types JSON decoding can produce for numbers.
func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
