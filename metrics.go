package panther

import (
	"context"
	"sort"
	"time"
)

// defaultMetricsInterval is the breakdown granularity in minutes.
const defaultMetricsInterval = 180

// Series is a labeled metric value with an optional per-timestamp breakdown.
type Series struct {
	Label     string             `json:"label"`
	Value     float64            `json:"value"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// RuleSeries is a metric value attributed to a specific rule.
type RuleSeries struct {
	EntityID string  `json:"entityId"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
}

// Metrics holds platform metrics for a time period.
type Metrics struct {
	AlertsPerSeverity       []Series     `json:"alertsPerSeverity"`
	AlertsPerRule           []RuleSeries `json:"alertsPerRule"`
	TotalAlerts             float64      `json:"totalAlerts"`
	BytesProcessedPerSource []Series     `json:"bytesProcessedPerSource"`
	TotalBytesProcessed     float64      `json:"totalBytesProcessed"`
}

// FlatSeries is a plotting-friendly reshaping of a series list: one shared
// timestamp axis plus a vector of values per label, aligned by index.
type FlatSeries struct {
	Timestamps []time.Time
	Values     map[string][]float64
}

// MetricsService retrieves platform metrics.
type MetricsService interface {
	// All retrieves every available metric for the time period. Interval is
	// the breakdown granularity in minutes; zero selects the default.
	All(ctx context.Context, start, end Timestamp, interval int, opts ...RequestOption) (*Metrics, error)
}

// metricsService implements MetricsService.
type metricsService struct {
	gql *gqlExecutor
}

func newMetricsService(gql *gqlExecutor) *metricsService {
	return &metricsService{gql: gql}
}

// All retrieves every available metric for the time period.
func (s *metricsService) All(ctx context.Context, start, end Timestamp, interval int, opts ...RequestOption) (*Metrics, error) {
	startStr, err := start.Normalize()
	if err != nil {
		return nil, err
	}
	endStr, err := end.Normalize()
	if err != nil {
		return nil, err
	}

	if interval == 0 {
		interval = defaultMetricsInterval
	}
	if interval < 0 {
		return nil, &ValidationError{Message: "metrics interval must be greater than zero"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	input := map[string]any{
		"fromDate":          startStr,
		"toDate":            endStr,
		"intervalInMinutes": interval,
	}

	var result struct {
		Metrics *Metrics `json:"metrics"`
	}
	err = s.gql.execute(ctx, "metrics/all", map[string]any{"input": input}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.Metrics, nil
}

// FlattenSeries reshapes a series-with-breakdown list into per-label value
// vectors sharing one timestamp axis, which is what plotting tools want.
// Every series must carry a breakdown over the same timestamps.
func FlattenSeries(series []Series) (*FlatSeries, error) {
	if len(series) == 0 {
		return &FlatSeries{Values: map[string][]float64{}}, nil
	}

	keys := make([]string, 0, len(series[0].Breakdown))
	for ts := range series[0].Breakdown {
		keys = append(keys, ts)
	}
	sort.Strings(keys)

	flat := &FlatSeries{
		Timestamps: make([]time.Time, 0, len(keys)),
		Values:     make(map[string][]float64, len(series)),
	}
	for _, key := range keys {
		ts, err := DecodeTimestamp(key)
		if err != nil {
			return nil, err
		}
		flat.Timestamps = append(flat.Timestamps, ts)
	}

	for _, item := range series {
		if len(item.Breakdown) != len(keys) {
			return nil, &ValidationError{Message: "series breakdowns cover different timestamps"}
		}
		values := make([]float64, 0, len(keys))
		for _, key := range keys {
			value, ok := item.Breakdown[key]
			if !ok {
				return nil, &ValidationError{Message: "series breakdowns cover different timestamps"}
			}
			values = append(values, value)
		}
		flat.Values[item.Label] = values
	}

	return flat, nil
}
