package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "jiaoxue-search"

// SearchInstruments holds the OTel instruments of the search pipeline.
type SearchInstruments struct {
	FanOutDuration metric.Float64Histogram
	RecordsScored  metric.Int64Counter
	RecordsMatched metric.Int64Counter
}

var (
	instruments     *SearchInstruments
	instrumentsOnce sync.Once
)

// Instruments returns the lazily created instruments. They are bound to the
// global meter provider, so they start exporting once InitProvider ran.
func Instruments() *SearchInstruments {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		fanOut, _ := meter.Float64Histogram("search_fanout_duration_seconds",
			metric.WithDescription("Duration of the parallel collection fetch"),
			metric.WithUnit("s"),
		)
		scored, _ := meter.Int64Counter("search_records_scored_total",
			metric.WithDescription("Records scored against a query"),
		)
		matched, _ := meter.Int64Counter("search_records_matched_total",
			metric.WithDescription("Records above the relevance threshold"),
		)
		instruments = &SearchInstruments{
			FanOutDuration: fanOut,
			RecordsScored:  scored,
			RecordsMatched: matched,
		}
	})
	return instruments
}

// RecordFanOut records one completed fan-out.
func (m *SearchInstruments) RecordFanOut(ctx context.Context, category string, d time.Duration, failed bool) {
	m.FanOutDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("failed", failed),
	))
}

// RecordScoring records how many records were scored and matched per collection.
func (m *SearchInstruments) RecordScoring(ctx context.Context, collection string, scored, matched int) {
	attrs := metric.WithAttributes(attribute.String("collection", collection))
	m.RecordsScored.Add(ctx, int64(scored), attrs)
	m.RecordsMatched.Add(ctx, int64(matched), attrs)
}
