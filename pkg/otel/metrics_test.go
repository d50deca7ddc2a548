package otel_test

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/easyops/contextengine/pkg/otel"
)

func TestInMemoryMetrics_Counter(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()

	metrics.Counter(otel.MetricContextAssemblies).Add(ctx, 5)
	metrics.Counter(otel.MetricContextAssemblies).Add(ctx, 3)

	if value := metrics.GetCounterValue(otel.MetricContextAssemblies); value != 8 {
		t.Fatalf("expected counter value 8, got %d", value)
	}
}

func TestInMemoryMetrics_CounterByAttr(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()
	counter := metrics.Counter(otel.MetricContextAssemblies)

	ok := otel.NewAttr(otel.AttrContextOutcome, "ok")
	empty := otel.NewAttr(otel.AttrContextOutcome, "empty")

	counter.Add(ctx, 2, ok)
	counter.Add(ctx, 1, empty)
	counter.Add(ctx, 4)

	if got := metrics.GetCounterValue(otel.MetricContextAssemblies); got != 7 {
		t.Fatalf("expected total 7, got %d", got)
	}
	if got := metrics.GetCounterValueWith(otel.MetricContextAssemblies, ok); got != 2 {
		t.Fatalf("expected 2 for outcome=ok, got %d", got)
	}
	if got := metrics.GetCounterValueWith(otel.MetricContextAssemblies, empty); got != 1 {
		t.Fatalf("expected 1 for outcome=empty, got %d", got)
	}
	if got := metrics.GetCounterValueWith("missing", ok); got != 0 {
		t.Fatalf("expected 0 for unknown counter, got %d", got)
	}
}

func TestInMemoryMetrics_Histogram(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()

	h := metrics.Histogram(otel.MetricContextTokens)
	h.Record(ctx, 120)
	h.Record(ctx, 340)

	values := metrics.GetHistogramValues(otel.MetricContextTokens)
	if len(values) != 2 || values[0] != 120 || values[1] != 340 {
		t.Fatalf("unexpected histogram values: %v", values)
	}
}

func TestInMemoryMetrics_Gauge(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()
	gauge := metrics.Gauge("test_gauge")

	gauge.Set(ctx, 42.5)
	gauge.Set(ctx, 100.0)

	if value := metrics.GetGaugeValue("test_gauge"); value != 100.0 {
		t.Fatalf("expected gauge value 100.0, got %f", value)
	}
}

func TestInMemoryMetrics_ConcurrentAccess(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.Counter("concurrent_counter").Add(ctx, 1, otel.NewAttr("k", "v"))
		}()
	}
	wg.Wait()

	if value := metrics.GetCounterValue("concurrent_counter"); value != 100 {
		t.Fatalf("expected counter value 100, got %d", value)
	}
}

func TestLookupMetric(t *testing.T) {
	d, ok := otel.LookupMetric(otel.MetricContextTokens)
	if !ok {
		t.Fatal("expected predefined metric")
	}
	if d.Unit != otel.UnitTokens {
		t.Fatalf("expected unit %q, got %q", otel.UnitTokens, d.Unit)
	}

	if _, ok := otel.LookupMetric("not.a.metric"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestOTelMetrics_ExportsThroughMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics := otel.NewOTelMetrics(mp.Meter("test"))
	ctx := context.Background()

	metrics.Counter(otel.MetricContextAssemblies).Add(ctx, 3, otel.NewAttr(otel.AttrContextOutcome, "ok"))
	metrics.Histogram(otel.MetricContextTokens).Record(ctx, 256)

	if metrics.Counter(otel.MetricContextAssemblies) != metrics.Counter(otel.MetricContextAssemblies) {
		t.Fatal("expected cached counter instance")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			if m.Name != otel.MetricContextAssemblies {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 3 {
				t.Fatalf("unexpected counter data: %+v", m.Data)
			}
		}
	}

	for _, name := range []string{otel.MetricContextAssemblies, otel.MetricContextTokens} {
		if !found[name] {
			t.Errorf("metric %s not exported", name)
		}
	}
}
