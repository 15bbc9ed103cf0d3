package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	conversions metric.Int64Counter
	uploads     metric.Int64Counter
	logins      metric.Int64Counter
	reminders   metric.Int64Counter
}

// NewProvider exports through OTLP when telemetry is enabled and installs a
// no-op provider otherwise. The result is also set as the global provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	if log != nil {
		log.Info("metrics exporter configured",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "crm"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	for _, c := range []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.conversions, "crm_lead_conversions_total", "Leads converted to proforma invoices"},
		{&m.uploads, "crm_document_uploads_total", "Documents stored, by namespace and slot"},
		{&m.logins, "crm_logins_total", "Login attempts, by namespace and outcome"},
		{&m.reminders, "crm_bid_reminders_total", "Bid reminder emails, by outcome"},
	} {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

func (m *Metrics) RecordConversion(ctx context.Context) {
	if m != nil {
		m.conversions.Add(ctx, 1)
	}
}

func (m *Metrics) RecordDocumentUpload(ctx context.Context, namespace, slot string) {
	if m != nil {
		add(ctx, m.uploads, attribute.String("namespace", namespace), attribute.String("slot", slot))
	}
}

// RecordLogin counts attempts; outcome is success, invalid or limited.
func (m *Metrics) RecordLogin(ctx context.Context, namespace, outcome string) {
	if m != nil {
		add(ctx, m.logins, attribute.String("namespace", namespace), attribute.String("outcome", outcome))
	}
}

// RecordReminder counts reminder emails; outcome is sent or failed.
func (m *Metrics) RecordReminder(ctx context.Context, outcome string) {
	if m != nil {
		add(ctx, m.reminders, attribute.String("outcome", outcome))
	}
}

func add(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	counter.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch protocol = strings.ToLower(strings.TrimSpace(protocol)); protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"namespace":   {},
	"slot":        {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes keeps only the low-cardinality label keys and trims
// their values. Emails and record ids never become labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := attrs[:0:0]
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			attr = attr.Key.String(strings.TrimSpace(attr.Value.AsString()))
		}
		out = append(out, attr)
	}
	return out
}
