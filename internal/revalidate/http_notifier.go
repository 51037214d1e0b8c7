package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/smallbiznis/campaignhub/internal/config"
	"github.com/smallbiznis/campaignhub/internal/observability/logger"
	"github.com/smallbiznis/campaignhub/internal/observability/metrics"
	"github.com/smallbiznis/campaignhub/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	revalidatePath = "/api/revalidate"

	outcomeOK             = "ok"
	outcomeHTTPError      = "http_error"
	outcomeTransportError = "transport_error"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Config  *config.RevalidateConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
	Client  *http.Client     `optional:"true"`
}

// HTTPNotifier posts {"urlPath": ...} to {hostname}/api/revalidate.
type HTTPNotifier struct {
	log     *zap.Logger
	cfg     *config.RevalidateConfigHolder
	metrics *metrics.Metrics
	client  *http.Client
}

func NewHTTPNotifier(p Params) *HTTPNotifier {
	client := p.Client
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPNotifier{
		log:     p.Log.Named("revalidate.notifier"),
		cfg:     p.Config,
		metrics: p.Metrics,
		client:  client,
	}
}

type revalidateRequest struct {
	URLPath string `json:"urlPath"`
}

// Notify sends one request per path concurrently and waits for both.
func (n *HTTPNotifier) Notify(ctx context.Context, hostname, resourceID, slug string) {
	cfg := n.cfg.Get()
	log := logger.WithContext(ctx, n.log).With(
		zap.String("hostname", hostname),
		zap.String("resource_id", resourceID),
	)
	if !cfg.Enabled {
		log.Debug("revalidation disabled, skipping")
		return
	}

	ctx, span := otel.Tracer("campaignhub/revalidate").Start(ctx, "revalidate.notify",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("revalidate.resource_id", resourceID)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	endpoint := strings.TrimRight(hostname, "/") + revalidatePath

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, path := range Paths(resourceID, slug) {
		wg.Add(1)
		go func(urlPath string) {
			defer wg.Done()

			outcome, err := n.post(ctx, endpoint, urlPath)
			n.metrics.RecordRevalidation(ctx, outcome)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				log.Warn("revalidation failed", zap.String("url_path", urlPath), zap.String("outcome", outcome), zap.Error(err))
				return
			}
			log.Debug("revalidated", zap.String("url_path", urlPath))
		}(path)
	}
	wg.Wait()

	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d revalidation request(s) failed", failed))
	}
}

func (n *HTTPNotifier) post(ctx context.Context, endpoint, urlPath string) (string, error) {
	body, err := json.Marshal(revalidateRequest{URLPath: urlPath})
	if err != nil {
		return outcomeTransportError, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return outcomeTransportError, err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := n.client.Do(req)
	if err != nil {
		return outcomeTransportError, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return outcomeHTTPError, fmt.Errorf("revalidate %s: unexpected status %d", urlPath, resp.StatusCode)
	}
	return outcomeOK, nil
}
