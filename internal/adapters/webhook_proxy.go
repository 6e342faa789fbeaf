package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"domverify/internal/ports"
)

const defaultWebhookRetries = 3
const defaultWebhookRetryDelay = 200 * time.Millisecond
const defaultWebhookTimeout = 10 * time.Second
const maxWebhookRetryDelay = 2 * time.Second

// BroadcastPayload is the JSON body POSTed to every webhook endpoint.
type BroadcastPayload struct {
	Packages []string  `json:"packages"`
	SentAt   time.Time `json:"sent_at"`
}

// WebhookProxy forwards verification broadcasts to HTTP endpoints.
type WebhookProxy struct {
	Endpoints  []string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Logger     zerolog.Logger
	Clock      func() time.Time

	verifiers map[int]struct{}
}

var _ ports.ProxyPort = WebhookProxy{}

func NewWebhookProxy(endpoints []string, verifierUIDs []int, timeout time.Duration, retries int, logger zerolog.Logger) WebhookProxy {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	if retries <= 0 {
		retries = defaultWebhookRetries
	}
	return WebhookProxy{
		Endpoints:  endpoints,
		Timeout:    timeout,
		Retries:    retries,
		RetryDelay: defaultWebhookRetryDelay,
		Logger:     logger,
		Clock:      time.Now,
		verifiers:  uidSet(verifierUIDs),
	}
}

func (p WebhookProxy) IsCallerVerifier(uid int) bool {
	_, ok := p.verifiers[uid]
	return ok
}

// SendBroadcastForPackages delivers synchronously and logs failures; the
// engine does not retry broadcasts itself.
func (p WebhookProxy) SendBroadcastForPackages(packageNames []string) {
	if err := p.Deliver(context.Background(), packageNames); err != nil {
		p.Logger.Error().Err(err).Strs("packages", packageNames).Msg("domain verification broadcast failed")
		return
	}
	p.Logger.Debug().Strs("packages", packageNames).Int("endpoints", len(p.Endpoints)).Msg("domain verification broadcast sent")
}

// Deliver POSTs the broadcast to every endpoint in parallel and returns the
// first failure.
func (p WebhookProxy) Deliver(ctx context.Context, packageNames []string) error {
	body, err := json.Marshal(BroadcastPayload{Packages: packageNames, SentAt: p.Clock().UTC()})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode broadcast").
			WithCause(err)
	}
	group, ctx := errgroup.WithContext(ctx)
	for _, endpoint := range p.Endpoints {
		target := strings.TrimSpace(endpoint)
		if target == "" {
			continue
		}
		group.Go(func() error {
			return p.post(ctx, target, body)
		})
	}
	return group.Wait()
}

func (p WebhookProxy) post(ctx context.Context, endpoint string, body []byte) error {
	var lastErr error
	for attempt := 0; attempt < p.Retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		retry, err := p.postOnce(ctx, endpoint, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == p.Retries-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay(attempt)):
		}
	}
	return lastErr
}

func (p WebhookProxy) postOnce(ctx context.Context, endpoint string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to create webhook request").
			WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: p.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("webhook delivery failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return retry, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("webhook delivery failed").
		WithCause(fmt.Errorf("status=%d url=%s response=%s", resp.StatusCode, endpoint, strings.TrimSpace(string(message))))
}

func (p WebhookProxy) retryDelay(attempt int) time.Duration {
	delay := p.RetryDelay * time.Duration(1<<attempt)
	if delay > maxWebhookRetryDelay {
		delay = maxWebhookRetryDelay
	}
	return delay
}
