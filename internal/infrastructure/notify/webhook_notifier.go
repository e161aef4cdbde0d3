package notify

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/matchdayhq/matchday/internal/platform/logging"
	"github.com/matchdayhq/matchday/internal/platform/resilience"
	"github.com/matchdayhq/matchday/internal/usecase"
)

const (
	eventVotingOpened   = "voting.opened"
	eventVotingReminder = "voting.reminder"
	eventVotingClosed   = "voting.closed"
)

type WebhookNotifierConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// WebhookNotifier posts voting lifecycle events to a club chat webhook.
// A circuit breaker keeps a dead webhook from slowing down every sweep.
type WebhookNotifier struct {
	client  *http.Client
	url     string
	token   string
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewWebhookNotifier(cfg WebhookNotifierConfig, logger *logging.Logger) (*WebhookNotifier, error) {
	endpoint, err := validateWebhookURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid webhook url")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &WebhookNotifier{
		client:  &http.Client{Timeout: timeout},
		url:     endpoint,
		token:   strings.TrimSpace(cfg.Token),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			HalfOpenMaxReq:   1,
		}),
		logger:  logger,
	}, nil
}

func (n *WebhookNotifier) VotingOpened(ctx context.Context, event usecase.VotingEvent) error {
	return n.post(ctx, eventVotingOpened, event)
}

func (n *WebhookNotifier) VotingReminder(ctx context.Context, event usecase.VotingEvent) error {
	return n.post(ctx, eventVotingReminder, event)
}

func (n *WebhookNotifier) VotingClosed(ctx context.Context, event usecase.VotingEvent) error {
	return n.post(ctx, eventVotingClosed, event)
}

type webhookEnvelope struct {
	Event string              `json:"event"`
	Data  usecase.VotingEvent `json:"data"`
}

func (n *WebhookNotifier) post(ctx context.Context, kind string, event usecase.VotingEvent) error {
	if err := n.breaker.Allow(); err != nil {
		return errors.Wrapf(err, "webhook delivery skipped event=%s match=%s", kind, event.MatchID)
	}

	body, err := sonic.Marshal(webhookEnvelope{Event: kind, Data: event})
	if err != nil {
		return errors.Wrap(err, "marshal webhook payload")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(buf.String()))
	if err != nil {
		return errors.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.breaker.RecordFailure()
		return errors.Wrapf(err, "post webhook event=%s match=%s", kind, event.MatchID)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		n.breaker.RecordFailure()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return errors.Newf(
			"post webhook event=%s match=%s status=%d body=%s",
			kind,
			event.MatchID,
			resp.StatusCode,
			strings.TrimSpace(string(raw)),
		)
	}

	n.breaker.RecordSuccess()
	n.logger.DebugContext(ctx, "webhook delivered", "event", kind, "match_id", event.MatchID)
	return nil
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", errors.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", errors.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}
