// Package practicum implements the homework status API client.
package practicum

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hwbot/internal/homework"
	logx "hwbot/pkg/logx"
)

// maxBodyBytes caps the response body read from the API.
const maxBodyBytes = 4 << 20

type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
	now  func() time.Time
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("practicum endpoint is empty")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
		now:  time.Now,
	}, nil
}

// Fetch requests the statuses changed since fromDate (unix seconds; zero
// means now) and returns the decoded JSON document. The result is not
// validated; pass it to homework.CheckResponse.
//
// Transport failures are homework.KindRequestFailed, non-200 responses are
// homework.KindEndpointUnavailable with StatusCode set.
func (c *Client) Fetch(ctx context.Context, fromDate int64) (any, error) {
	if fromDate == 0 {
		fromDate = c.now().Unix()
	}

	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, homework.Errorf(homework.KindRequestFailed, "ошибка при запросе к API: %w", err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, homework.Errorf(homework.KindRequestFailed, "ошибка при запросе к API: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, homework.Errorf(homework.KindRequestFailed, "ошибка при запросе к API: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("api response",
		logx.Int("status", resp.StatusCode),
		logx.Int64("from_date", fromDate),
		logx.Duration("took", time.Since(started)),
	)

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		e := homework.Errorf(homework.KindEndpointUnavailable,
			"эндпоинт %s недоступен: API вернул код %d", c.cfg.Endpoint, resp.StatusCode)
		e.StatusCode = resp.StatusCode
		return nil, e
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if ctx.Err() != nil || isTransportError(err) {
			return nil, homework.Errorf(homework.KindRequestFailed, "ошибка при чтении ответа API: %w", err)
		}
		return nil, homework.Errorf(homework.KindMalformedResponse, "ответ API не является корректным JSON: %w", err)
	}
	return v, nil
}

func isTransportError(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne)
}
