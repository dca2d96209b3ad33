package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

const rateCacheNamespace = "fx_rate"

// Rate sources reported to metrics.
const (
	rateSourceIdentity = "identity"
	rateSourceCache    = "cache"
	rateSourceAPI      = "api"
	rateSourceError    = "error"
)

// ErrRateNotFound is returned when the provider has no rate for the target currency.
var ErrRateNotFound = errors.New("currency conversion rate not found")

// RateCache stores exchange rates as strings under a namespace.
type RateCache interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key string, value string, ttl time.Duration) error
}

type currencyConverter struct {
	BaseService
	baseURL  string
	client   *http.Client
	cache    RateCache
	cacheTTL time.Duration
	breaker  *gobreaker.CircuitBreaker
}

// ConverterOption configures the currency converter.
type ConverterOption func(*currencyConverter)

// WithRateCache caches fetched rates for ttl.
func WithRateCache(cache RateCache, ttl time.Duration) ConverterOption {
	return func(s *currencyConverter) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithHTTPClient(client *http.Client) ConverterOption {
	return func(s *currencyConverter) {
		s.client = client
	}
}

func WithConverterMetrics(recorder *metrics.Recorder) ConverterOption {
	return func(s *currencyConverter) {
		s.Metrics = recorder
	}
}

// NewCurrencyConverter fetches rates from {baseURL}/{FROM}, which must answer {"rates": {"TO": rate}}.
func NewCurrencyConverter(baseURL string, timeout time.Duration, options ...ConverterOption) portssvc.CurrencyConverterSvc {
	svc := &currencyConverter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, option := range options {
		option(svc)
	}
	svc.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "exchange-rate-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// An unknown currency is a bad request, not an outage of the rate API.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRateNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return svc
}

var _ portssvc.CurrencyConverterSvc = (*currencyConverter)(nil)

// Convert returns amount expressed in the target currency, rounded to four places.
func (s *currencyConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		s.Metrics.CurrencyConverted(rateSourceIdentity)
		return amount, nil
	}

	rate, source, err := s.rate(ctx, from, to)
	if err != nil {
		s.Metrics.CurrencyConverted(rateSourceError)
		return decimal.Zero, fmt.Errorf("currency conversion %s->%s failed: %w", from, to, err)
	}
	s.Metrics.CurrencyConverted(source)
	return amount.Mul(rate).Round(4), nil
}

func (s *currencyConverter) rate(ctx context.Context, from, to string) (decimal.Decimal, string, error) {
	key := from + "_" + to
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, rateCacheNamespace, key)
		if err != nil {
			s.LogWarn(ctx, err, "Rate cache read failed", slog.String("pair", key))
		} else if ok {
			if rate, perr := decimal.NewFromString(cached); perr == nil {
				return rate, rateSourceCache, nil
			}
		}
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetchRate(ctx, from, to)
	})
	if err != nil {
		return decimal.Zero, "", err
	}
	rate := result.(decimal.Decimal)

	if s.cache != nil {
		if err := s.cache.Set(ctx, rateCacheNamespace, key, rate.String(), s.cacheTTL); err != nil {
			s.LogWarn(ctx, err, "Rate cache write failed", slog.String("pair", key))
		}
	}
	return rate, rateSourceAPI, nil
}

type ratesResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (s *currencyConverter) fetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+from, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate api returned non-200 status: %s", resp.Status)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rates: %w", err)
	}
	rate, ok := body.Rates[to]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, ErrRateNotFound
	}
	return rate, nil
}
