package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aevon-lab/pulse/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aevon-lab/pulse/internal/geo"

// DefaultURL is the public Nominatim reverse geocoding endpoint.
const DefaultURL = "https://nominatim.openstreetmap.org/reverse"

// ErrCountryNotFound is returned when the upstream answered but resolved no country
// (open sea, Antarctica, unknown coordinates).
var ErrCountryNotFound = errors.New("no country for coordinates")

// Geocoder resolves a coordinate pair to a country name.
type Geocoder interface {
	Country(ctx context.Context, lat, lon float64) (string, error)
}

// NominatimConfig configures the reverse geocoding client.
type NominatimConfig struct {
	URL            string
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// NominatimClient calls the Nominatim /reverse API.
type NominatimClient struct {
	baseURL        string
	userAgent      string
	acceptLanguage string
	httpClient     *http.Client
	tracer         trace.Tracer
	metrics        *observability.Metrics
}

// NewNominatimClient builds a client with a traced transport.
func NewNominatimClient(cfg NominatimConfig, metrics *observability.Metrics) *NominatimClient {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &NominatimClient{
		baseURL:        baseURL,
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(tp)),
		},
		tracer:  tp.Tracer(tracerName),
		metrics: metrics,
	}
}

type reverseResponse struct {
	Address struct {
		Country string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

// Country performs GET {url}?lat=..&lon=..&format=json and returns address.country.
func (c *NominatimClient) Country(ctx context.Context, lat, lon float64) (country string, err error) {
	ctx, span := c.tracer.Start(ctx, "NominatimClient.Country")
	span.SetAttributes(
		attribute.Float64("geo.latitude", lat),
		attribute.Float64("geo.longitude", lon),
	)
	start := time.Now()
	defer func() {
		c.metrics.ObserveGeocode(err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reverse geocoding failed")
		}
		span.End()
	}()

	reqURL, err := c.requestURL(lat, lon)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("geocoding service returned status %d: %s", resp.StatusCode, body)
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if decoded.Address.Country == "" {
		slog.Warn("Geocoding returned no country",
			"latitude", lat,
			"longitude", lon,
			"upstream_error", decoded.Error)
		return "", ErrCountryNotFound
	}

	span.SetAttributes(attribute.String("geo.country", decoded.Address.Country))
	return decoded.Address.Country, nil
}

func (c *NominatimClient) requestURL(lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid geocoding url %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
