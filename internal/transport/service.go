package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/genai-go/internal/json"
	"github.com/leofalp/genai-go/internal/utils"
	"github.com/leofalp/genai-go/internal/wirecase"
	"github.com/leofalp/genai-go/providers/observability"
)

const (
	// Version is the client version reported in the x-goog-api-client header.
	Version = "0.4.0"

	// ClientName prefixes Version in the x-goog-api-client header.
	ClientName = "genai-go"

	// DefaultHost is the API host; WithHost substitutes it in request URLs.
	DefaultHost = "generativelanguage.googleapis.com"

	// APIVersion is the API version path segment.
	APIVersion = "v1beta"

	// BaseURL is the root every request URL is built from.
	BaseURL = "https://" + DefaultHost + "/" + APIVersion

	// APIKeyPlaceholder replaces the API key in logged cURL commands.
	APIKeyPlaceholder = "${GEMINI_API_KEY}"
)

const (
	headerAPIKey    = "x-goog-api-key"
	headerAPIClient = "x-goog-api-client"
)

// Request is a value sent through a Service. The value itself is the JSON
// body; URL returns the absolute target under BaseURL.
type Request interface {
	URL() string
}

// MethodRequest is implemented by requests that are not POSTs. GET requests
// carry no body.
type MethodRequest interface {
	Request
	Method() string
}

// Service sends requests with one set of credentials. It is immutable after
// New and safe for concurrent use.
type Service struct {
	apiKey   string
	host     string
	client   *http.Client
	observer observability.Provider
}

// Option configures a Service.
type Option func(*Service)

// WithHost replaces DefaultHost in every request URL. A value with a scheme,
// such as "http://127.0.0.1:8080", replaces "https://" + DefaultHost.
func WithHost(host string) Option {
	return func(s *Service) {
		s.host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	}
}

// WithHTTPClient sets the client used to send requests. Timeouts and proxies
// are configured there.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithObserver sets the provider requests are reported to.
func WithObserver(observer observability.Provider) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// New creates a Service authenticating with apiKey.
func New(apiKey string, opts ...Option) *Service {
	service := &Service{
		apiKey: apiKey,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Host returns the configured host override, empty when none is set.
func (s *Service) Host() string {
	return s.host
}

// ResolveURL applies the host override to rawURL.
func (s *Service) ResolveURL(rawURL string) string {
	if s.host == "" {
		return rawURL
	}
	if strings.Contains(s.host, "://") {
		return strings.Replace(rawURL, "https://"+DefaultHost, s.host, 1)
	}
	return strings.ReplaceAll(rawURL, DefaultHost, s.host)
}

// observerFor prefers a provider attached to ctx over the configured one.
func (s *Service) observerFor(ctx context.Context) observability.Provider {
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		return observer
	}
	return s.observer
}

func requestMethod(request Request) string {
	if withMethod, ok := request.(MethodRequest); ok && withMethod.Method() != "" {
		return withMethod.Method()
	}
	return http.MethodPost
}

// newHTTPRequest builds the signed request. The returned body is the encoded
// payload, nil for GET.
func (s *Service) newHTTPRequest(ctx context.Context, request Request, streaming bool) (*http.Request, []byte, error) {
	method := requestMethod(request)

	var body []byte
	if method != http.MethodGet {
		encoded, err := json.Marshal(request)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request: %w", err)
		}
		body, err = wirecase.Encode(encoded)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request keys: %w", err)
		}
	}

	httpRequest, err := http.NewRequestWithContext(ctx, method, s.ResolveURL(request.URL()), bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if body == nil {
		httpRequest.Body = http.NoBody
		httpRequest.ContentLength = 0
	}

	httpRequest.Header.Set(headerAPIKey, s.apiKey)
	httpRequest.Header.Set(headerAPIClient, ClientName+"/"+Version)
	httpRequest.Header.Set("Content-Type", "application/json")
	if streaming {
		httpRequest.Header.Set("Accept", "text/event-stream")
	}

	return httpRequest, body, nil
}

// logCURL writes the request as a cURL command at trace level.
func logCURL(ctx context.Context, observer observability.Provider, request *http.Request, body []byte) {
	if observer == nil {
		return
	}
	command := utils.CURLCommand(request, body, map[string]string{
		http.CanonicalHeaderKey(headerAPIKey): APIKeyPlaceholder,
	})
	observer.Trace(ctx, "Creating request with the equivalent cURL command",
		observability.String(observability.AttrCURLCommand, command),
	)
}

// call tracks one request for spans and metrics.
type call struct {
	observer  observability.Provider
	span      observability.Span
	operation string
}

func (s *Service) startCall(ctx context.Context, request Request, streaming bool) (context.Context, *call) {
	observer := s.observerFor(ctx)
	tracked := &call{observer: observer, operation: operationName(request.URL())}
	if observer == nil {
		return ctx, tracked
	}
	ctx, tracked.span = observer.StartSpan(ctx, observability.SpanRequest,
		observability.String(observability.AttrOperation, tracked.operation),
		observability.Bool(observability.AttrStreaming, streaming),
	)
	return ctx, tracked
}

func (c *call) event(name string, attrs ...observability.Attribute) {
	if c.span != nil {
		c.span.AddEvent(name, attrs...)
	}
}

// finish ends the span and records the outcome. It is safe to call on a call
// without observer.
func (c *call) finish(ctx context.Context, err error) {
	if c.observer == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		c.span.RecordError(err)
		c.span.SetStatus(observability.StatusError, err.Error())
	} else {
		c.span.SetStatus(observability.StatusOK, "")
	}
	c.span.End()
	c.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		observability.String(observability.AttrOperation, c.operation),
		observability.String(observability.AttrStatus, status),
	)
}

func (c *call) recordLatency(ctx context.Context, milliseconds float64) {
	if c.observer == nil {
		return
	}
	c.observer.Histogram(observability.MetricRequestDuration).Record(ctx, milliseconds,
		observability.String(observability.AttrOperation, c.operation),
	)
}

// operationName extracts the method from a URL such as
// ".../models/gemini-pro:generateContent?alt=sse".
func operationName(rawURL string) string {
	path, _, _ := strings.Cut(rawURL, "?")
	if index := strings.LastIndex(path, ":"); index >= 0 && !strings.Contains(path[index:], "/") {
		return path[index+1:]
	}
	if strings.HasSuffix(path, "/models") {
		return "listModels"
	}
	return "getModel"
}
