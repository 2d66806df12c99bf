package genai

import (
	"context"
	"net/http"

	"github.com/leofalp/genai-go/internal/transport"
	"github.com/leofalp/genai-go/providers/observability"
)

// GenerativeModel calls one model. It is immutable after construction and
// safe for concurrent use.
type GenerativeModel struct {
	name             string
	generationConfig *GenerationConfig
	safetySettings   []SafetySetting
	service          *transport.Service
	observer         observability.Provider
}

// ModelOption configures a GenerativeModel.
type ModelOption func(*modelOptions)

type modelOptions struct {
	generationConfig *GenerationConfig
	safetySettings   []SafetySetting
	transportOptions []transport.Option
	observer         observability.Provider
}

// WithGenerationConfig sets the generation parameters sent with every
// generate call.
func WithGenerationConfig(config GenerationConfig) ModelOption {
	return func(o *modelOptions) {
		o.generationConfig = &config
	}
}

// WithSafetySettings sets the safety settings sent with every generate call.
func WithSafetySettings(settings ...SafetySetting) ModelOption {
	return func(o *modelOptions) {
		o.safetySettings = append([]SafetySetting(nil), settings...)
	}
}

// WithBaseHost replaces generativelanguage.googleapis.com in request URLs,
// for example to go through a proxy. A value with a scheme replaces the
// scheme as well.
func WithBaseHost(host string) ModelOption {
	return func(o *modelOptions) {
		o.transportOptions = append(o.transportOptions, transport.WithHost(host))
	}
}

// WithHTTPClient sets the HTTP client. Timeouts are configured there.
func WithHTTPClient(client *http.Client) ModelOption {
	return func(o *modelOptions) {
		o.transportOptions = append(o.transportOptions, transport.WithHTTPClient(client))
	}
}

// WithObserver reports calls to observer.
func WithObserver(observer observability.Provider) ModelOption {
	return func(o *modelOptions) {
		o.observer = observer
	}
}

// NewGenerativeModel returns a model named name ("gemini-pro" or
// "models/gemini-pro") authenticated with apiKey.
func NewGenerativeModel(name, apiKey string, opts ...ModelOption) *GenerativeModel {
	options := &modelOptions{}
	for _, opt := range opts {
		opt(options)
	}

	transportOptions := append(options.transportOptions, transport.WithObserver(options.observer))
	model := &GenerativeModel{
		name:             modelResourceName(name),
		generationConfig: options.generationConfig,
		safetySettings:   options.safetySettings,
		service:          transport.New(apiKey, transportOptions...),
		observer:         options.observer,
	}

	if model.observer != nil {
		model.observer.Info(context.Background(), "Model initialized",
			observability.String(observability.AttrModel, model.name),
		)
	}
	return model
}

// Name returns the model resource name, e.g. "models/gemini-pro".
func (m *GenerativeModel) Name() string {
	return m.name
}

// GenerateContent generates a response to a single user turn made of parts.
func (m *GenerativeModel) GenerateContent(ctx context.Context, parts ...Part) (*GenerateContentResponse, error) {
	return m.GenerateContentFrom(ctx, NewUserContent(parts...))
}

// GenerateContentFrom generates a response to contents.
//
// Failures are *GenerateContentError values: ErrPromptBlocked and
// ErrResponseStoppedEarly carry the response, ErrInternal wraps the cause.
func (m *GenerativeModel) GenerateContentFrom(ctx context.Context, contents ...Content) (*GenerateContentResponse, error) {
	response, err := transport.Send[GenerateContentResponse](ctx, m.service, m.generateRequest(contents, false))
	if err != nil {
		return nil, internalError(err)
	}

	if err := checkResponse(response); err != nil {
		m.logRejected(ctx, err)
		return nil, err
	}
	return response, nil
}

// GenerateContentStream streams the response to a single user turn.
func (m *GenerativeModel) GenerateContentStream(ctx context.Context, parts ...Part) *GenerateContentStream {
	return m.GenerateContentStreamFrom(ctx, NewUserContent(parts...))
}

// GenerateContentStreamFrom streams the response to contents. Nothing is sent
// until the stream is read.
func (m *GenerativeModel) GenerateContentStreamFrom(ctx context.Context, contents ...Content) *GenerateContentStream {
	source := transport.SendStreaming[GenerateContentResponse](ctx, m.service, m.generateRequest(contents, true))
	return newGenerateContentStream(ctx, m, source)
}

// CountTokens counts the tokens of a single user turn.
func (m *GenerativeModel) CountTokens(ctx context.Context, parts ...Part) (*CountTokensResponse, error) {
	return m.CountTokensFrom(ctx, NewUserContent(parts...))
}

// CountTokensFrom counts the tokens of contents. Failures are *CountTokensError.
func (m *GenerativeModel) CountTokensFrom(ctx context.Context, contents ...Content) (*CountTokensResponse, error) {
	request := countTokensRequest{Model: m.name, Contents: contents}
	response, err := transport.Send[CountTokensResponse](ctx, m.service, request)
	if err != nil {
		return nil, &CountTokensError{Err: err}
	}
	return response, nil
}

func (m *GenerativeModel) generateRequest(contents []Content, streaming bool) generateContentRequest {
	return generateContentRequest{
		Model:            m.name,
		Contents:         contents,
		GenerationConfig: m.generationConfig,
		SafetySettings:   m.safetySettings,
		IsStreaming:      streaming,
	}
}

func (m *GenerativeModel) observerFor(ctx context.Context) observability.Provider {
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		return observer
	}
	return m.observer
}

// logRejected reports a response that failed checkResponse.
func (m *GenerativeModel) logRejected(ctx context.Context, err error) {
	observer := m.observerFor(ctx)
	if observer == nil {
		return
	}
	rejected, ok := err.(*GenerateContentError)
	if !ok {
		return
	}
	observer.Warn(ctx, "Response rejected",
		observability.String(observability.AttrModel, m.name),
		observability.String(observability.AttrBlockReason, string(rejected.BlockReason)),
		observability.String(observability.AttrFinishReason, string(rejected.FinishReason)),
	)
}
