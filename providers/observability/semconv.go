package observability

// --- Model attributes ---

const (
	// AttrModel is the model resource name, e.g. "models/gemini-pro".
	AttrModel = "genai.model"

	// AttrOperation is the API method invoked: generateContent, streamGenerateContent, countTokens, listModels, getModel.
	AttrOperation = "genai.operation"

	// AttrStreaming marks streamed calls.
	AttrStreaming = "genai.streaming"

	// AttrFinishReason is the finish reason of the first candidate.
	AttrFinishReason = "genai.finish_reason"

	// AttrBlockReason is the prompt block reason reported by the server.
	AttrBlockReason = "genai.block_reason"

	// AttrContentsCount is the number of contents sent in a request.
	AttrContentsCount = "genai.contents_count"

	// AttrChunkIndex is the zero-based position of a streamed chunk.
	AttrChunkIndex = "genai.chunk_index"

	// AttrTokensTotal is the total token count reported by the server.
	AttrTokensTotal = "genai.tokens.total" // #nosec G101 -- token refers to model tokens
)

// --- HTTP attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"

	// AttrCURLCommand is the reproducible cURL form of a request.
	AttrCURLCommand = "http.curl"

	// AttrPayload is a (possibly truncated) request or response payload.
	AttrPayload = "http.payload"
)

// --- General attributes ---

const (
	AttrError             = "error"
	AttrErrorType         = "error.type"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	// SpanRequest wraps one call through the transport service.
	SpanRequest = "genai.request"
)

// --- Event names ---

const (
	EventRequestPrepared = "http.request.prepared"
	EventRequestError    = "http.request.error"
	EventResponse        = "http.response.received"
	EventStreamStarted   = "http.stream.started"
	EventStreamChunk     = "genai.stream.chunk"
	EventStreamEnd       = "genai.stream.end"
)

// --- Metric names ---

const (
	// MetricRequestCount counts calls by operation and outcome.
	MetricRequestCount = "genai.request.count"

	// MetricRequestDuration records the time to response headers, in milliseconds.
	MetricRequestDuration = "genai.request.duration"

	// MetricStreamChunks counts decoded stream chunks.
	MetricStreamChunks = "genai.stream.chunks"
)
