package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leofalp/genai-go/internal/json"
	"github.com/leofalp/genai-go/internal/utils"
	"github.com/leofalp/genai-go/internal/wirecase"
	"github.com/leofalp/genai-go/providers/observability"
)

// maxResponseBodySize caps buffered response bodies (10 MiB).
const maxResponseBodySize int64 = 10 * 1024 * 1024

// Send performs a buffered call and decodes a 200 response into T.
//
// A non-200 response fails with ParseError of the body, normally a *RPCError.
// A 200 body that cannot be decoded fails with a *DecodeError. Network
// failures are returned wrapped.
func Send[T any](ctx context.Context, service *Service, request Request) (result *T, err error) {
	ctx, tracked := service.startCall(ctx, request, false)
	defer func() { tracked.finish(ctx, err) }()

	httpRequest, body, err := service.newHTTPRequest(ctx, request, false)
	if err != nil {
		return nil, err
	}
	logCURL(ctx, tracked.observer, httpRequest, body)
	tracked.event(observability.EventRequestPrepared,
		observability.String(observability.AttrHTTPMethod, httpRequest.Method),
		observability.String(observability.AttrHTTPURL, httpRequest.URL.String()),
		observability.Int(observability.AttrHTTPRequestBodySize, len(body)),
	)

	started := time.Now()
	response, err := service.client.Do(httpRequest)
	elapsed := time.Since(started)
	if err != nil {
		tracked.event(observability.EventRequestError, observability.Error(err), observability.Duration(observability.AttrHTTPDuration, elapsed))
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer utils.CloseWithLog(response.Body)

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	tracked.recordLatency(ctx, float64(elapsed.Milliseconds()))
	tracked.event(observability.EventResponse,
		observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
		observability.Int(observability.AttrHTTPResponseBodySize, len(payload)),
		observability.Duration(observability.AttrHTTPDuration, elapsed),
	)

	if response.StatusCode != http.StatusOK {
		logErrorResponse(ctx, tracked.observer, response.StatusCode, string(payload))
		return nil, parseStatusError(response.StatusCode, payload)
	}

	return decodeResponse[T](ctx, tracked.observer, payload)
}

// decodeResponse rewrites payload keys to camelCase and decodes them into T.
func decodeResponse[T any](ctx context.Context, observer observability.Provider, payload []byte) (*T, error) {
	decoded, err := wirecase.Decode(payload)
	if err == nil {
		var result T
		if err = json.Unmarshal(decoded, &result); err == nil {
			return &result, nil
		}
	}

	if observer != nil {
		observer.Error(ctx, "Error decoding server JSON",
			observability.Error(err),
			observability.String(observability.AttrPayload, utils.TruncateStringDefault(string(payload))),
		)
	}
	return nil, newDecodeError(payload, err)
}

func logErrorResponse(ctx context.Context, observer observability.Provider, status int, payload string) {
	if observer == nil {
		return
	}
	observer.Error(ctx, "The server responded with an error",
		observability.Int(observability.AttrHTTPStatusCode, status),
		observability.String(observability.AttrPayload, utils.TruncateString(payload, 2000)),
	)
}
