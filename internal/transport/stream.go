package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leofalp/genai-go/internal/utils"
	"github.com/leofalp/genai-go/providers/observability"
)

// maxSSELineSize is the longest stream line accepted (1 MiB). Longer lines
// end the sequence with an error wrapping bufio.ErrTooLong.
const maxSSELineSize = 1024 * 1024

var dataPrefix = []byte("data:")

// SendStreaming returns a lazy, single-pass sequence of the chunks of a
// server-sent-events response. The request is sent when ranging starts.
//
// Each "data:" line is decoded into one T and yielded in server order. Other
// non-empty lines are collected; if any were seen when the stream ends, they
// are decoded with ParseError and yielded as the final error. A non-200
// status yields no chunks, only ParseError of the whole body. Breaking out of
// the range closes the connection and no further lines are read.
func SendStreaming[T any](ctx context.Context, service *Service, request Request) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		callCtx, tracked := service.startCall(ctx, request, true)

		err := streamChunks(callCtx, service, tracked, request, yield)
		tracked.finish(callCtx, err)
		if err != nil {
			yield(nil, err)
		}
	}
}

// streamChunks yields every decoded chunk and returns the terminal error, if
// any. It returns nil when the consumer stops early.
func streamChunks[T any](ctx context.Context, service *Service, tracked *call, request Request, yield func(*T, error) bool) error {
	httpRequest, body, err := service.newHTTPRequest(ctx, request, true)
	if err != nil {
		return err
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
		return fmt.Errorf("send stream request: %w", err)
	}
	defer utils.CloseWithLog(response.Body)

	tracked.recordLatency(ctx, float64(elapsed.Milliseconds()))
	tracked.event(observability.EventStreamStarted,
		observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
		observability.Duration(observability.AttrHTTPDuration, elapsed),
	)

	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)

	if response.StatusCode != http.StatusOK {
		var responseBody strings.Builder
		for scanner.Scan() {
			responseBody.Write(scanner.Bytes())
			responseBody.WriteByte('\n')
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		logErrorResponse(ctx, tracked.observer, response.StatusCode, responseBody.String())
		return parseStatusError(response.StatusCode, []byte(responseBody.String()))
	}

	// extra holds the lines that are not events; a server that fails mid-stream
	// writes its error there instead of in a data line.
	var extra bytes.Buffer
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Bytes()
		if tracked.observer != nil {
			tracked.observer.Debug(ctx, "Stream response",
				observability.String(observability.AttrPayload, utils.TruncateStringDefault(string(line))),
			)
		}

		payload, isData := bytes.CutPrefix(line, dataPrefix)
		if !isData {
			extra.Write(line)
			continue
		}
		payload = bytes.TrimPrefix(payload, []byte(" "))
		if !utf8.Valid(payload) {
			return newDecodeError(payload, ErrInvalidUTF8)
		}

		chunk, err := decodeResponse[T](ctx, tracked.observer, payload)
		if err != nil {
			return err
		}
		tracked.chunk(ctx, index)
		index++
		if !yield(chunk, nil) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}

	tracked.event(observability.EventStreamEnd, observability.Int(observability.AttrChunkIndex, index))
	if extra.Len() > 0 {
		return ParseError(extra.Bytes())
	}
	return nil
}

func (c *call) chunk(ctx context.Context, index int) {
	if c.observer == nil {
		return
	}
	c.span.AddEvent(observability.EventStreamChunk, observability.Int(observability.AttrChunkIndex, index))
	c.observer.Counter(observability.MetricStreamChunks).Add(ctx, 1,
		observability.String(observability.AttrOperation, c.operation),
	)
}
