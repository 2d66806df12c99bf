// Package transport is the single point of contact with the generative
// language API. A [Service] owns the API key and endpoint, turns a typed
// request value into a signed HTTP request, and interprets the response as a
// decoded value, a structured server error ([*RPCError]) or a local failure.
//
// [Send] performs a buffered call. [SendStreaming] returns a lazy sequence
// decoded from a server-sent-events response: nothing is sent until the
// sequence is ranged over, and stopping early closes the connection.
package transport
