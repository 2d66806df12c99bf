// Package utils holds the small helpers shared by the transport and the CLI:
// closing response bodies with a logged failure, truncating payloads for log
// output, rendering a request as an equivalent cURL command, and [Ptr] for
// optional generation parameters.
package utils
