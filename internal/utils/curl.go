package utils

import (
	"net/http"
	"slices"
	"strings"
)

// CURLCommand renders request as an equivalent cURL command line. body is the
// payload already attached to the request. Headers named in placeholders are
// written with the placeholder in double quotes instead of their value, so a
// secret such as an API key is referenced through the shell environment and
// never printed.
func CURLCommand(request *http.Request, body []byte, placeholders map[string]string) string {
	var builder strings.Builder
	builder.WriteString("curl")

	if request.Method != "" && request.Method != http.MethodGet {
		builder.WriteString(" -X ")
		builder.WriteString(request.Method)
	}

	names := make([]string, 0, len(request.Header))
	for name := range request.Header {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if placeholder, ok := placeholders[http.CanonicalHeaderKey(name)]; ok {
			builder.WriteString(` -H "`)
			builder.WriteString(name)
			builder.WriteString(": ")
			builder.WriteString(placeholder)
			builder.WriteString(`"`)
			continue
		}
		for _, value := range request.Header[name] {
			builder.WriteString(" -H ")
			builder.WriteString(shellQuote(name + ": " + value))
		}
	}

	builder.WriteString(" ")
	builder.WriteString(shellQuote(request.URL.String()))

	if len(body) > 0 {
		builder.WriteString(" -d ")
		builder.WriteString(shellQuote(string(body)))
	}

	return builder.String()
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
