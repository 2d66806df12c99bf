// Command genai talks to the generative-language API from the shell.
//
//	genai generate "Write a haiku about Go"
//	echo "Tell me a story" | genai stream
//	genai count-tokens --model gemini-1.5-flash "How long is this?"
//	genai models list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
