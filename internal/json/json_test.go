package json

import (
	"strings"
	"testing"
)

type sample struct {
	Name    string `json:"name"`
	Payload []byte `json:"payload,omitempty"`
	Skipped string `json:"-"`
	Count   int    `json:"count,omitempty"`
}

// TestMarshal_StandardLibrarySemantics verifies tags, omitempty and base64 byte slices.
func TestMarshal_StandardLibrarySemantics(t *testing.T) {
	encoded, err := Marshal(sample{Name: "a", Payload: []byte("hi"), Skipped: "x"})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	got := string(encoded)
	if got != `{"name":"a","payload":"aGk="}` {
		t.Errorf("unexpected encoding: %s", got)
	}
}

// TestUnmarshal_RoundTrip verifies that decoding restores the encoded value.
func TestUnmarshal_RoundTrip(t *testing.T) {
	var decoded sample
	if err := Unmarshal([]byte(`{"name":"b","payload":"aGk=","count":3}`), &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if decoded.Name != "b" || string(decoded.Payload) != "hi" || decoded.Count != 3 {
		t.Errorf("unexpected decoded value: %+v", decoded)
	}
}

// TestUnmarshal_InvalidInput verifies that malformed JSON is reported.
func TestUnmarshal_InvalidInput(t *testing.T) {
	var decoded sample
	if err := Unmarshal([]byte(`{"name":`), &decoded); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

// TestValid verifies the validity check on a few inputs.
func TestValid(t *testing.T) {
	cases := map[string]bool{
		`{"a":1}`:   true,
		`[1,2,3]`:   true,
		`{"a":`:     false,
		`not json`:  false,
		`  "text" `: true,
	}

	for input, expected := range cases {
		if got := Valid([]byte(input)); got != expected {
			t.Errorf("Valid(%q) = %v, expected %v", strings.TrimSpace(input), got, expected)
		}
	}
}
