package genai

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/leofalp/genai-go/internal/transport"
)

const modelResourcePrefix = "models/"

// modelResourceName prefixes name with "models/" unless it already is.
func modelResourceName(name string) string {
	if strings.HasPrefix(name, modelResourcePrefix) {
		return name
	}
	return modelResourcePrefix + name
}

type generateContentRequest struct {
	Model            string            `json:"-"`
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []SafetySetting   `json:"safetySettings,omitempty"`
	IsStreaming      bool              `json:"-"`
}

func (r generateContentRequest) URL() string {
	if r.IsStreaming {
		return transport.BaseURL + "/" + r.Model + ":streamGenerateContent?alt=sse"
	}
	return transport.BaseURL + "/" + r.Model + ":generateContent"
}

type countTokensRequest struct {
	Model    string    `json:"-"`
	Contents []Content `json:"contents"`
}

func (r countTokensRequest) URL() string {
	return transport.BaseURL + "/" + r.Model + ":countTokens"
}

type listModelsRequest struct {
	PageSize  int
	PageToken string
}

func (r listModelsRequest) URL() string {
	query := url.Values{}
	if r.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(r.PageSize))
	}
	if r.PageToken != "" {
		query.Set("pageToken", r.PageToken)
	}
	if len(query) == 0 {
		return transport.BaseURL + "/models"
	}
	return transport.BaseURL + "/models?" + query.Encode()
}

func (listModelsRequest) Method() string { return http.MethodGet }

type getModelRequest struct {
	Name string
}

func (r getModelRequest) URL() string {
	return transport.BaseURL + "/" + modelResourceName(r.Name)
}

func (getModelRequest) Method() string { return http.MethodGet }
