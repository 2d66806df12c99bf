package genai

import (
	"strings"

	"github.com/leofalp/genai-go/internal/utils"
)

// Roles of a Content.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Blob is inline binary data such as an image.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Part is one piece of a Content: either text or inline data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Text returns a text part.
func Text(text string) Part {
	return Part{Text: text}
}

// Data returns an inline data part, for example Data("image/png", png).
func Data(mimeType string, data []byte) Part {
	return Part{InlineData: &Blob{MimeType: mimeType, Data: data}}
}

// Content is one turn of a conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// NewUserContent returns a user turn made of parts.
func NewUserContent(parts ...Part) Content {
	return Content{Role: RoleUser, Parts: parts}
}

// HarmCategory classifies content for safety settings and ratings.
type HarmCategory string

const (
	HarmCategoryUnspecified      HarmCategory = "HARM_CATEGORY_UNSPECIFIED"
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// BlockThreshold is the probability at and above which content is blocked.
type BlockThreshold string

const (
	BlockThresholdUnspecified BlockThreshold = "HARM_BLOCK_THRESHOLD_UNSPECIFIED"
	BlockLowAndAbove          BlockThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove       BlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh             BlockThreshold = "BLOCK_ONLY_HIGH"
	BlockNone                 BlockThreshold = "BLOCK_NONE"
)

// HarmProbability is the rated likelihood of harm.
type HarmProbability string

const (
	HarmProbabilityUnspecified HarmProbability = "HARM_PROBABILITY_UNSPECIFIED"
	HarmProbabilityNegligible  HarmProbability = "NEGLIGIBLE"
	HarmProbabilityLow         HarmProbability = "LOW"
	HarmProbabilityMedium      HarmProbability = "MEDIUM"
	HarmProbabilityHigh        HarmProbability = "HIGH"
)

// FinishReason is why a candidate stopped generating.
type FinishReason string

const (
	FinishReasonUnspecified FinishReason = "FINISH_REASON_UNSPECIFIED"
	FinishReasonStop        FinishReason = "STOP"
	FinishReasonMaxTokens   FinishReason = "MAX_TOKENS"
	FinishReasonSafety      FinishReason = "SAFETY"
	FinishReasonRecitation  FinishReason = "RECITATION"
	FinishReasonOther       FinishReason = "OTHER"
)

// IsStop reports whether r is the natural end of generation. The comparison
// ignores case.
func (r FinishReason) IsStop() bool {
	return strings.EqualFold(string(r), string(FinishReasonStop))
}

// BlockReason is why a prompt was rejected.
type BlockReason string

const (
	BlockReasonUnspecified BlockReason = "BLOCK_REASON_UNSPECIFIED"
	BlockReasonSafety      BlockReason = "SAFETY"
	BlockReasonOther       BlockReason = "OTHER"
)

// GenerationConfig holds the optional generation parameters. Nil fields are
// left to the server default.
type GenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	TopP            *float32 `json:"topP,omitempty"`
	TopK            *int32   `json:"topK,omitempty"`
	CandidateCount  *int32   `json:"candidateCount,omitempty"`
	MaxOutputTokens *int32   `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// SafetySetting sets the blocking threshold of one harm category.
type SafetySetting struct {
	Category  HarmCategory   `json:"category"`
	Threshold BlockThreshold `json:"threshold"`
}

// SafetyRating is the rating of one harm category.
type SafetyRating struct {
	Category    HarmCategory    `json:"category"`
	Probability HarmProbability `json:"probability"`
	Blocked     bool            `json:"blocked,omitempty"`
}

// CitationSource attributes a span of the generated text.
type CitationSource struct {
	StartIndex int    `json:"startIndex,omitempty"`
	EndIndex   int    `json:"endIndex,omitempty"`
	URI        string `json:"uri,omitempty"`
	License    string `json:"license,omitempty"`
}

// CitationMetadata lists the sources of a candidate.
type CitationMetadata struct {
	CitationSources []CitationSource `json:"citationSources,omitempty"`
}

// CandidateResponse is one generated alternative.
type CandidateResponse struct {
	Index            int               `json:"index"`
	Content          Content           `json:"content"`
	SafetyRatings    []SafetyRating    `json:"safetyRatings,omitempty"`
	FinishReason     FinishReason      `json:"finishReason,omitempty"`
	CitationMetadata *CitationMetadata `json:"citationMetadata,omitempty"`
}

// PromptFeedback reports on the prompt itself.
type PromptFeedback struct {
	BlockReason   BlockReason    `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// UsageMetadata is the token accounting of a call.
type UsageMetadata struct {
	PromptTokenCount        int32 `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount    int32 `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount         int32 `json:"totalTokenCount,omitempty"`
	CachedContentTokenCount int32 `json:"cachedContentTokenCount,omitempty"`
}

// GenerateContentResponse is the result of a generate call, or one chunk of
// a streamed one.
type GenerateContentResponse struct {
	Candidates     []CandidateResponse `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback     `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata      `json:"usageMetadata,omitempty"`
}

// Text returns the concatenated text parts of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}
	return builder.String()
}

// FinishReason returns the finish reason of the first candidate.
func (r *GenerateContentResponse) FinishReason() FinishReason {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].FinishReason
}

// CountTokensResponse is the result of a token count.
type CountTokensResponse struct {
	TotalTokens int32 `json:"totalTokens"`
}

// Model describes a model available to the API key.
type Model struct {
	Name                       string   `json:"name"`
	BaseModelID                string   `json:"baseModelId,omitempty"`
	Version                    string   `json:"version,omitempty"`
	DisplayName                string   `json:"displayName,omitempty"`
	Description                string   `json:"description,omitempty"`
	InputTokenLimit            int32    `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int32    `json:"outputTokenLimit,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
	Temperature                *float32 `json:"temperature,omitempty"`
	TopP                       *float32 `json:"topP,omitempty"`
	TopK                       *int32   `json:"topK,omitempty"`
}

// ListModelsResponse is one page of a model listing.
type ListModelsResponse struct {
	Models        []Model `json:"models,omitempty"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// Ptr returns a pointer to v, for the optional fields of GenerationConfig:
//
//	genai.GenerationConfig{Temperature: genai.Ptr[float32](0.2)}
func Ptr[T any](v T) *T {
	return utils.Ptr(v)
}
