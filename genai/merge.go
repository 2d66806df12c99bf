package genai

// mergeResponses folds streamed chunks into one response. Candidates are
// matched by Index; adjacent text parts are concatenated, other parts are
// appended. The last finish reason, safety ratings and usage metadata win.
func mergeResponses(chunks []*GenerateContentResponse) *GenerateContentResponse {
	merged := &GenerateContentResponse{}
	positions := make(map[int]int)

	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		if chunk.PromptFeedback != nil && merged.PromptFeedback == nil {
			merged.PromptFeedback = chunk.PromptFeedback
		}
		if chunk.UsageMetadata != nil {
			merged.UsageMetadata = chunk.UsageMetadata
		}

		for _, candidate := range chunk.Candidates {
			position, seen := positions[candidate.Index]
			if !seen {
				position = len(merged.Candidates)
				positions[candidate.Index] = position
				merged.Candidates = append(merged.Candidates, CandidateResponse{Index: candidate.Index})
			}
			mergeCandidate(&merged.Candidates[position], candidate)
		}
	}

	return merged
}

func mergeCandidate(target *CandidateResponse, delta CandidateResponse) {
	if target.Content.Role == "" {
		target.Content.Role = delta.Content.Role
	}
	for _, part := range delta.Content.Parts {
		last := len(target.Content.Parts) - 1
		if part.InlineData == nil && last >= 0 && target.Content.Parts[last].InlineData == nil {
			target.Content.Parts[last].Text += part.Text
			continue
		}
		target.Content.Parts = append(target.Content.Parts, part)
	}

	if delta.FinishReason != "" {
		target.FinishReason = delta.FinishReason
	}
	if len(delta.SafetyRatings) > 0 {
		target.SafetyRatings = delta.SafetyRatings
	}
	if delta.CitationMetadata != nil {
		if target.CitationMetadata == nil {
			target.CitationMetadata = &CitationMetadata{}
		}
		target.CitationMetadata.CitationSources = append(target.CitationMetadata.CitationSources, delta.CitationMetadata.CitationSources...)
	}
}
