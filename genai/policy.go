package genai

// checkResponse applies the checks every generated response passes, buffered
// or streamed: the prompt must not be blocked and the first candidate, if it
// reports a finish reason, must have stopped naturally.
func checkResponse(response *GenerateContentResponse) error {
	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return &GenerateContentError{
			kind:        ErrPromptBlocked,
			BlockReason: response.PromptFeedback.BlockReason,
			Response:    response,
		}
	}

	if reason := response.FinishReason(); reason != "" && !reason.IsStop() {
		return &GenerateContentError{
			kind:         ErrResponseStoppedEarly,
			FinishReason: reason,
			Response:     response,
		}
	}

	return nil
}

// internalError wraps a failure of the call itself.
func internalError(err error) error {
	return &GenerateContentError{kind: ErrInternal, Err: err}
}
