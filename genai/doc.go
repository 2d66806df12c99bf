// Package genai is a client for the Google generative language API.
//
// A [GenerativeModel] generates content, streams it, and counts tokens:
//
//	model := genai.NewGenerativeModel("gemini-pro", os.Getenv("GEMINI_API_KEY"))
//	response, err := model.GenerateContent(ctx, genai.Text("Write a haiku about spring"))
//	if err != nil {
//		return err
//	}
//	fmt.Println(response.Text())
//
// Every response, buffered or streamed chunk by chunk, is checked before it
// is returned: a blocked prompt fails with [ErrPromptBlocked], a first
// candidate that stopped for a reason other than STOP fails with
// [ErrResponseStoppedEarly]. Both are [*GenerateContentError] values carrying
// the response. A failure of the call itself matches [ErrInternal] and wraps
// the cause, which is an [*RPCError] when the server reported it.
//
// [GenerativeModel.GenerateContentStream] returns a [GenerateContentStream]
// that sends nothing until it is read. [Chat] keeps the history of a
// conversation.
package genai
