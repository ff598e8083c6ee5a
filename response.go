package magisterium

import "encoding/json"

// FinishReasonContentFilter marks a well-formed response whose content was
// withheld by the server-side filter. It is still a success, not an error.
const FinishReasonContentFilter = "content_filter"

type choice struct {
	Message      *Message `json:"message"`
	FinishReason string   `json:"finish_reason"`
}

type chatResponse struct {
	Choices          []choice `json:"choices"`
	RelatedQuestions []string `json:"related_questions"`
}

// Completion is the interpreted outcome of a successful API call.
type Completion struct {
	Role             string
	Content          string
	FinishReason     string
	RelatedQuestions []string
}

// Filtered reports whether the answer was blocked by the content filter
// and came back empty.
func (c Completion) Filtered() bool {
	return c.FinishReason == FinishReasonContentFilter && c.Content == ""
}

// parseCompletion decodes a 200 response body. Related questions are only
// carried over when the request asked for them.
func parseCompletion(raw []byte, wantRelated bool) (Completion, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Completion{}, &APIError{
			Kind:    MalformedResponseBody,
			Message: "Received invalid JSON response from API. The service may be temporarily unavailable.",
		}
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &APIError{
			Kind:    MalformedResponseBody,
			Message: "Invalid response format: missing choices",
		}
	}
	first := resp.Choices[0]
	if first.Message == nil && first.FinishReason != FinishReasonContentFilter {
		return Completion{}, &APIError{
			Kind:    MalformedResponseBody,
			Message: "Invalid response format: missing message in choice",
		}
	}
	completion := Completion{FinishReason: first.FinishReason}
	if first.Message != nil {
		completion.Role = first.Message.Role
		completion.Content = first.Message.Content
	}
	if wantRelated {
		completion.RelatedQuestions = resp.RelatedQuestions
	}
	return completion, nil
}
