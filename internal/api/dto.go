package api

// OCRResponse carries text recognized from an uploaded label photo.
type OCRResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of non-analysis error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}
