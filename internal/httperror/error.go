package httperror

// Error is the body of every error response. Code carries the stable
// machine-readable error code, Message the human-readable detail.
type Error struct {
	Code    string `json:"code" example:"not_found"`
	Message string `json:"error" example:"there is no category matching your query"`
}

func New(code string, e error) Error {
	return Error{
		Code:    code,
		Message: e.Error(),
	}
}
