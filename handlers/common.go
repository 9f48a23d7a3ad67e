package handlers

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	NotFoundResponse = Response{"video not found"}
	DBErrorResponse  = Response{"database error"}
)
