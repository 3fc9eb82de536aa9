package calculator

// CalcRequest is the JSON body for binary operations (add, subtract, multiply, divide).
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for the binary operation endpoints.
type CalcResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    float64 `json:"result"`
}

// KeysRequest is the JSON body for POST /calculator/keys and
// POST /calculator/sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"` // "7", ".", "+", "=", "Backspace", "negate", ...
}

// SessionResponse describes a hosted calculator after a request.
type SessionResponse struct {
	ID      string  `json:"id"`
	Display Display `json:"display"`
	State   State   `json:"state"`
}

// ReplayStep records the display after one replayed key.
type ReplayStep struct {
	Key     string  `json:"key"`
	Display Display `json:"display"`
}

// ReplayResponse is the JSON response for POST /calculator/keys.
type ReplayResponse struct {
	Steps   []ReplayStep `json:"steps"`
	Display Display      `json:"display"`
	State   State        `json:"state"`
}

func sessionResponse(v SessionView) SessionResponse {
	return SessionResponse{ID: v.ID, Display: v.Display, State: v.State}
}
