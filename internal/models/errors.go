package models

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Field string `json:"field,omitempty"`
	Msg   string `json:"msg"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}
