package domain

// ComponentHealth is the result of checking one external dependency.
type ComponentHealth struct {
	// Name is "embedding", "llm" or "vector store".
	Name string `json:"name"`

	// Detail names the model or backend checked.
	Detail string `json:"detail"`

	// Err is nil when the component is reachable.
	Err error `json:"-"`
}

// Healthy reports whether the check passed.
func (c ComponentHealth) Healthy() bool {
	return c.Err == nil
}
