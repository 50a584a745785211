package domain

// The API maps every failure onto one of five error kinds. Resource managers
// return these; the HTTP layer translates them to status codes and never
// forwards store-internal detail beyond the message.

// ValidationError marks malformed or empty required input.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// AuthenticationError marks a missing, invalid or expired credential.
type AuthenticationError struct {
	Message string
}

func (e AuthenticationError) Error() string { return e.Message }

// NotFoundError marks a resource that is absent or not owned by the requester.
type NotFoundError struct {
	Message string
}

func (e NotFoundError) Error() string { return e.Message }

// ConflictError marks a duplicate unique field or replayed request.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string { return e.Message }

// InternalError marks an unexpected store or runtime failure. Its message is
// written by our own code, never copied from the underlying error.
type InternalError struct {
	Message string
}

func (e InternalError) Error() string { return e.Message }
