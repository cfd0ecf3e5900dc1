package apicall

import "context"

// Requester is the one-method capability call sites depend on.  *Service
// implements it, and tests can substitute their own.
type Requester interface {
	Request(ctx context.Context, d Descriptor, into interface{}) error
}

// Service is a thin facade over an Executor, usually a *Client.  It
// passes calls through unchanged.
type Service struct {
	client Executor
}

// NewService returns a Service delegating to client.  If client is nil,
// a zero *Client is used.
func NewService(client Executor) *Service {
	if client == nil {
		client = &Client{}
	}
	return &Service{client: client}
}

// Request implements Requester by delegating to the executor.
func (s *Service) Request(ctx context.Context, d Descriptor, into interface{}) error {
	return s.client.Execute(ctx, d, into)
}

// Request calls the endpoint through r and returns the decoded response.
func Request[R any](ctx context.Context, r Requester, ep Endpoint[R]) (R, error) {
	var v R
	if err := r.Request(ctx, ep.Descriptor(), &v); err != nil {
		var zero R
		return zero, err
	}
	return v, nil
}
