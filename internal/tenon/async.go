package tenon

import "context"

// Callback receives the outcome of a check started with Go. result is an
// empty Result, never nil, whenever err is non-nil.
type Callback func(err error, result Result)

// Go runs the check on its own goroutine and calls done exactly once.
func (c *Client) Go(ctx context.Context, kind Kind, target string, opts Options, done Callback) {
	go func() {
		res, err := c.Check(ctx, kind, target, opts)
		if res == nil {
			res = Result{}
		}
		done(err, res)
	}()
}
