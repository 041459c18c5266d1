package score

import "context"

type unavailableProvider struct {
	err error
}

func (p unavailableProvider) Complete(context.Context, string) (string, error) {
	return "", p.err
}

// Unavailable returns a Provider whose every call fails with err. Used when a
// real provider cannot be constructed: scoring then degrades to the fallback
// value instead of aborting the run.
func Unavailable(err error) Provider {
	if err == nil {
		err = ErrUnavailable
	}
	return unavailableProvider{err: err}
}
