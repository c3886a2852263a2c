package holdings

import "errors"

var (
	ErrNoDataNoNetwork = errors.New("no internet connection and no cached holdings available")
	ErrNoCachedData    = errors.New("no cached holdings available")
	ErrNoNetwork       = errors.New("no internet connection")
)

// policyError reports whether err is a decision of the sync policy rather
// than a collaborator failure. Policy errors are never replaced by cache.
func policyError(err error) bool {
	return errors.Is(err, ErrNoDataNoNetwork) || errors.Is(err, ErrNoCachedData)
}
