package remote

import (
	"context"
	"errors"
	"time"

	"habitsync/internal/common"
	"habitsync/internal/logging"
)

// AccountStatusProbe answers "is this device backed by a reachable account"
// with a bounded ping. Not signed in is a definitive no; an unreachable or
// slow server is an error the caller has to interpret.
type AccountStatusProbe struct {
	client  Client
	timeout time.Duration
	logger  logging.Logger
}

func NewAccountStatusProbe(client Client, timeout time.Duration, logger logging.Logger) *AccountStatusProbe {
	return &AccountStatusProbe{
		client:  client,
		timeout: timeout,
		logger:  logger.With("module", "account_probe"),
	}
}

func (p *AccountStatusProbe) Check(ctx context.Context) (bool, error) {
	if !p.client.SignedIn() {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.client.Ping(ctx)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return false, common.ErrProbeTimeout
	}
	if errors.Is(err, common.ErrUnavailable) {
		return false, common.ErrProbeUnavailable
	}
	return false, err
}
