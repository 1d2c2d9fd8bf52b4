package jwtauth

import "context"

// OutcomeKind tags the terminal state a request reached.
type OutcomeKind int

const (
	// OutcomeSkipped passes the request through untouched: a preflight the
	// route does not authenticate, or a request a prior filter in the chain
	// already authenticated.
	OutcomeSkipped OutcomeKind = iota
	OutcomeAuthenticated
	OutcomeAnonymous
	OutcomeRejected
)

// AuthOutcome is the single decision produced per request.
type AuthOutcome struct {
	Kind       OutcomeKind
	Consumer   *Consumer
	Credential *JWTSecret
	Token      string

	// Status and Message form the wire rejection pair; only set on
	// OutcomeRejected.
	Status  int
	Message string
}

func skippedOutcome() *AuthOutcome {
	return &AuthOutcome{Kind: OutcomeSkipped}
}

func authenticatedOutcome(consumer *Consumer, credential *JWTSecret, token string) *AuthOutcome {
	return &AuthOutcome{
		Kind:       OutcomeAuthenticated,
		Consumer:   consumer,
		Credential: credential,
		Token:      token,
	}
}

// anonymousOutcome carries the fallback consumer and never a credential.
func anonymousOutcome(consumer *Consumer) *AuthOutcome {
	return &AuthOutcome{
		Kind:     OutcomeAnonymous,
		Consumer: consumer,
	}
}

func rejectedOutcome(err error) *AuthOutcome {
	status, message := rejectionFor(err)
	return &AuthOutcome{
		Kind:    OutcomeRejected,
		Status:  status,
		Message: message,
	}
}

// Context enriches ctx with the identity the outcome established, so
// downstream handlers and chained filters can read it back.
func (o *AuthOutcome) Context(ctx context.Context) context.Context {
	switch o.Kind {
	case OutcomeAuthenticated:
		ctx = WithConsumer(ctx, o.Consumer)
		ctx = WithCredential(ctx, o.Credential)
		ctx = WithToken(ctx, o.Token)
	case OutcomeAnonymous:
		ctx = WithConsumer(ctx, o.Consumer)
	}
	return ctx
}
