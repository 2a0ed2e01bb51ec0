package auth

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/paymentsops/ipn-ingest/internal/config"
)

// Outcome is a single scheme's verdict on a request.
type Outcome int

const (
	// OutcomeNoCredentials means the request carried nothing for this scheme.
	OutcomeNoCredentials Outcome = iota
	// OutcomeRejected means credential material was present but malformed or
	// did not match any configured pair.
	OutcomeRejected
	// OutcomeAccepted means the scheme matched a configured pair.
	OutcomeAccepted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "no_credentials"
	}
}

// Scheme authenticates a request from its headers. Schemes are evaluated in
// sequence and the first acceptance wins; adding a scheme never touches call
// sites.
type Scheme interface {
	Name() string
	Authenticate(h http.Header) Outcome
}

// BasicScheme accepts an Authorization: Basic credential, decoded and split on
// the first colon.
type BasicScheme struct {
	creds []config.Credential
}

func NewBasicScheme(creds []config.Credential) *BasicScheme {
	return &BasicScheme{creds: creds}
}

func (s *BasicScheme) Name() string { return "basic" }

func (s *BasicScheme) Authenticate(h http.Header) Outcome {
	raw := strings.TrimSpace(h.Get("Authorization"))
	if raw == "" {
		return OutcomeNoCredentials
	}

	const prefix = "Basic "
	if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return OutcomeRejected
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw[len(prefix):]))
	if err != nil {
		return OutcomeRejected
	}
	identity, secret, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return OutcomeRejected
	}

	return match(s.creds, identity, secret)
}

// HeaderPairScheme accepts an (identity, secret) pair carried in two raw
// request headers, compared for exact equality against configured pairs.
type HeaderPairScheme struct {
	identityHeader string
	secretHeader   string
	creds          []config.Credential
}

func NewHeaderPairScheme(identityHeader, secretHeader string, creds []config.Credential) *HeaderPairScheme {
	return &HeaderPairScheme{
		identityHeader: identityHeader,
		secretHeader:   secretHeader,
		creds:          creds,
	}
}

func (s *HeaderPairScheme) Name() string { return "header_pair" }

func (s *HeaderPairScheme) Authenticate(h http.Header) Outcome {
	identity := h.Get(s.identityHeader)
	secret := h.Get(s.secretHeader)
	if identity == "" && secret == "" {
		return OutcomeNoCredentials
	}
	return match(s.creds, identity, secret)
}

func match(creds []config.Credential, identity, secret string) Outcome {
	for _, c := range creds {
		if c.Identity == identity && c.Secret == secret {
			return OutcomeAccepted
		}
	}
	return OutcomeRejected
}

// Attempt records one scheme's verdict for operational diagnosis. Identity is
// the caller's claimed identity where the scheme exposes one; secrets are
// never captured.
type Attempt struct {
	Scheme   string
	Outcome  Outcome
	Identity string
}

// Authenticator evaluates the configured schemes in order.
type Authenticator struct {
	schemes []Scheme
}

// NewAuthenticator builds the scheme set from config. The bank delivers either
// convention non-deterministically across deployments, so both schemes are
// active at once when both have pairs configured.
func NewAuthenticator(cfg config.Config) *Authenticator {
	var schemes []Scheme
	if len(cfg.BasicCredentials) > 0 {
		schemes = append(schemes, NewBasicScheme(cfg.BasicCredentials))
	}
	if len(cfg.HeaderCredentials) > 0 {
		schemes = append(schemes, NewHeaderPairScheme(cfg.IdentityHeader, cfg.SecretHeader, cfg.HeaderCredentials))
	}
	return &Authenticator{schemes: schemes}
}

// Authenticate returns true when any scheme accepts the request. The attempts
// describe every scheme's verdict so failures can be diagnosed without
// leaking any distinction to the caller.
func (a *Authenticator) Authenticate(h http.Header) (bool, []Attempt) {
	attempts := make([]Attempt, 0, len(a.schemes))
	ok := false
	for _, s := range a.schemes {
		outcome := s.Authenticate(h)
		attempts = append(attempts, Attempt{
			Scheme:   s.Name(),
			Outcome:  outcome,
			Identity: claimedIdentity(s, h),
		})
		if outcome == OutcomeAccepted {
			ok = true
		}
	}
	return ok, attempts
}

// claimedIdentity extracts the identity a request claims for a scheme, for
// log lines only.
func claimedIdentity(s Scheme, h http.Header) string {
	switch s := s.(type) {
	case *HeaderPairScheme:
		return h.Get(s.identityHeader)
	case *BasicScheme:
		raw := strings.TrimSpace(h.Get("Authorization"))
		const prefix = "Basic "
		if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
			return ""
		}
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw[len(prefix):]))
		if err != nil {
			return ""
		}
		identity, _, _ := strings.Cut(string(decoded), ":")
		return identity
	default:
		return ""
	}
}
