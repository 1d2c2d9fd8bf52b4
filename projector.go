package jwtauth

import "fmt"

type claimProjection struct {
	segments []pathSegment
	header   string
}

// ClaimHeaderProjector copies configured claim values from a verified token
// into upstream headers. It only ever runs after verification succeeded, so
// it re-decodes without re-verifying. Absent claim paths are silent no-ops.
type ClaimHeaderProjector struct {
	projections []claimProjection
	logger      Logger
}

func NewClaimHeaderProjector(mappings []ClaimHeader) (*ClaimHeaderProjector, error) {
	projections := make([]claimProjection, 0, len(mappings))
	for _, m := range mappings {
		if m.Header == "" {
			return nil, fmt.Errorf("claim header mapping for path %q is missing a header name", m.Path)
		}
		segments, err := parseClaimPath(m.Path)
		if err != nil {
			return nil, err
		}
		projections = append(projections, claimProjection{segments: segments, header: m.Header})
	}

	return &ClaimHeaderProjector{
		projections: projections,
		logger:      defLogger{},
	}, nil
}

func (p *ClaimHeaderProjector) WithLogger(logger Logger) *ClaimHeaderProjector {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Project evaluates every configured mapping against the token claims and
// sets the matching headers. Pairs are independent; mapping order decides
// last-write-wins if two paths target the same header.
func (p *ClaimHeaderProjector) Project(raw string, headers HeaderWriter) {
	if raw == "" || len(p.projections) == 0 {
		return
	}

	decoded, err := DecodeToken(raw)
	if err != nil {
		// unreachable after verification, but never let projection reject
		p.logger.Warn("claim projection skipped: %v", err)
		return
	}

	claims := map[string]any(decoded.Claims)
	for _, projection := range p.projections {
		value, ok := evalClaimPath(claims, projection.segments)
		if !ok {
			continue
		}
		if rendered, ok := renderClaimValue(value); ok {
			headers.Set(projection.header, rendered)
		}
	}
}
