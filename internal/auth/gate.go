package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentx-labs/exthost/internal/api"
	"github.com/agentx-labs/exthost/internal/contrib"
)

var _ contrib.AuthGate = (*Gate)(nil)

// ErrUnauthenticated is returned by protected tools and prompts called
// without a valid principal.
var ErrUnauthenticated = errors.New("authentication required")

// Claims are the JWT claims the gate issues and accepts.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Gate validates bearer tokens and wraps protected handlers. It implements
// contrib.AuthGate.
type Gate struct {
	secret []byte
	issuer string
	logger *slog.Logger
	now    func() time.Time
}

// NewGate returns a gate for HS256 tokens signed with secret. A gate with
// an empty secret accepts no token.
func NewGate(secret, issuer string, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{secret: []byte(secret), issuer: issuer, logger: logger, now: time.Now}
}

// Issue signs a token for subject with roles, valid for ttl.
func (g *Gate) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	if len(g.secret) == 0 {
		return "", errors.New("auth: no signing secret configured")
	}
	now := g.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Authenticate validates a raw token and returns its principal.
func (g *Gate) Authenticate(token string) (*Principal, error) {
	if len(g.secret) == 0 {
		return nil, errors.New("authentication not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
	}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token subject is required")
	}
	return &Principal{Subject: claims.Subject, Roles: claims.Roles}, nil
}

// fromRequest extracts and validates the bearer token. It returns nil and
// no error when the request carries no Authorization header.
func (g *Gate) fromRequest(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errors.New("invalid Authorization header format (expected 'Bearer <token>')")
	}
	return g.Authenticate(token)
}

// Middleware attaches the caller's principal to the request context.
// Requests without credentials pass through anonymously; requests with bad
// credentials are rejected.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := g.fromRequest(r)
		if err != nil {
			g.logger.Debug("rejected credentials", "path", r.URL.Path, "error", err)
			api.WriteUnauthorized(w, r, "Invalid or expired token")
			return
		}
		if p != nil {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPContextFunc derives an MCP request context carrying the caller's
// principal. Invalid credentials leave the context anonymous.
func (g *Gate) HTTPContextFunc(ctx context.Context, r *http.Request) context.Context {
	p, err := g.fromRequest(r)
	if err != nil {
		g.logger.Debug("ignoring invalid MCP credentials", "error", err)
		return ctx
	}
	if p == nil {
		return ctx
	}
	return WithPrincipal(ctx, p)
}

// WrapTool requires a principal before h runs.
func (g *Gate) WrapTool(h contrib.ToolHandler) contrib.ToolHandler {
	return contrib.ToolFunc(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := PrincipalFrom(ctx); !ok {
			return nil, fmt.Errorf("tool %s: %w", req.Params.Name, ErrUnauthenticated)
		}
		return h.HandleTool(ctx, req)
	})
}

// WrapPrompt requires a principal before h runs.
func (g *Gate) WrapPrompt(h contrib.PromptHandler) contrib.PromptHandler {
	return contrib.PromptFunc(func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		if _, ok := PrincipalFrom(ctx); !ok {
			return nil, fmt.Errorf("prompt %s: %w", req.Params.Name, ErrUnauthenticated)
		}
		return h.HandlePrompt(ctx, req)
	})
}

// RequireHTTP rejects requests without a principal holding permission. An
// empty permission only requires authentication.
func (g *Gate) RequireHTTP(permission string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			api.WriteUnauthorized(w, r, "")
			return
		}
		if permission != "" && !p.HasPermission(permission) {
			api.WriteForbidden(w, r, fmt.Sprintf("Permission %q required", permission))
			return
		}
		next.ServeHTTP(w, r)
	})
}
