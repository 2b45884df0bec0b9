package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ContextWithClaims returns a new context with the given Claims attached.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts Claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// Policy decides which gRPC methods need a token and which roles they need.
type Policy struct {
	// Public methods are served without a token.
	Public []string
	// MethodRoles lists, per full method name, the roles of which the caller
	// must hold at least one. Methods not listed only need a valid token.
	MethodRoles map[string][]string
}

// UnaryAuthInterceptor returns a gRPC unary server interceptor that validates
// bearer tokens and enforces policy.
func UnaryAuthInterceptor(jwtService *JWTService, policy Policy) grpc.UnaryServerInterceptor {
	public := make(map[string]struct{}, len(policy.Public))
	for _, m := range policy.Public {
		public[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		tokenString, err := bearerToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		if roles, ok := policy.MethodRoles[info.FullMethod]; ok && !hasAnyRole(claims, roles) {
			return nil, status.Errorf(codes.PermissionDenied, "required role(s): %v", roles)
		}

		return handler(ContextWithClaims(ctx, claims), req)
	}
}

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	values := md.Get("authorization")
	if len(values) == 0 || values[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing authorization header")
	}
	return strings.TrimPrefix(values[0], "Bearer "), nil
}

func hasAnyRole(claims *Claims, roles []string) bool {
	for _, r := range roles {
		if claims.HasRole(r) {
			return true
		}
	}
	return false
}
