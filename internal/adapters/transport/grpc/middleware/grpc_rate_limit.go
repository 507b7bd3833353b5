package middleware

import (
	"context"
	"net"
	"time"

	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var errRateLimited = status.Error(codes.ResourceExhausted, "rate limit exceeded")

// NewRateLimitPerIP limits unary calls per peer address.
func NewRateLimitPerIP(limit, burst, cacheSize int, ttl time.Duration) grpc.UnaryServerInterceptor {
	visitors := ratelimit.NewPerKey(limit, burst, cacheSize, ttl)

	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !visitors.Allow(peerHost(ctx)) {
			return nil, errRateLimited
		}
		return handler(ctx, req)
	}
}

// NewStreamRateLimitPerIP limits stream opens per peer address.
func NewStreamRateLimitPerIP(limit, burst, cacheSize int, ttl time.Duration) grpc.StreamServerInterceptor {
	visitors := ratelimit.NewPerKey(limit, burst, cacheSize, ttl)

	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !visitors.Allow(peerHost(ss.Context())) {
			return errRateLimited
		}
		return handler(srv, ss)
	}
}

// peerHost returns "" for calls without a peer, so they share one bucket.
func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}
