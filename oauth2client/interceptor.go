package oauth2client

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// bearer returns the stored access token or ErrNoAccessToken.
func (tm *TokenManager) bearer() (string, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if !tm.token.Valid() {
		return "", ErrNoAccessToken
	}
	return tm.token.AccessToken, nil
}

// BearerToken returns the stored access token, or ErrNoAccessToken if none is
// stored. It never refreshes; pair it with IsExpired and Refresh when needed.
func (tm *TokenManager) BearerToken() (string, error) {
	return tm.bearer()
}

// UnaryClientInterceptor returns a gRPC unary client interceptor that adds the
// stored access token as "authorization: Bearer <token>" to outgoing metadata.
//
// The RPC is aborted with ErrNoAccessToken if no token is stored.
//
// Usage:
//
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithUnaryInterceptor(tokenManager.UnaryClientInterceptor()),
//	)
func (tm *TokenManager) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		token, err := tm.bearer()
		if err != nil {
			return err
		}

		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor returns a gRPC stream client interceptor that adds
// the stored access token to outgoing metadata.
// Stream creation fails with ErrNoAccessToken if no token is stored.
func (tm *TokenManager) StreamClientInterceptor() grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		token, err := tm.bearer()
		if err != nil {
			return nil, err
		}

		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)

		return streamer(ctx, desc, cc, method, opts...)
	}
}
