package grpcx

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestServer_HealthLifecycle(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := NewServer()
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	s.Drain()
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestUnaryServerInterceptor_RecoversPanic(t *testing.T) {
	icpt := UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Svc/Boom"}

	_, err := icpt(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestUnaryServerInterceptor_DeadlineGuard(t *testing.T) {
	icpt := UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Svc/Echo"}

	var got time.Time
	_, err := icpt(context.Background(), "x", info, func(ctx context.Context, req any) (any, error) {
		dl, ok := ctx.Deadline()
		require.True(t, ok)
		got = dl
		return req, nil
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(defaultUnaryTimeout), got, time.Second)

	// свой deadline не перетирается
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	want, _ := ctx.Deadline()
	_, err = icpt(ctx, "x", info, func(ctx context.Context, req any) (any, error) {
		dl, _ := ctx.Deadline()
		assert.Equal(t, want, dl)
		return nil, errors.New("fail")
	})
	assert.EqualError(t, err, "fail")
}

func TestIsHealthMethod(t *testing.T) {
	assert.True(t, isHealthMethod("/grpc.health.v1.Health/Check"))
	assert.False(t, isHealthMethod("/grpc.health.v1.Health/"))
	assert.False(t, isHealthMethod("/test.Svc/Echo"))
}
