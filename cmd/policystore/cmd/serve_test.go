package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

type recordingShutdowner struct {
	called bool
	err    error
}

func (r *recordingShutdowner) Shutdown(ctx context.Context) error {
	r.called = true
	return r.err
}

func TestStopServers(t *testing.T) {
	t.Run("stops both servers", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("Listen failed: %v", err)
		}
		metricsServer := &http.Server{Handler: http.NotFoundHandler()}
		served := make(chan error, 1)
		go func() { served <- metricsServer.Serve(listener) }()

		grpcServer := &recordingShutdowner{}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := stopServers(ctx, grpcServer, metricsServer); err != nil {
			t.Fatalf("stopServers failed: %v", err)
		}
		if !grpcServer.called {
			t.Error("expected gRPC server shutdown")
		}
		select {
		case err := <-served:
			if !errors.Is(err, http.ErrServerClosed) {
				t.Errorf("expected ErrServerClosed, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("metrics server still serving")
		}
	})

	t.Run("no metrics server", func(t *testing.T) {
		grpcServer := &recordingShutdowner{}
		if err := stopServers(context.Background(), grpcServer, nil); err != nil {
			t.Fatalf("stopServers failed: %v", err)
		}
		if !grpcServer.called {
			t.Error("expected gRPC server shutdown")
		}
	})

	t.Run("gRPC error is returned", func(t *testing.T) {
		wantErr := errors.New("forced stop")
		grpcServer := &recordingShutdowner{err: wantErr}
		if err := stopServers(context.Background(), grpcServer, nil); !errors.Is(err, wantErr) {
			t.Errorf("expected %v, got %v", wantErr, err)
		}
	})
}
