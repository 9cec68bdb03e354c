package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestServe(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("Stops cleanly when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- Serve(ctx, NewHTTPServer("0", http.NotFoundHandler()), time.Second)
		}()

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Reports a listen failure", func(t *testing.T) {
		err := Serve(context.Background(), NewHTTPServer("not-a-port", http.NotFoundHandler()), time.Second)

		assert.ErrorContains(t, err, "failed to start server")
	})
}
