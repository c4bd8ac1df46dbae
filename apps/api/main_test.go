package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_serveDebug(t *testing.T) {
	t.Run("bad address", func(t *testing.T) {
		err := serveDebug(&http.Server{Addr: "127.0.0.1:-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "debug server error")
	})

	t.Run("shutdown", func(t *testing.T) {
		srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
		errc := make(chan error, 1)
		go func() { errc <- serveDebug(srv) }()

		require.NoError(t, srv.Shutdown(context.Background()))
		assert.NoError(t, <-errc)
	})
}
