package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	h := http.NotFoundHandler()
	srv := New(":0", h)

	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.Positive(t, srv.ReadHeaderTimeout)
	assert.Greater(t, srv.WriteTimeout, srv.ReadTimeout)
}
