package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	require.NoError(t, probe(healthy.URL, time.Second))
}

func TestProbeFailures(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	err := probe(broken.URL, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	assert.Error(t, probe("http://127.0.0.1:1/healthz", 100*time.Millisecond))
}
