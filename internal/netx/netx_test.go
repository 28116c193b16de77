package netx

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	online := Probe(ln.Addr().String(), time.Second)
	require.NoError(t, online(context.Background()))

	addr := ln.Addr().String()
	ln.Close()
	offline := Probe(addr, 200*time.Millisecond)
	require.Error(t, offline(context.Background()))
}

func TestUploadToPresignedURL(t *testing.T) {
	file := []byte("signature png bytes")

	t.Run("success", func(t *testing.T) {
		var gotBody []byte
		var gotMethod, gotCT string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			gotBody = body
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(context.Background(), ts.URL+"/k?X-Amz-Signature=abc", file)
		require.NoError(t, err)
		require.Equal(t, http.MethodPut, gotMethod)
		require.Equal(t, "application/octet-stream", gotCT)
		require.True(t, bytes.Equal(file, gotBody))
	})

	t.Run("non-200", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(context.Background(), ts.URL, file)
		require.Error(t, err)
		require.True(t, strings.Contains(err.Error(), "403"))
	})
}
