// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, data []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return &buf
}

// ---- request decompression ----

func TestGunzip(t *testing.T) {
	tests := []struct {
		name            string
		contentEncoding string
		body            func(t *testing.T) io.Reader
		wantStatus      int
		wantBody        string
	}{
		{
			name:            "gzipped body is decompressed",
			contentEncoding: "gzip",
			body:            func(t *testing.T) io.Reader { return gzipped(t, []byte(`{"trips":[]}`)) },
			wantStatus:      http.StatusOK,
			wantBody:        `{"trips":[]}`,
		},
		{
			name:            "content-encoding with several values including gzip",
			contentEncoding: "gzip, deflate",
			body:            func(t *testing.T) io.Reader { return gzipped(t, []byte("payload")) },
			wantStatus:      http.StatusOK,
			wantBody:        "payload",
		},
		{
			name:       "plain body passes through",
			body:       func(*testing.T) io.Reader { return strings.NewReader("plain") },
			wantStatus: http.StatusOK,
			wantBody:   "plain",
		},
		{
			name:            "invalid gzip → 400",
			contentEncoding: "gzip",
			body:            func(*testing.T) io.Reader { return strings.NewReader("not gzipped data") },
			wantStatus:      http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Empty(t, r.Header.Get("Content-Encoding"))
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				w.WriteHeader(http.StatusOK)
				w.Write(body)
			})

			req := httptest.NewRequest(http.MethodPost, "/sync/migrate", tt.body(t))
			if tt.contentEncoding != "" {
				req.Header.Set("Content-Encoding", tt.contentEncoding)
			}
			rr := httptest.NewRecorder()

			withGunzip(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestGunzip_ReaderPoolReuse(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		w.Write(body)
	})
	handler := withGunzip(next)

	for i := 0; i < 5; i++ {
		data := []byte("batch " + string(rune('0'+i)))
		req := httptest.NewRequest(http.MethodPost, "/sync/push", gzipped(t, data))
		req.Header.Set("Content-Encoding", "gzip")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, string(data), rr.Body.String(), "request %d", i)
	}
}

// ---- response compression ----

func TestCompressedResponses(t *testing.T) {
	largeJSON := `{"changes":[` + strings.Repeat(`{"entityType":"trip"},`, 500) + `{}]}`

	tests := []struct {
		name           string
		acceptEncoding string
		contentType    string
		wantGzip       bool
	}{
		{"JSON with gzip accepted", "gzip", "application/json", true},
		{"JSON with several encodings", "deflate, gzip;q=1.0", "application/json", true},
		{"JSON without gzip accepted", "", "application/json", false},
		{"metrics exposition is untouched", "gzip", "text/plain; version=0.0.4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(largeJSON))
			})

			req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rr := httptest.NewRecorder()

			withCompressedResponses()(next).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			if !tt.wantGzip {
				assert.Empty(t, rr.Header().Get("Content-Encoding"))
				assert.Equal(t, largeJSON, rr.Body.String())
				return
			}

			assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
			assert.Less(t, rr.Body.Len(), len(largeJSON)/10)

			gr, err := gzip.NewReader(rr.Body)
			require.NoError(t, err)
			defer gr.Close()
			decompressed, err := io.ReadAll(gr)
			require.NoError(t, err)
			assert.Equal(t, largeJSON, string(decompressed))
		})
	}
}

func TestWrappedReadCloser_Close(t *testing.T) {
	closeCalled := false
	wrapped := &wrappedReadCloser{
		Reader:  strings.NewReader("test"),
		OnClose: func() { closeCalled = true },
	}

	assert.NoError(t, wrapped.Close())
	assert.True(t, closeCalled)

	assert.NoError(t, (&wrappedReadCloser{Reader: strings.NewReader("test")}).Close())
}
