package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherFetchPage(t *testing.T) {
	var gotReferer, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTP(HTTPConfig{
		UserAgent: "mediaharvest-test",
		Referer:   "https://upstream.example/",
		Timeout:   5 * time.Second,
	})

	html, err := f.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, html, "ok")
	require.Equal(t, "https://upstream.example/", gotReferer)
	require.Equal(t, "mediaharvest-test", gotUA)
}

func TestHTTPFetcherDownload(t *testing.T) {
	payload := []byte("d4:infod4:name1:xee")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-bittorrent")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := NewHTTP(HTTPConfig{Timeout: 5 * time.Second})

	body, err := f.Download(context.Background(), srv.URL+"/file.torrent")
	require.NoError(t, err)
	require.Equal(t, payload, body)
}

func TestHTTPFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTP(HTTPConfig{Timeout: 5 * time.Second})

	_, err := f.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestHTTPFetcherCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	f := NewHTTP(HTTPConfig{Timeout: 5 * time.Second})

	_, err := f.FetchPage(ctx, srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
