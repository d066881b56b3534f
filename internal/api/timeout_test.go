package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWithWriteTimeoutExemptsSpeech(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		io.WriteString(w, strings.Repeat("x", 1<<20))
	})
	mux := http.NewServeMux()
	mux.Handle("/", slow)
	srv := httptest.NewServer(WithWriteTimeout(mux, 50*time.Millisecond, SpeechPath))
	defer srv.Close()

	fetch := func(path string) (int, error) {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return len(b), err
	}

	if n, err := fetch(SpeechPath); err != nil || n != 1<<20 {
		t.Fatalf("exempt route: n=%d err=%v", n, err)
	}
	if n, err := fetch("/api/v1/workouts"); err == nil && n == 1<<20 {
		t.Fatal("write deadline not applied to regular route")
	}
}

func TestWithWriteTimeoutDisabled(t *testing.T) {
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	if got := WithWriteTimeout(h, 0); got == nil {
		t.Fatal("nil handler")
	}
}
