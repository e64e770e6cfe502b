package pkgrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestChainOrder(t *testing.T) {
	order := make([]string, 0, 3)

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("mw1"), nil, mw("mw2"))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if !reflect.DeepEqual(order, []string{"mw1", "mw2", "handler"}) {
		t.Fatalf("unexpected order: %#v", order)
	}
}

func TestGetParam(t *testing.T) {
	params := httprouter.Params{{Key: "id", Value: "123"}}
	ctx := context.WithValue(context.Background(), httprouter.ParamsKey, params)

	if got := GetParam(ctx, "id"); got != "123" {
		t.Fatalf("expected id=123, got %q", got)
	}
}

func TestGetParamID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		params := httprouter.Params{{Key: "id", Value: tt.raw}}
		ctx := context.WithValue(context.Background(), httprouter.ParamsKey, params)

		got, ok := GetParamID(ctx, "id")
		if got != tt.want || ok != tt.ok {
			t.Fatalf("GetParamID(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRecovererRendersServerError(t *testing.T) {
	h := middlewareRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestAppFrames(t *testing.T) {
	stack := "goroutine 1 [running]:\n" +
		"main.handler()\n" +
		"\t/src/csvinsight/internal/analysis/inbound/http_endpoint.go:42 +0x1d\n" +
		"net/http.HandlerFunc.ServeHTTP()\n" +
		"\t/usr/local/go/src/net/http/server.go:2220 +0x29\n"

	got := appFrames(stack)
	want := []string{"internal/analysis/inbound/http_endpoint.go:42"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected frames: %#v", got)
	}
}
