package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/auth"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

var secret = strings.Repeat("k", 32)

const (
	openMethod   = "/healthsync.v1.HealthService/Login"
	closedMethod = "/healthsync.v1.HealthService/ListRecords"
)

func echoUser(ctx context.Context, _ any) (any, error) {
	u, _ := UserFromContext(ctx)
	return u, nil
}

func bearerCtx(tok string) context.Context {
	md := metadata.New(map[string]string{"authorization": "Bearer " + tok})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestAuthInterceptor(t *testing.T) {
	jane := model.User{ID: "42", Name: "Jane Roe", Email: "jane@example.com"}
	tok, err := auth.MakeToken(jane, secret, 0)
	if err != nil {
		t.Fatal(err)
	}
	wrong, _ := auth.MakeToken(jane, strings.Repeat("x", 32), 0)

	intercept := Auth(secret, openMethod)
	tests := []struct {
		name   string
		ctx    context.Context
		method string
		code   codes.Code
	}{
		{"open method without token", context.Background(), openMethod, codes.OK},
		{"no metadata", context.Background(), closedMethod, codes.Unauthenticated},
		{"no token", metadata.NewIncomingContext(context.Background(), metadata.MD{}), closedMethod, codes.Unauthenticated},
		{"garbage", bearerCtx("not.a.token"), closedMethod, codes.Unauthenticated},
		{"wrong secret", bearerCtx(wrong), closedMethod, codes.Unauthenticated},
		{"valid", bearerCtx(tok), closedMethod, codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := intercept(tt.ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, echoUser)
			if got := status.Code(err); got != tt.code {
				t.Fatalf("code = %v, want %v", got, tt.code)
			}
			if tt.name == "valid" && resp.(model.User) != jane {
				t.Errorf("user in context = %+v", resp)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("Bearer abc "); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := BearerToken("Basic abc"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestRateLimitInterceptor(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Close()
	intercept := RateLimit(rl, openMethod)

	ctx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5000},
	})
	call := func(method string) codes.Code {
		_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, echoUser)
		return status.Code(err)
	}

	for i := 0; i < 2; i++ {
		if c := call(openMethod); c != codes.OK {
			t.Fatalf("call %d: %v", i, c)
		}
	}
	if c := call(openMethod); c != codes.ResourceExhausted {
		t.Errorf("third call = %v, want ResourceExhausted", c)
	}
	if c := call(closedMethod); c != codes.OK {
		t.Errorf("unlimited method = %v", c)
	}
}

func TestLimitPosts(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()
	h := LimitPosts(rl, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if c := do(http.MethodPost); c != http.StatusOK {
		t.Fatalf("first post = %d", c)
	}
	if c := do(http.MethodPost); c != http.StatusTooManyRequests {
		t.Errorf("second post = %d", c)
	}
	if c := do(http.MethodGet); c != http.StatusOK {
		t.Errorf("get = %d", c)
	}
}

func TestGuard(t *testing.T) {
	jane := model.User{ID: "42", Name: "Jane Roe", Email: "jane@example.com"}
	authed := session.Status{State: session.Authenticated, User: jane}

	tests := []struct {
		name     string
		st       session.Status
		path     string
		code     int
		location string
	}{
		{"public", session.Status{}, route.Login, http.StatusOK, ""},
		{"anonymous protected", session.Status{}, route.Records, http.StatusSeeOther, route.Login},
		{"loading", session.Status{Loading: true}, route.Records, http.StatusServiceUnavailable, ""},
		{"authed", authed, route.Records, http.StatusOK, ""},
		{"app root", authed, route.App, http.StatusSeeOther, route.Dashboard},
		{"unknown", authed, "/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen model.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = UserFromContext(r.Context())
			})
			h := Guard(func(http.ResponseWriter, *http.Request) session.Status { return tt.st }, next)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d", rec.Code, tt.code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.location {
				t.Errorf("location = %q, want %q", loc, tt.location)
			}
			if tt.name == "authed" && seen != jane {
				t.Errorf("context user = %+v", seen)
			}
		})
	}
}
