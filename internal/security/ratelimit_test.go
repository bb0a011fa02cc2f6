package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over the limit should be denied")
	}

	// A different client has its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("fresh client should be allowed")
	}
}

func TestRateLimiterRefillsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(20 * time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Error("request after the window should be allowed again")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.5:52000",
			want:       "192.168.1.5:52000",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "127.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "x-forwarded-for chain uses first hop",
			remoteAddr: "127.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "127.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			want:       "198.51.100.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
