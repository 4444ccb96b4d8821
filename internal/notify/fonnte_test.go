package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"081234567890", "6281234567890"},
		{"+62 812-3456-7890", "6281234567890"},
		{"6281234567890", "6281234567890"},
		{"812 3456 7890", "6281234567890"},
		{"(0274) 555123", "62274555123"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, mau %q", tc.in, got, tc.want)
		}
	}
}

func TestSendWithoutTokenFailsFast(t *testing.T) {
	client := NewClient("", "62")
	result := client.Send(context.Background(), "081234567890", "halo")
	if result.Success || result.Detail != "FONNTE_TOKEN_MISSING" {
		t.Fatalf("hasil tak terduga: %+v", result)
	}
}

func TestSendRejectsInvalidTarget(t *testing.T) {
	client := NewClient("token-123", "62")
	result := client.Send(context.Background(), "---", "halo")
	if result.Success || result.Detail != "NO_VALID_TARGET" {
		t.Fatalf("hasil tak terduga: %+v", result)
	}
}

func TestSendParsesProviderResponse(t *testing.T) {
	var gotAuth, gotTarget string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form gagal: %v", err)
		}
		gotTarget = r.FormValue("target")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"detail":"success! message in queue"}`))
	}))
	defer server.Close()

	client := NewClient("token-123", "62")
	client.endpoint = server.URL

	result := client.Send(context.Background(), "0812-3456-7890", "halo warga")
	if !result.Success || result.Detail != "success! message in queue" {
		t.Fatalf("hasil tak terduga: %+v", result)
	}
	if gotAuth != "token-123" {
		t.Fatalf("header Authorization salah: %q", gotAuth)
	}
	if gotTarget != "6281234567890" {
		t.Fatalf("nomor target salah: %q", gotTarget)
	}
}

func TestSendSurfacesProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":false,"reason":"token invalid"}`))
	}))
	defer server.Close()

	client := NewClient("token-123", "62")
	client.endpoint = server.URL

	result := client.Send(context.Background(), "081234567890", "halo")
	if result.Success || result.Detail != "token invalid" {
		t.Fatalf("hasil tak terduga: %+v", result)
	}
}

func TestSendHandlesMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream error</html>"))
	}))
	defer server.Close()

	client := NewClient("token-123", "62")
	client.endpoint = server.URL

	result := client.Send(context.Background(), "081234567890", "halo")
	if result.Success || result.Detail != "BAD_PROVIDER_RESPONSE" {
		t.Fatalf("hasil tak terduga: %+v", result)
	}
}
