package api

import "testing"

func Test_StreamURL(t *testing.T) {
	got := StreamURL("https://api.example.com/", "a b+c")
	want := "https://api.example.com/api/notifications/stream?token=a+b%2Bc"
	if got != want {
		t.Errorf("StreamURL = %q, want %q", got, want)
	}
}

func Test_SocketURL_Cases(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		user    string
		want    string
		wantErr bool
	}{
		{name: "http to ws", base: "http://localhost:8001", user: "u1", want: "ws://localhost:8001/ws/u1"},
		{name: "https to wss", base: "https://api.example.com/", user: "u1", want: "wss://api.example.com/ws/u1"},
		{name: "keeps path prefix", base: "https://example.com/backend", user: "u 2", want: "wss://example.com/backend/ws/u%202"},
		{name: "unsupported scheme", base: "ftp://example.com", user: "u1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SocketURL(tt.base, tt.user)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SocketURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_IsLocalHost_Cases(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8001", true},
		{"http://127.0.0.1:8000", true},
		{"http://[::1]:8000", true},
		{"http://0.0.0.0", true},
		{"http://raama.local", true},
		{"https://raama-backend-srrb.onrender.com", false},
		{"https://api.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsLocalHost(tt.url); got != tt.want {
				t.Errorf("IsLocalHost(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
