package listener

import (
	"net"
	"strings"
	"testing"
)

func TestTCPProviderCreate(t *testing.T) {
	provider := NewTCPProvider("127.0.0.1:0")

	l, err := provider.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	conn, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()

	if err := provider.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := provider.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestTCPProviderCloseAfterServer(t *testing.T) {
	provider := NewTCPProvider("127.0.0.1:0")

	l, err := provider.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	l.Close()

	if err := provider.Close(); err != nil {
		t.Errorf("Close after listener was closed: %v", err)
	}
}

func TestTCPProviderErrors(t *testing.T) {
	busy := NewTCPProvider("127.0.0.1:0")
	l, err := busy.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer busy.Close()

	tests := []struct {
		name    string
		address string
		want    string
	}{
		{name: "missing port", address: "localhost", want: "invalid listen address"},
		{name: "address in use", address: l.Addr().String(), want: "address already in use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTCPProvider(tt.address).Create()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Create(%q) error = %v, want it to contain %q", tt.address, err, tt.want)
			}
		})
	}

	if got := busy.ActivationType(); got != "tcp" {
		t.Errorf("ActivationType() = %q", got)
	}
}
