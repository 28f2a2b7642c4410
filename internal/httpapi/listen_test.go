package httpapi

import (
	"net"
	"testing"
)

// chooseFreePort finds an available TCP port by asking the kernel for :0
func chooseFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestListenUsesRequestedPort(t *testing.T) {
	p := chooseFreePort(t)
	l, err := Listen("127.0.0.1", p, 3)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()
	if got := l.Addr().(*net.TCPAddr).Port; got != p {
		t.Fatalf("port=%d want %d", got, p)
	}
}

func TestListenFallsBackWhenBusy(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port
	if port >= 65535 {
		t.Skip("no room above kernel-chosen port")
	}
	l, err := Listen("127.0.0.1", port, 20)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()
	if got := l.Addr().(*net.TCPAddr).Port; got <= port || got >= port+20 {
		t.Fatalf("fallback port=%d, busy=%d", got, port)
	}
}

func TestListenGivesUpAfterAttempts(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port
	if _, err := Listen("127.0.0.1", port, 1); err == nil {
		t.Fatalf("expected error when the only candidate is busy")
	}
}

func TestListenAnyPort(t *testing.T) {
	l, err := Listen("127.0.0.1", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if l.Addr().(*net.TCPAddr).Port == 0 {
		t.Fatalf("kernel port not assigned")
	}
}
