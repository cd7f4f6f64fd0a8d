package inject

import "net"

// findFreePort allocates an available loopback TCP port for the injected
// debugpy server to listen on.
func findFreePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
