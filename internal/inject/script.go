package inject

import "fmt"

// debugpyListenScript builds the Python source text run inside the target
// process: it ensures debugpy is importable, then starts listening on the
// injection port. The injected run-source-string call evaluates this as a
// single string, so it stays on one logical unit separated by semicolons
// rather than relying on indentation surviving the native-debugger's
// string-literal quoting.
func debugpyListenScript(port int) string {
	return fmt.Sprintf(
		"import debugpy; debugpy.listen(('127.0.0.1', %d))",
		port,
	)
}
