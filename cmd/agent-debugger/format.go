package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/agent-tools/agent-debugger/internal/daemon"
)

// render prints a daemon reply either as raw JSON (--json) or as an
// aligned human-readable rendering, and maps a reply-level error to a
// non-zero exit.
func render(reply daemon.Reply, err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if jsonOutput {
		data, mErr := json.MarshalIndent(reply, "", "  ")
		if mErr != nil {
			return mErr
		}
		fmt.Println(string(data))
	} else {
		printHuman(reply)
	}

	if msg, ok := reply["error"]; ok {
		fmt.Fprintln(os.Stderr, "error:", msg)
		os.Exit(1)
	}
	return nil
}

// printHuman renders a reply as aligned key: value lines, descending into
// nested maps/slices with indentation. It has no notion of per-verb shape;
// it just walks whatever the daemon sent back.
func printHuman(reply daemon.Reply) {
	keys := make([]string, 0, len(reply))
	for k := range reply {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		printField(k, reply[k], 0)
	}
}

func printField(key string, value interface{}, depth int) {
	indent := indentOf(depth)
	switch v := value.(type) {
	case map[string]interface{}:
		fmt.Printf("%s%s:\n", indent, key)
		inner := make([]string, 0, len(v))
		for k := range v {
			inner = append(inner, k)
		}
		sort.Strings(inner)
		for _, ik := range inner {
			printField(ik, v[ik], depth+1)
		}
	case []interface{}:
		if len(v) == 0 {
			fmt.Printf("%s%s: []\n", indent, key)
			return
		}
		fmt.Printf("%s%s:\n", indent, key)
		for i, item := range v {
			printField(fmt.Sprintf("[%d]", i), item, depth+1)
		}
	default:
		fmt.Printf("%s%s: %v\n", indent, key, v)
	}
}

func indentOf(depth int) string {
	out := ""
	for i := 0; i < depth; i++ {
		out += "  "
	}
	return out
}
