package render

import "strings"

const secretGuard = `if [ -f "$RPC_API_KEY_FILE" ]; then
  export RPC_API_KEY=$(cat "$RPC_API_KEY_FILE")
else
  echo "Error: RPC_API_KEY_FILE not found!" >&2
  exit 1
fi

`

// LauncherScript builds the POSIX shell script that execs binary under tini
// with one argument per line. With guard set the script refuses to start
// unless the RPC secret file exists and exports its content as RPC_API_KEY.
func LauncherScript(binary string, guard bool, args []string) string {
	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n\n")

	if guard {
		sb.WriteString(secretGuard)
	}

	sb.WriteString("exec tini -- ./" + binary)
	for _, arg := range args {
		sb.WriteString(" \\\n  " + arg)
	}
	sb.WriteString("\n")

	return sb.String()
}
