// Command pronoun queries a pronound server for a user's pronouns.
//
// Usage:
//
//	pronoun <username|uid>@<hostname>[:<port>] [port]
//
// The optional positional port overrides the default (731); a port given
// inside the target wins over both. The server's response is printed
// verbatim.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/pronound/pronound/internal/client"
)

const queryTimeout = 10 * time.Second

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <username|uid>@<hostname>[:<port>] [port]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) < 1 || len(args) > 2 {
		pflag.Usage()
		os.Exit(1)
	}

	port := client.DefaultPort
	if len(args) == 2 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p < 1 || p > 65535 {
			fmt.Fprintf(os.Stderr, "Invalid port %q\n", args[1])
			os.Exit(1)
		}
		port = p
	}

	target, err := client.ParseTarget(args[0], port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resp, err := target.Query(queryTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(resp)
}
