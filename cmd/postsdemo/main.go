// Command postsdemo fetches posts from a JSONPlaceholder-style API, and
// prints them as JSON.
//
//	postsdemo list
//	postsdemo get 42
//	postsdemo --base-url http://localhost:3000 get 1
//
// Settings are read from APICALL_* environment variables and an optional
// config file; see package config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
