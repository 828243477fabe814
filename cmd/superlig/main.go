// Command superlig is the entry point for the Süper Lig question answering
// assistant. It provides a CLI (via Cobra) for one-off questions, corpus
// ingestion, and an HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/Kadirose05/superleaugechatbot-genai/cmd/superlig/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
