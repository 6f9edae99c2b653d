package main

import (
	"fmt"
	"os"
)

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: typelens <command> [flags]

commands:
  analyze    classify type declarations and print the tier report
  graph      build the type dependency graph
  serve-mcp  run as MCP server on stdio
  version    print version and exit

run 'typelens <command> -h' for command flags`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage)
		return nil
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(args[1:])
	case "graph":
		return runGraph(args[1:])
	case "serve-mcp":
		return runServeMCP(args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "-h", "--help", "help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}
