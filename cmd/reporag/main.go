package main

import "github.com/open-rag/reporag/internal/cli"

func main() {
	cli.Execute()
}
