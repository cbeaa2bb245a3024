package main

import "github.com/mvp-joe/codemunch/internal/cli"

func main() {
	cli.Execute()
}
