package main

import "github.com/vietddude/dormancy-watcher/internal/cli"

func main() {
	cli.Execute()
}
