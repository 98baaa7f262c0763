package main

import "modeon/internal/cli"

func main() {
	cli.Execute()
}
