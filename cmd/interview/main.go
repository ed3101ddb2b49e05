package main

import "gritinterview/internal/cli"

func main() {
	cli.Execute()
}
