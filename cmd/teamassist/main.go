package main

import "teamassist/internal/cli"

func main() {
	cli.Execute()
}
