package main

import "cinerate/cmd/cli/command"

func main() {
	command.Execute()
}
