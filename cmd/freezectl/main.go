package main

import "freezeframe/cmd/freezectl/commands"

func main() {
	commands.Execute()
}
