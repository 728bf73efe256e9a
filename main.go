package main

import "github.com/MattEddy/coterie/cmd"

func main() {
	cmd.Execute()
}
