package main

import "github.com/crimson-sun/spyglass/internal/cmd"

func main() {
	cmd.Execute()
}
