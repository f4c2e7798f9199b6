package main

import "github.com/gtempel/jiragraph/cmd/jiragraph/cmd"

func main() {
	cmd.Execute()
}
