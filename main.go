package main

import "github.com/stashkit/scenematch/cmd"

func main() {
	cmd.Execute()
}
