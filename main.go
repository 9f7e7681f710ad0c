package main

import "github.com/karolswdev/reqsmith/cmd"

func main() {
	cmd.Execute()
}
