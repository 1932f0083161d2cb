package main

import "github.com/chriserin/cuke/cmd"

func main() {
	cmd.Execute()
}
