package main

import "github.com/notargets/govem/cmd"

func main() {
	cmd.Execute()
}
