package main

import "github.com/naka-gawa/github-trajectory/cmd"

func main() {
	cmd.Execute()
}
