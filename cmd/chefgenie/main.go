package main

import "github.com/mcoot/chefgenie/internal/cli"

func main() {
	cli.Execute()
}
