// Command garden is the command-line front end of the garden registry.
package main

import "github.com/mesh-intelligence/gardens/internal/cli"

func main() {
	cli.Execute()
}
