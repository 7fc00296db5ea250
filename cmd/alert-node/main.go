package main

import "github.com/oshokin/alert-node/cmd/alert-node/cmd"

func main() {
	cmd.Execute()
}
