package main

import "github.com/atdiar/kvo/cmd/kvo/cmd"

func main() {
	cmd.Execute()
}
