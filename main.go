package main

import "github.com/qobs-build/projgen/cmd"

func main() {
	cmd.Execute()
}
