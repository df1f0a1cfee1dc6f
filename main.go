package main

import "github.com/frahmantamala/ldc-construction/cmd"

func main() {
	cmd.Execute()
}
