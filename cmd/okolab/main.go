package main

import "github.com/slietar/okolab/cmd"

func main() {
	cmd.Execute()
}
