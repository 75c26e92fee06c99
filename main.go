package main

import "github.com/chrisdamba/tripzones/cmd"

func main() {
	cmd.Execute()
}
