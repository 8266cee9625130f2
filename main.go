package main

import "github.com/securiscan/securiscan-cli/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
