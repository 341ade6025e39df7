package main

import "github.com/nextlevelbuilder/toolspace/cmd"

func main() {
	cmd.Execute()
}
