package main

import "github.com/jsphweid/topliner/cmd"

func main() {
	cmd.Execute()
}
