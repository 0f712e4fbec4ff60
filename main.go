package main

import "github.com/mj1618/uiloc/cmd"

func main() {
	cmd.Execute()
}
