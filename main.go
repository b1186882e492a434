package main

import "github.com/maxvaer/soft404/cmd"

func main() {
	cmd.Execute()
}
