package main

import "cardquest/cmd"

func main() {
	cmd.Run()
}
