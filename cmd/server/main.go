package main

import "habit-tracker/cmd"

func main() {
	cmd.Run()
}
