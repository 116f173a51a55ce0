package main

import "github.com/HeorhiiKortunov/CoreTask/cmd"

func main() {
	cmd.Execute()
}
