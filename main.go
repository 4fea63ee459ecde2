package main

import "github.com/furisto/taskview/frontend/cli/cmd"

func main() {
	cmd.Execute()
}
