package main

import "github.com/natours/natours-api/cmd"

func main() {
	cmd.Execute()
}
