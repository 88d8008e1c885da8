package main

import "github.com/theirongolddev/fitrack/cmd"

func main() {
	cmd.Execute()
}
