package main

import "github.com/turbolytics/curator/internal/cmd"

func main() {
	cmd.Execute()
}
