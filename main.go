package main

import "github.com/khrees2412/jobtracker/cmd"

func main() {
	cmd.Execute()
}
