package main

import "github.com/MeKo-Tech/cropkit/cmd/cropkit/cmd"

func main() {
	cmd.Execute()
}
