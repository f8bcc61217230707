package main

import "github.com/matthieukhl/shopfront/internal/cmd"

func main() {
	cmd.Execute()
}
