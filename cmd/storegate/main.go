package main

import "github.com/kmercer/storegate/cmd/storegate/cmd"

func main() {
	cmd.Execute()
}
