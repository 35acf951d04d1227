// Package main is the entry point of the griffon command line
package main

import "github.com/ortelius/griffon/cmd"

func main() {
	cmd.Execute()
}
