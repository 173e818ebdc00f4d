/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/pff/cmd/pff/cmd"

func main() {
	cmd.Execute()
}
