/*
Copyright © 2025 Oleg Shokin

This file is the entry point for the tube-grabber application.
It initializes and executes the root command defined in the cmd package.
*/
package main

import "github.com/oshokin/tube-grabber/cmd"

func main() {
	cmd.Execute()
}
