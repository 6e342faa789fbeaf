package main

import "domverify/internal/cli"

func main() {
	cli.Execute()
}
