package main

import "github.com/nick-merrill/life-expectancy/internal/cli"

func main() {
	cli.Execute()
}
