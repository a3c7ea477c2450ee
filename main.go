package main

import "github.com/theirongolddev/salesdash/cmd"

func main() {
	cmd.Execute()
}
