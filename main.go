package main

import "archivist/cmd"

func main() {
	cmd.Execute()
}
