package main

import "github.com/nfrund/folio/cmd/folio-cli/cmd"

func main() {
	cmd.Execute()
}
