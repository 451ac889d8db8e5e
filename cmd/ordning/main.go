package main

import (
	"github.com/KUKARAF/ordning/cmd/ordning/cmd"
)

func main() {
	cmd.Execute()
}
