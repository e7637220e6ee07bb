package main

import (
	"github.com/priyxstudio/pathway/cmd"
)

func main() {
	cmd.Execute()
}
