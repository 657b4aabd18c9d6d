package main

import (
	"github.com/sidkik/fss/cmd"
	"github.com/sidkik/fss/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
