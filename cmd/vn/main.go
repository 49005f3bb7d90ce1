package main

import (
	"voicenotes/cmd/vn/cmd"
)

func main() {
	cmd.Execute()
}
