package main

import (
	"os"

	mnemocmder "github.com/mnemoware/mnemo/cmd/mnemo"
)

func main() {
	cmd := mnemocmder.NewMnemoCmd()
	if err := cmd.Execute(); err != nil {
		// The failing command already printed its JSON envelope.
		os.Exit(1)
	}
}
