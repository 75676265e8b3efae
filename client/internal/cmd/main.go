package main

import (
	"log"

	"nimbus/client/pkg/cmd"
)

func main() {
	nimbusCmd, err := cmd.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := nimbusCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
