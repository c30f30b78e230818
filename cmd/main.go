package main

import (
	"os"

	"github.com/soundprediction/zeroshot/cmd/zeroshot"
)

func main() {
	if err := zeroshot.Execute(); err != nil {
		os.Exit(1)
	}
}
