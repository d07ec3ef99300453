// cmd/tools/ratebook-lint/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"appraisal-engine/pkg/ratebook"
)

func main() {
	path := flag.String("path", "", "Path to a ratebook JSON file (empty checks the embedded defaults)")
	flag.Parse()

	var rb *ratebook.Ratebook
	var err error
	if *path == "" {
		rb = ratebook.Default()
	} else {
		rb, err = ratebook.Load(*path)
		if err != nil {
			fmt.Printf("Error loading ratebook: %v\n", err)
			os.Exit(1)
		}
	}

	if err := rb.Validate(); err != nil {
		fmt.Printf("Ratebook invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ratebook OK: %d property types, %d risk steps, %d rent-control steps\n",
		len(rb.CapRateGrid), len(rb.RiskAdjustments), len(rb.RentControlIncrements))
}
