// cmd/tools/appraise/main.go

// appraise runs one evaluation from the command line: a request JSON file in,
// the full result bundle out. It talks to the engine directly, with no
// database or server in the loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/validation"
	"appraisal-engine/internal/engine"
	"appraisal-engine/internal/models"
	"appraisal-engine/pkg/ratebook"
)

func main() {
	inPath := flag.String("in", "-", "Request JSON file ('-' reads stdin)")
	rbPath := flag.String("ratebook", "", "Ratebook JSON file (empty uses the embedded defaults)")
	pretty := flag.Bool("pretty", true, "Indent the output JSON")
	quiet := flag.Bool("quiet", false, "Suppress engine logs")
	flag.Parse()

	if err := run(*inPath, *rbPath, *pretty, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, rbPath string, pretty, quiet bool) error {
	body, err := readInput(inPath)
	if err != nil {
		return err
	}

	validator, err := validation.NewRequestValidator()
	if err != nil {
		return err
	}
	if err := validator.Validate(body); err != nil {
		return err
	}

	var req models.AppraisalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	rb := ratebook.Default()
	if rbPath != "" {
		rb, err = ratebook.Load(rbPath)
		if err != nil {
			return err
		}
	}

	log := logger.NewStructured("warn", "console")
	if quiet {
		log = logger.NewNoOpLogger()
	}

	eng, err := engine.New(rb, log)
	if err != nil {
		return err
	}

	result, err := eng.Evaluate(context.Background(), &req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
