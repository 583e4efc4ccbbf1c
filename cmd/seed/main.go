package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/quildacademy/quild-backend/internal/app"
	"github.com/quildacademy/quild-backend/internal/services"
)

func main() {
	var file string
	var dryRun bool
	flag.StringVar(&file, "file", "", "seed YAML to load (defaults to the embedded curriculum)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate the seed file without writing")
	flag.Parse()

	var raw []byte
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("read %s: %v\n", file, err)
			os.Exit(1)
		}
		raw = b
	}

	if dryRun {
		if raw == nil {
			fmt.Println("nothing to validate: pass -file")
			return
		}
		parsed, err := services.ParseSeed(validator.New(), raw)
		if err != nil {
			fmt.Printf("invalid seed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seed ok: %d phases, %d courses\n", len(parsed.Phases), len(parsed.Courses))
		return
	}

	os.Exit(seed(raw))
}

func seed(raw []byte) int {
	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		return 1
	}
	defer application.Close()

	report, err := application.Services.Seed.Seed(ctx, raw)
	if err != nil {
		application.Log.Error("seed failed", "error", err)
		return 1
	}
	fmt.Printf("seeded %d phases, %d weeks, %d lessons, %d courses\n", report.Phases, report.Weeks, report.Lessons, report.Courses)
	return 0
}
