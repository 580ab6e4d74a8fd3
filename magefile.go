//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the syncbench binary into bin/.
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", "./bin/syncbench", "./cmd/syncbench")
}

// Test runs the unit tests.
func Test() error {
	fmt.Println("Running Tests...")
	return sh.Run("go", "test", "./...")
}

// Integration runs the Postgres tests; requires Docker.
func Integration() error {
	fmt.Println("Running Integration Tests...")
	return sh.Run("go", "test", "-tags", "integration", "-timeout", "10m", "./test/integration/...")
}

// Bench runs the default matrix against a fresh SQLite file and writes every
// report format to data/reports.
func Bench() error {
	mg.Deps(Build)
	if err := os.RemoveAll("data/bench.db"); err != nil {
		return err
	}
	fmt.Println("Running benchmark...")
	return sh.RunV("./bin/syncbench", "-db", "data/bench.db", "-report-dir", "data/reports", "-report-format", "all")
}

// GoBench runs the go test benchmarks in test/benchmark.
func GoBench() error {
	fmt.Println("Running go benchmarks...")
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", "./test/benchmark/...")
}

// Clean removes build and benchmark outputs.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	return os.RemoveAll("data")
}

// Check runs formatting and linting checks (fmt, vet).
func Check() error {
	mg.Deps(Fmt, Vet)
	return nil
}

// Fmt runs go fmt ./...
func Fmt() error {
	fmt.Println("Running go fmt...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet ./...
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}
