// +build mage

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	packageName = "github.com/chembl/sdf2index"
	binary      = "build/sdf2index"
)

var ldflags = "-X main.version=$VERSION -X main.buildDate=$BUILD_DATE"

// Build compiles the binary into build/ with the version and build date
// embedded
func Build() error {
	fmt.Println("Building...")
	return sh.RunWith(flagEnv(), "go", "build", "-o", binary, "-ldflags", ldflags, packageName)
}

func flagEnv() map[string]string {
	return map[string]string{
		"VERSION":    gitTag(),
		"BUILD_DATE": time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}

// gitTag describes the checkout, the short hash when there is no tag
func gitTag() string {
	s, err := sh.Output("git", "describe", "--tags")
	if err == nil {
		return strings.TrimSuffix(s, "\n")
	}
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return hash
}

// Test runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Install copies the binary into GOPATH/bin
func Install() error {
	mg.Deps(Build)
	fmt.Println("Installing...")
	return sh.RunWith(flagEnv(), "go", "install", "-ldflags", ldflags, packageName)
}

// Clean up after yourself
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll("build")
}
