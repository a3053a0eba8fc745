package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/iron-and-snow/pkg/script"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <script.yaml>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &ScriptValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type ScriptValidator struct {
	errors []string
}

func (v *ScriptValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("script file must have .yaml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidScriptFilename(nameWithoutExt) {
		return fmt.Errorf("script filename '%s' must be lowercase snake_case (e.g., my_story.yaml, not my-story.yaml or MyStory.yaml)", baseName)
	}

	v.errors = nil

	sc, err := script.LoadFile(filename)
	if err != nil {
		v.addLoadErrors(err)
	} else {
		v.validateScript(sc)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// addLoadErrors lists each joined validation error on its own line.
func (v *ScriptValidator) addLoadErrors(err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				v.addError(inner.Error())
			}
			return
		}
	}
	v.addError(err.Error())
}

// validateScript applies the style rules the loader does not enforce.
func (v *ScriptValidator) validateScript(sc *script.Script) {
	for _, ev := range sc.WoodsEvents {
		for _, c := range ev.Choices {
			v.validateIDFormat(fmt.Sprintf("mile %d choice ID", ev.Mile), c.ID)
		}
	}

	for i, line := range sc.Whispers() {
		if strings.TrimSpace(line) == "" {
			v.addError(fmt.Sprintf("whispers[%d] is blank", i))
		}
	}
}

func (v *ScriptValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ScriptValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidScriptFilename(name string) bool {
	// Allow 'x.' prefix for experimental scripts
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
