package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errNoInput is returned when standard input closes before a valid answer
var errNoInput = errors.New("no input: standard input closed")

// promptWithRetry asks until validator accepts the answer. It gives up with
// errNoInput once the reader is exhausted.
func promptWithRetry(reader *bufio.Reader, prompt string, validator func(string) (string, error)) (string, error) {
	for {
		fmt.Print(prompt)
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", readErr)
		}
		if readErr != nil && line == "" {
			fmt.Println()
			return "", errNoInput
		}

		result, err := validator(strings.TrimSpace(line))
		if err == nil {
			return result, nil
		}
		fmt.Printf("%s❌ %s%s\n\n", ErrorStyle, err.Error(), Reset)
	}
}

// promptYesNo answers false on an empty line
func promptYesNo(reader *bufio.Reader, prompt string) (bool, error) {
	result, err := promptWithRetry(reader, prompt, func(input string) (string, error) {
		switch strings.ToLower(input) {
		case "y", "yes":
			return "y", nil
		case "n", "no", "":
			return "n", nil
		}
		return "", fmt.Errorf("invalid input: %s (enter y/yes/n/no or press Enter for no)", input)
	})
	if err != nil {
		return false, err
	}
	return result == "y", nil
}

func promptOptional(reader *bufio.Reader, prompt string, defaultValue string) (string, error) {
	return promptWithRetry(reader, prompt, func(input string) (string, error) {
		if input == "" {
			return defaultValue, nil
		}
		return input, nil
	})
}

// promptChoice accepts one of choices, case-insensitively, or defaultValue
// on an empty line
func promptChoice(reader *bufio.Reader, prompt, defaultValue string, choices ...string) (string, error) {
	return promptWithRetry(reader, prompt, func(input string) (string, error) {
		if input == "" {
			return defaultValue, nil
		}
		input = strings.ToLower(input)
		for _, choice := range choices {
			if input == choice {
				return input, nil
			}
		}
		return "", fmt.Errorf("invalid choice: %s (expected one of %s)", input, strings.Join(choices, ", "))
	})
}
