package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// PromptForSymbol asks for a ticker symbol when none was configured.
func PromptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Enter the instrument symbol to trade (e.g., SPY, AAPL):",
		Default: "SPY",
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if len(str) == 0 {
			return fmt.Errorf("symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("symbol too long (max 10 characters)")
		}
		if !symbolPattern.MatchString(str) {
			return fmt.Errorf("invalid symbol format (letters, numbers, dots and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ToUpper(symbol)), nil
}

// PromptForDate asks for a calendar date.
func PromptForDate(message string) (string, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: message,
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(dateStr), nil
}
