package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

const (
	ActionRate    = "Rate these questions"
	ActionAnother = "Analyze another posting"
	ActionExit    = "Exit"

	ratingSkip      = "Skip"
	ratingThumbUp   = "Thumbs up"
	ratingThumbDown = "Thumbs down"
)

var ratingItems = []string{
	ratingThumbUp,
	ratingThumbDown,
	"5 - Very helpful",
	"4 - Helpful",
	"3 - Okay",
	"2 - Not really",
	"1 - Not helpful",
	ratingSkip,
}

// NextAction asks what to do after a result is shown. Rating is offered
// only while the current result has not been rated.
func NextAction(canRate bool) (string, error) {
	items := []string{ActionAnother, ActionExit}
	if canRate {
		items = append([]string{ActionRate}, items...)
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: items,
	}

	_, action, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}

	return action, nil
}

// AskFeedback asks for a 1-5 rating and an optional comment.
// ok is false when the user skipped.
func AskFeedback() (rating int, comment string, ok bool, err error) {
	selectPrompt := promptui.Select{
		Label: "Did these questions help you prepare?",
		Items: ratingItems,
	}

	_, choice, err := selectPrompt.Run()
	if err != nil {
		return 0, "", false, promptError(err)
	}

	rating, ok = ratingFromChoice(choice)
	if !ok {
		return 0, "", false, nil
	}

	commentPrompt := promptui.Prompt{
		Label: "Comment (optional)",
	}

	comment, err = commentPrompt.Run()
	if err != nil {
		return 0, "", false, promptError(err)
	}

	return rating, strings.TrimSpace(comment), true, nil
}

func ratingFromChoice(choice string) (int, bool) {
	switch choice {
	case ratingSkip, "":
		return 0, false
	case ratingThumbUp:
		return 5, true
	case ratingThumbDown:
		return 1, true
	}

	var rating int
	if _, err := fmt.Sscanf(choice, "%d", &rating); err != nil {
		return 0, false
	}

	if rating < 1 || rating > 5 {
		return 0, false
	}

	return rating, true
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return err
}
