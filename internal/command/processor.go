package command

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// actionPattern splits a command into the main part and an additional
// action joined by a standalone "and".
var actionPattern = regexp.MustCompile(`\band\b`)

// actions are the verbs recognized at the start of a command.
var actions = map[string]struct{}{
	"find": {},
	"open": {},
	"read": {},
}

// Action is a detected file or folder operation.
type Action struct {
	// Target is the existing file or folder path the command refers to.
	Target string

	// FollowUp is the instruction to run against the target's content.
	FollowUp string
}

// Result is the outcome of processing one line of chat input.
type Result struct {
	// Input is the text to route, possibly rewritten by a detected action.
	Input string

	// Action is set when the command named an existing file or folder.
	Action *Action

	// Bypass marks input that skips routing entirely.
	Bypass bool
}

// Processor interprets raw chat input.
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a command processor.
func NewProcessor(logger *zap.Logger) *Processor {
	return &Processor{logger: logger}
}

// HandleCommand processes one line of input. A leading "!" strips the
// prefix and bypasses all further interpretation. Otherwise a detected
// file or folder action rewrites the input to its follow-up instruction.
func (p *Processor) HandleCommand(input string) Result {
	if strings.HasPrefix(input, "!") {
		return Result{Input: input[1:], Bypass: true}
	}

	if input == "" {
		return Result{}
	}

	action, ok := p.DetectAction(input)
	if !ok {
		return Result{Input: input}
	}

	p.logger.Debug("detected file action",
		zap.String("target", action.Target),
		zap.String("follow_up", action.FollowUp))

	return Result{Input: action.FollowUp, Action: &action}
}

// DetectAction recognizes commands of the form "<verb> <target> [and
// <instruction>]" where verb is find, open, or read. The target "this
// folder" resolves to the working directory. Targets that do not exist
// on disk are rejected.
func (p *Processor) DetectAction(input string) (Action, bool) {
	parts := actionPattern.Split(input, 2)
	main := strings.TrimSpace(parts[0])
	var followUp string
	if len(parts) > 1 {
		followUp = strings.TrimSpace(parts[1])
	}

	tokens := strings.Fields(main)
	if len(tokens) == 0 {
		return Action{}, false
	}
	if _, ok := actions[tokens[0]]; !ok {
		return Action{}, false
	}

	target := strings.Join(tokens[1:], " ")
	if strings.EqualFold(target, "this folder") {
		wd, err := os.Getwd()
		if err != nil {
			p.logger.Warn("could not resolve working directory", zap.Error(err))
			return Action{}, false
		}
		target = wd
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return Action{}, false
	}
	if _, err := os.Stat(target); err != nil {
		p.logger.Debug("action target not found", zap.String("target", target))
		return Action{}, false
	}

	if followUp == "" {
		followUp = fmt.Sprintf("Analyze the content of %s", target)
	} else {
		followUp = fmt.Sprintf("%s for %s", followUp, target)
	}
	return Action{Target: target, FollowUp: followUp}, true
}

// FormatInput combines a prompt with file content for routing.
func FormatInput(input, fileContent string) string {
	formatted := fmt.Sprintf("Content:\n%s", fileContent)
	if input == "" {
		return formatted
	}
	return fmt.Sprintf("\n%s\nUser Prompt:\n%s\n", formatted, input)
}
