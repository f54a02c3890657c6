package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
)

// Intent is the top-level command picked for an authenticated message.
type Intent string

const (
	IntentLogout   Intent = "logout"
	IntentMenu     Intent = "menu"
	IntentLeave    Intent = "leave"
	IntentTask     Intent = "task"
	IntentProfile  Intent = "profile"
	IntentGreeting Intent = "greeting"
	IntentSetName  Intent = "set_name"
	IntentUnknown  Intent = "unknown"
)

// Command is a parsed authenticated message. Text keeps the original case.
type Command struct {
	Intent Intent
	Text   string
	Args   string
}

type rule struct {
	intent Intent
	match  func(text, lower string) (args string, ok bool)
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{IntentLogout, exact("logout")},
	{IntentMenu, exact("menu")},
	{IntentLeave, word(`leaves?`)},
	{IntentTask, word(`tasks?`)},
	{IntentProfile, word(`update`)},
	{IntentGreeting, exact("hello", "hi")},
	{IntentSetName, prefix(`my name is `)},
}

// ParseCommand picks the intent for an authenticated message.
func ParseCommand(body string) Command {
	text := strings.TrimSpace(body)
	lower := strings.ToLower(text)

	for _, r := range rules {
		if args, ok := r.match(text, lower); ok {
			return Command{Intent: r.intent, Text: text, Args: args}
		}
	}
	return Command{Intent: IntentUnknown, Text: text}
}

func exact(words ...string) func(string, string) (string, bool) {
	return func(_, lower string) (string, bool) {
		for _, w := range words {
			if lower == w {
				return "", true
			}
		}
		return "", false
	}
}

func word(pattern string) func(string, string) (string, bool) {
	re := regexp.MustCompile(`(?i)\b` + pattern + `\b`)
	return func(text, _ string) (string, bool) {
		return "", re.MatchString(text)
	}
}

func prefix(p string) func(string, string) (string, bool) {
	re := regexp.MustCompile(`(?is)^` + regexp.QuoteMeta(p) + `(.*)$`)
	return func(text, _ string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	}
}

// phrase finds a multi-word keyword anywhere in text and returns what
// follows it.
func phrase(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)\b` + strings.Join(words, `\s+`) + `\b(.*)$`)
}

func matchPhrase(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// LeaveAction is a leave sub-command.
type LeaveAction string

const (
	LeaveActionApply   LeaveAction = "apply"
	LeaveActionApprove LeaveAction = "approve"
	LeaveActionList    LeaveAction = "list"
	LeaveActionHelp    LeaveAction = "help"
)

var (
	applyLeaveRe   = phrase("apply", "leave")
	approveLeaveRe = phrase("approve", "leave")
	myLeavesRe     = phrase("my", "leaves")
)

// ParseLeaveAction picks the leave sub-command and its arguments.
func ParseLeaveAction(text string) (LeaveAction, string) {
	if args, ok := matchPhrase(applyLeaveRe, text); ok {
		return LeaveActionApply, args
	}
	if args, ok := matchPhrase(approveLeaveRe, text); ok {
		return LeaveActionApprove, args
	}
	if _, ok := matchPhrase(myLeavesRe, text); ok {
		return LeaveActionList, ""
	}
	return LeaveActionHelp, ""
}

// LeaveDates is the date range of an "apply leave" command.
type LeaveDates struct {
	Start time.Time
	End   time.Time
}

// ParseLeaveDates requires exactly two DD-MM-YYYY dates, start then end.
func ParseLeaveDates(args string) (LeaveDates, error) {
	raw := validator.ExtractDates(args)
	if len(raw) != 2 {
		return LeaveDates{}, fmt.Errorf("%w: expected 2 dates, got %d", leave.ErrInvalidDateRange, len(raw))
	}
	start, err := validator.ParseDate(raw[0])
	if err != nil {
		return LeaveDates{}, fmt.Errorf("%w: start date: %v", leave.ErrInvalidDateRange, err)
	}
	end, err := validator.ParseDate(raw[1])
	if err != nil {
		return LeaveDates{}, fmt.Errorf("%w: end date: %v", leave.ErrInvalidDateRange, err)
	}
	if end.Before(start) {
		return LeaveDates{}, fmt.Errorf("%w: %s to %s ends before it starts", leave.ErrInvalidDateRange, raw[0], raw[1])
	}
	return LeaveDates{Start: start, End: end}, nil
}

// TaskAction is a task sub-command.
type TaskAction string

const (
	TaskActionAssign TaskAction = "assign"
	TaskActionList   TaskAction = "list"
	TaskActionHelp   TaskAction = "help"
)

var (
	assignTaskRe = phrase("assign", "task")
	myTasksRe    = phrase("my", "tasks")
)

// ParseTaskAction picks the task sub-command and its arguments.
func ParseTaskAction(text string) (TaskAction, string) {
	if args, ok := matchPhrase(assignTaskRe, text); ok {
		return TaskActionAssign, args
	}
	if _, ok := matchPhrase(myTasksRe, text); ok {
		return TaskActionList, ""
	}
	return TaskActionHelp, ""
}

// Assignment is a parsed "assign task <project> to <user>: <desc> due <date>".
type Assignment struct {
	ProjectName string
	Username    string
	Description string
	DueDate     time.Time
}

var (
	toSep  = regexp.MustCompile(`(?i) to `)
	dueSep = regexp.MustCompile(`(?i) due `)
)

// ParseAssignment splits the arguments of "assign task". The project name
// ends at the first " to ", the username at the first ": ", and the
// description at the last " due ".
func ParseAssignment(args string) (Assignment, error) {
	loc := toSep.FindStringIndex(args)
	if loc == nil {
		return Assignment{}, fmt.Errorf("%w: missing \" to \"", task.ErrMalformedAssignment)
	}
	projectName := strings.TrimSpace(args[:loc[0]])
	rest := args[loc[1]:]

	username, descDate, ok := strings.Cut(rest, ": ")
	if !ok {
		return Assignment{}, fmt.Errorf("%w: missing \": \"", task.ErrMalformedAssignment)
	}
	username = strings.TrimSpace(username)

	dues := dueSep.FindAllStringIndex(descDate, -1)
	if len(dues) == 0 {
		return Assignment{}, fmt.Errorf("%w: missing \" due \"", task.ErrMalformedAssignment)
	}
	last := dues[len(dues)-1]
	description := strings.TrimSpace(descDate[:last[0]])
	dueRaw := strings.TrimSpace(descDate[last[1]:])

	if projectName == "" || username == "" || description == "" {
		return Assignment{}, fmt.Errorf("%w: empty field", task.ErrMalformedAssignment)
	}

	dueDate, err := validator.ParseDate(dueRaw)
	if err != nil {
		return Assignment{}, fmt.Errorf("%w: due date %q", task.ErrMalformedAssignment, dueRaw)
	}

	return Assignment{
		ProjectName: projectName,
		Username:    username,
		Description: description,
		DueDate:     dueDate,
	}, nil
}

// ProfileAction is a profile sub-command.
type ProfileAction string

const (
	ProfileActionUpdatePhone ProfileAction = "update_phone"
	ProfileActionHelp        ProfileAction = "help"
)

var updatePhoneRe = phrase("update", "phone")

// ParseProfileAction picks the profile sub-command and its arguments.
func ParseProfileAction(text string) (ProfileAction, string) {
	if args, ok := matchPhrase(updatePhoneRe, text); ok {
		return ProfileActionUpdatePhone, args
	}
	return ProfileActionHelp, ""
}
