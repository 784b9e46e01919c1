package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/micromata/projectforge-sub017/internal/cli/formatter"
	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/spf13/pflag"
)

func pfHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// confirmForm creates a huh form for a yes/no confirmation.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(pfHuhTheme()).WithShowHelp(false)
}

// dateFlag is a pflag.Value holding an optional YYYY-MM-DD date.
type dateFlag struct {
	value *time.Time
}

var _ pflag.Value = (*dateFlag)(nil)

func (f *dateFlag) String() string {
	return domain.FormatDate(f.value)
}

func (f *dateFlag) Set(s string) error {
	d, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	f.value = &d
	return nil
}

func (f *dateFlag) Type() string { return "date" }

// relationFlag is a pflag.Value accepting relation type names in either
// spelling ("finish-start", "START_START").
type relationFlag struct {
	value *domain.RelationType
}

var _ pflag.Value = (*relationFlag)(nil)

func (f *relationFlag) String() string {
	if f.value == nil {
		return ""
	}
	return string(*f.value)
}

func (f *relationFlag) Set(s string) error {
	rel, ok := domain.ParseRelationType(s)
	if !ok {
		return fmt.Errorf("unknown relation type %q (use finish-start, start-start, finish-finish or start-finish)", s)
	}
	f.value = &rel
	return nil
}

func (f *relationFlag) Type() string { return "relation" }

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
