package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ialtaf14/Nova-AI/internal/lang"
	"github.com/ialtaf14/Nova-AI/internal/observability"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	nameColumn   = lipgloss.NewStyle().Width(32)
	localeColumn = lipgloss.NewStyle().Width(10)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F8C8D"))
)

func runVoices(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty, cmd.ErrOrStderr())

	synth, err := newSynthesizer(cfg, observability.Logger("speech"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if synth == nil {
		fmt.Fprintln(out, mutedStyle.Render("speech synthesis is disabled or unavailable"))
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	voices, err := synth.Voices(ctx)
	if err != nil {
		return fmt.Errorf("list voices: %w", err)
	}

	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Voices (%d)", len(voices))))
	for _, v := range voices {
		fmt.Fprintln(out, nameColumn.Render(v.Name)+localeColumn.Render(v.Locale)+mutedStyle.Render(v.Gender))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("Selected for region "+cfg.SpeechRegion))
	for _, tag := range []lang.Tag{lang.English, lang.Hindi, lang.Hinglish} {
		line := nameColumn.Render(string(tag))
		if v, ok := speech.ResolveVoice(voices, tag, cfg.SpeechRegion); ok {
			line += v.Name + mutedStyle.Render(" ("+v.Locale+")")
		} else {
			line += mutedStyle.Render("none")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
