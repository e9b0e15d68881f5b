package discord

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pmurley/sheetfill/internal/convert"
	"github.com/pmurley/sheetfill/internal/pipeline"
	"github.com/pmurley/sheetfill/internal/storage"
)

const (
	commandTimeout  = 2 * time.Minute
	previewLimit    = 10
	historyLimit    = 10
	maxMessageChars = 1900
)

// handleConvert processes the !convert command
func (hm *HandlerManager) handleConvert(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	log := hm.commandLogger(m)

	s.ChannelTyping(m.ChannelID)

	artifact, err := hm.service.Convert(ctx, urlArg(args))
	if err != nil {
		log.Warn("Convert failed:", err)
		hm.reply(s, m, convert.Describe(err))
		return
	}

	noun := "rows"
	if artifact.Rows == 1 {
		noun = "row"
	}

	message := &discordgo.MessageSend{
		Content: fmt.Sprintf("Keyed %d %s.", artifact.Rows, noun),
		Files: []*discordgo.File{
			{
				Name:        artifact.Name,
				ContentType: artifact.ContentType,
				Reader:      bytes.NewReader(artifact.Data),
			},
		},
		Reference: m.Reference(),
	}

	if _, err := s.ChannelMessageSendComplex(m.ChannelID, message); err != nil {
		log.Error("Failed to send artifact:", err)
		hm.reply(s, m, "Generated "+artifact.Name+" but could not upload it.")
		return
	}

	log.Info("Sent", artifact.Name)
}

// handlePreview processes the !preview command
func (hm *HandlerManager) handlePreview(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := hm.service.Preview(ctx, urlArg(args))
	if err != nil {
		hm.commandLogger(m).Debug("Preview failed:", err)
		hm.reply(s, m, convert.Describe(err))
		return
	}

	hm.reply(s, m, formatPreview(result, previewLimit))
}

// handleHistory processes the !history command
func (hm *HandlerManager) handleHistory(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if hm.storage == nil {
		hm.reply(s, m, "Conversion history is disabled, set OUTPUT_DIR to keep it.")
		return
	}

	runs, err := hm.storage.Runs(historyLimit)
	if err != nil {
		hm.commandLogger(m).Error("Failed to read conversion history:", err)
		hm.reply(s, m, "Failed to read conversion history.")
		return
	}

	hm.reply(s, m, formatHistory(runs))
}

// urlArg returns the sheet URL argument, if any. Discord users wrap links in
// angle brackets to suppress the embed.
func urlArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(args[0], "<"), ">")
}

func formatPreview(result *pipeline.Result, limit int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**%d rows would be keyed**\n", len(result.Records)))
	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%-5s %-14s %s\n", "Row", "ID", "Phone"))

	for i, rec := range result.Records {
		if i >= limit {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(result.Records)-limit))
			break
		}

		line := fmt.Sprintf("%-5d %-14s %s\n", rec.Row, rec.ID, rec.Phone)
		if sb.Len()+len(line) > maxMessageChars {
			sb.WriteString("...\n")
			break
		}
		sb.WriteString(line)
	}

	sb.WriteString("```")

	return sb.String()
}

func formatHistory(runs []storage.Run) string {
	if len(runs) == 0 {
		return "No conversions yet."
	}

	var sb strings.Builder

	sb.WriteString("**Recent conversions**\n```\n")
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%s  %-28s %3d rows\n", run.Time.Format("2006-01-02 15:04"), run.FileName, run.Rows))
	}
	sb.WriteString("```")

	return sb.String()
}
