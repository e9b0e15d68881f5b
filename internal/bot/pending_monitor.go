package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pmurley/sheetfill/internal/convert"
)

const pendingCheckTimeout = time.Minute

// startPendingMonitor starts the background check for rows waiting for an ID
func (b *Bot) startPendingMonitor() {
	go b.pendingMonitorLoop()
}

func (b *Bot) pendingMonitorLoop() {
	b.logger.Info("Starting pending rows monitor, interval", b.config.MonitorInterval)

	// Initial check on startup
	b.checkPendingRows()

	ticker := time.NewTicker(b.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.checkPendingRows()
		case <-b.stopChan:
			b.logger.Info("Stopping pending rows monitor")
			return
		}
	}
}

// checkPendingRows counts the unkeyed rows of SHEET_URL and posts a notice
// when the count has changed since the last check.
func (b *Bot) checkPendingRows() {
	b.logger.Debug("Checking for pending rows")

	ctx, cancel := context.WithTimeout(context.Background(), pendingCheckTimeout)
	defer cancel()

	// The monitor must see edits made since the last tick
	b.dataCache.Flush()

	count, err := b.service.Pending(ctx, "")
	if err != nil {
		b.logger.Error("Failed to count pending rows:", convert.Describe(err))
		return
	}

	embed, changed := pendingNotice(b.lastPending, count, b.config.CommandPrefix)
	b.lastPending = count
	if !changed {
		return
	}

	b.logger.Info("Pending rows changed to", count)

	if _, err := b.session.ChannelMessageSendEmbed(b.config.MonitorChannelID, embed); err != nil {
		b.logger.Error("Failed to send pending rows notification:", err)
	}
}

// pendingNotice returns the embed to post for a new pending count, or false
// when nothing should be posted.
func pendingNotice(previous, current int, prefix string) (*discordgo.MessageEmbed, bool) {
	if current == previous || current == 0 {
		return nil, false
	}

	noun := "rows are"
	if current == 1 {
		noun = "row is"
	}

	return &discordgo.MessageEmbed{
		Title:       "Rows waiting for an ID",
		Description: fmt.Sprintf("%d %s waiting for an ID. Run `%sconvert` to generate the file.", current, noun, prefix),
		Color:       0xffa500, // Orange
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Previous",
				Value:  fmt.Sprintf("%d", previous),
				Inline: true,
			},
			{
				Name:   "Now",
				Value:  fmt.Sprintf("%d", current),
				Inline: true,
			},
		},
	}, true
}
