package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/CreativeUnicorns/usersettings"
)

// MessageSender is the part of *discordgo.Session the notifier uses.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts registrations to a Discord channel.
type DiscordNotifier struct {
	sender    MessageSender
	channelID string
}

// NewDiscordNotifier creates a bot session for token. The session only uses the REST API,
// so no gateway connection is opened.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: error creating session: %w", err)
	}
	return NewDiscordNotifierWithSender(dg, channelID), nil
}

// NewDiscordNotifierWithSender wraps an existing session or any MessageSender.
func NewDiscordNotifierWithSender(sender MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{sender: sender, channelID: channelID}
}

func (n *DiscordNotifier) NotifyNewUser(ctx context.Context, reg usersettings.Registration) error {
	content := "```\n" + FormatNewUserPlain(reg) + "\n```"
	if _, err := n.sender.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: failed to send message: %w", err)
	}
	return nil
}
