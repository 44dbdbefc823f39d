// Package senses connects optional remote channels to the assistant.
package senses

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vthunder/deskmate/internal/chat"
	"github.com/vthunder/deskmate/internal/logging"
)

const responseTimeout = 60 * time.Second

// DiscordConfig holds Discord connection settings
type DiscordConfig struct {
	Token     string
	ChannelID string
	OwnerID   string
}

// DiscordChannel relays messages between a Discord channel and the chat
// engine, so the assistant can be reached from a phone.
type DiscordChannel struct {
	session   *discordgo.Session
	channelID string
	ownerID   string
	botID     string
	engine    *chat.Engine
}

// NewDiscordChannel creates the relay. It does not connect until Start.
func NewDiscordChannel(cfg DiscordConfig, engine *chat.Engine) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating Discord session: %w", err)
	}

	d := &DiscordChannel{
		session:   session,
		channelID: cfg.ChannelID,
		ownerID:   cfg.OwnerID,
		engine:    engine,
	}

	session.AddHandler(d.handleMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return d, nil
}

// Start connects to Discord and begins relaying
func (d *DiscordChannel) Start() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	d.botID = d.session.State.User.ID
	logging.Info("discord", "connected as %s", d.session.State.User.Username)
	return nil
}

// Stop disconnects from Discord
func (d *DiscordChannel) Stop() error {
	return d.session.Close()
}

func (d *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == d.botID {
		return
	}
	if d.channelID != "" && m.ChannelID != d.channelID {
		return
	}
	if d.ownerID != "" && m.Author.ID != d.ownerID {
		return
	}

	logging.Debug("discord", "message: %s", logging.Truncate(m.Content, 50))

	ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
	defer cancel()

	reply, err := d.engine.Respond(ctx, m.Content)
	if err != nil {
		logging.Info("discord", "response failed: %v", err)
		reply = "I'm having trouble thinking right now. Try again in a bit."
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		logging.Info("discord", "send failed: %v", err)
	}
}
