package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/guildkeeper/guildkeeper/internal/logging"
)

// Handlers are the gateway event callbacks the bot runner installs.
type Handlers struct {
	OnMessage        func(ctx context.Context, msg Message)
	OnMemberJoin     func(ctx context.Context, ev MemberEvent)
	OnMemberLeave    func(ctx context.Context, ev MemberEvent)
	OnReactionAdd    func(ctx context.Context, ev ReactionEvent)
	OnReactionRemove func(ctx context.Context, ev ReactionEvent)
}

// Discord adapts a discordgo session to the Client and Directory
// interfaces and fans gateway events out to the installed Handlers.
type Discord struct {
	session *discordgo.Session
	log     zerolog.Logger
}

var _ Client = (*Discord)(nil)
var _ Directory = (*Discord)(nil)

// NewDiscord creates a Discord adapter for the given bot token. The
// session is not connected until Start is called.
func NewDiscord(token string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	return &Discord{
		session: session,
		log:     logging.GetLogger("discord"),
	}, nil
}

// Start connects to the gateway, installs event handlers, and registers
// the slash commands. Blocks only during the handshake.
func (d *Discord) Start(h Handlers, commands []Command) error {
	d.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if h.OnMessage == nil || m.Author == nil {
			return
		}
		h.OnMessage(context.Background(), d.toMessage(m.Message))
	})
	d.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if h.OnMemberJoin == nil || m.User == nil {
			return
		}
		h.OnMemberJoin(context.Background(), MemberEvent{
			GuildID:   m.GuildID,
			GuildName: d.GuildName(m.GuildID),
			UserID:    m.User.ID,
			UserName:  m.User.Username,
		})
	})
	d.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if h.OnMemberLeave == nil || m.User == nil {
			return
		}
		h.OnMemberLeave(context.Background(), MemberEvent{
			GuildID:   m.GuildID,
			GuildName: d.GuildName(m.GuildID),
			UserID:    m.User.ID,
			UserName:  m.User.Username,
		})
	})

	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
		if h.OnReactionAdd == nil || (s.State.User != nil && m.UserID == s.State.User.ID) {
			return
		}
		h.OnReactionAdd(context.Background(), d.toReaction(m.MessageReaction))
	})
	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageReactionRemove) {
		if h.OnReactionRemove == nil || (s.State.User != nil && m.UserID == s.State.User.ID) {
			return
		}
		h.OnReactionRemove(context.Background(), d.toReaction(m.MessageReaction))
	})

	byName := make(map[string]Command, len(commands))
	for _, c := range commands {
		byName[c.Name] = c
	}
	d.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := i.ApplicationCommandData()
		cmd, ok := byName[data.Name]
		if !ok {
			return
		}
		ic := d.toInteraction(i, data)
		if cmd.AdminOnly && !ic.IsAdmin {
			_ = ic.Respond("You need administrator permission for this command.", true)
			return
		}
		cmd.Handler(context.Background(), ic)
	})

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}

	if err := d.registerCommands(commands); err != nil {
		d.session.Close()
		return err
	}

	d.log.Info().
		Str("bot", d.session.State.User.Username).
		Int("guilds", len(d.session.State.Guilds)).
		Msg("gateway connected")
	return nil
}

// Close shuts down the gateway connection.
func (d *Discord) Close() error { return d.session.Close() }

func (d *Discord) registerCommands(commands []Command) error {
	appID := d.session.State.User.ID
	defs := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, c := range commands {
		def := &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
		}
		if c.AdminOnly {
			perm := int64(discordgo.PermissionAdministrator)
			def.DefaultMemberPermissions = &perm
		}
		for _, o := range c.Options {
			opt := &discordgo.ApplicationCommandOption{
				Name:        o.Name,
				Description: o.Description,
				Required:    o.Required,
				Type:        optionType(o.Type),
			}
			for _, choice := range o.Choices {
				opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
					Name:  choice,
					Value: choice,
				})
			}
			def.Options = append(def.Options, opt)
		}
		defs = append(defs, def)
	}
	if _, err := d.session.ApplicationCommandBulkOverwrite(appID, "", defs); err != nil {
		return fmt.Errorf("registering slash commands: %w", err)
	}
	return nil
}

func optionType(t OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case OptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case OptionBoolean:
		return discordgo.ApplicationCommandOptionBoolean
	case OptionUser:
		return discordgo.ApplicationCommandOptionUser
	case OptionChannel:
		return discordgo.ApplicationCommandOptionChannel
	case OptionRole:
		return discordgo.ApplicationCommandOptionRole
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

func (d *Discord) toMessage(m *discordgo.Message) Message {
	msg := Message{
		ID:         m.ID,
		GuildID:    m.GuildID,
		GuildName:  d.GuildName(m.GuildID),
		ChannelID:  m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		AuthorBot:  m.Author.Bot,
		Content:    m.Content,
	}
	if m.Member != nil {
		msg.AuthorRoles = m.Member.Roles
	}
	return msg
}

func (d *Discord) toReaction(m *discordgo.MessageReaction) ReactionEvent {
	return ReactionEvent{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.MessageID,
		UserID:    m.UserID,
		Emoji:     m.Emoji.APIName(),
	}
}

func (d *Discord) toInteraction(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) *Interaction {
	opts := make(map[string]any, len(data.Options))
	for _, o := range data.Options {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			opts[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			opts[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			opts[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionUser:
			opts[o.Name] = o.UserValue(nil).ID
		case discordgo.ApplicationCommandOptionChannel:
			opts[o.Name] = o.ChannelValue(nil).ID
		case discordgo.ApplicationCommandOptionRole:
			opts[o.Name] = o.RoleValue(nil, "").ID
		}
	}

	var userID, userName string
	var admin bool
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
		userName = i.Member.User.Username
		admin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	} else if i.User != nil {
		userID = i.User.ID
		userName = i.User.Username
	}

	respond := func(text string, ephemeral bool) error {
		resp := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: text},
		}
		if ephemeral {
			resp.Data.Flags = discordgo.MessageFlagsEphemeral
		}
		return d.session.InteractionRespond(i.Interaction, resp)
	}

	return NewInteraction(i.GuildID, d.GuildName(i.GuildID), i.ChannelID, userID, userName, admin, opts, respond)
}

// --- Client ---

func (d *Discord) Reply(ctx context.Context, msg Message, text string, mentionAuthor bool) error {
	_, err := d.session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
		Content: text,
		Reference: &discordgo.MessageReference{
			MessageID: msg.ID,
			ChannelID: msg.ChannelID,
			GuildID:   msg.GuildID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse:       []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
			RepliedUser: mentionAuthor,
		},
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) SendMessage(ctx context.Context, channelID, text string) error {
	_, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) SendTransient(ctx context.Context, channelID, text string, after time.Duration) error {
	m, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	time.AfterFunc(after, func() {
		if err := d.session.ChannelMessageDelete(channelID, m.ID); err != nil {
			d.log.Debug().Err(err).Str("channel", channelID).Msg("deleting transient notice")
		}
	})
	return nil
}

func (d *Discord) SendDM(ctx context.Context, userID, text string) error {
	ch, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = d.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) React(ctx context.Context, channelID, messageID, emoji string) error {
	return d.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (d *Discord) TimeoutMember(ctx context.Context, guildID, userID string, dur time.Duration, reason string) error {
	until := time.Now().Add(dur)
	return d.session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// --- Moderation and roles ---

func (d *Discord) KickMember(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (d *Discord) BanMember(ctx context.Context, guildID, userID, reason string) error {
	return d.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
}

// PurgeMessages bulk-deletes up to limit recent messages from the channel
// and reports how many were removed.
func (d *Discord) PurgeMessages(ctx context.Context, channelID string, limit int) (int, error) {
	msgs, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if err := d.session.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// --- Directory ---

func (d *Discord) Bot() BotInfo {
	u := d.session.State.User
	if u == nil {
		return BotInfo{}
	}
	return BotInfo{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL("128")}
}

func (d *Discord) Guilds() []GuildInfo {
	guilds := d.session.State.Guilds
	out := make([]GuildInfo, 0, len(guilds))
	for _, g := range guilds {
		out = append(out, GuildInfo{
			ID:          g.ID,
			Name:        g.Name,
			IconURL:     g.IconURL("128"),
			MemberCount: g.MemberCount,
		})
	}
	return out
}

func (d *Discord) GuildName(guildID string) string {
	if guildID == "" {
		return ""
	}
	g, err := d.session.State.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.Name
}

func (d *Discord) Membership(guildID, userID string) (bool, bool) {
	g, err := d.session.State.Guild(guildID)
	if err != nil {
		return false, false
	}
	m, err := d.session.State.Member(guildID, userID)
	if err != nil {
		m, err = d.session.GuildMember(guildID, userID)
		if err != nil {
			return false, false
		}
	}
	if g.OwnerID == userID {
		return true, true
	}
	for _, roleID := range m.Roles {
		for _, role := range g.Roles {
			if role.ID == roleID && role.Permissions&discordgo.PermissionAdministrator != 0 {
				return true, true
			}
		}
	}
	return true, false
}
