// Package provision implements subclan resource management on top of the
// Discord API.
package provision

import (
	"github.com/bwmarrin/discordgo"

	"github.com/animesao/clan-bot/internal/store"
)

type Discord struct {
	session *discordgo.Session
	guildID string
}

func NewDiscord(session *discordgo.Session, guildID string) *Discord {
	return &Discord{session: session, guildID: guildID}
}

func (d *Discord) CreateCategory(name string) (string, error) {
	ch, err := d.session.GuildChannelCreateComplex(d.guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (d *Discord) CreateTextChannel(categoryID, name, topic string) (string, error) {
	ch, err := d.session.GuildChannelCreateComplex(d.guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    topic,
		ParentID: categoryID,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (d *Discord) CreateVoiceChannel(categoryID, name string, userLimit int) (string, error) {
	ch, err := d.session.GuildChannelCreateComplex(d.guildID, discordgo.GuildChannelCreateData{
		Name:      name,
		Type:      discordgo.ChannelTypeGuildVoice,
		ParentID:  categoryID,
		UserLimit: userLimit,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (d *Discord) CreateRole(name string, color int) (string, error) {
	hoist := true
	role, err := d.session.GuildRoleCreate(d.guildID, &discordgo.RoleParams{
		Name:  name,
		Color: &color,
		Hoist: &hoist,
	})
	if err != nil {
		return "", err
	}
	return role.ID, nil
}

func (d *Discord) DeleteChannel(channelID, reason string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))
	return err
}

func (d *Discord) DeleteRole(roleID, reason string) error {
	return d.session.GuildRoleDelete(d.guildID, roleID, discordgo.WithAuditLogReason(reason))
}

func (d *Discord) GrantRole(userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(d.guildID, userID, roleID)
}

func (d *Discord) RevokeRole(userID, roleID string) error {
	return d.session.GuildMemberRoleRemove(d.guildID, userID, roleID)
}

// RestrictChannel hides the channel from @everyone and opens it to the
// subclan roles.
func (d *Discord) RestrictChannel(channelID string, roles store.SubclanRoles) error {
	view := int64(discordgo.PermissionViewChannel)
	if err := d.session.ChannelPermissionSet(channelID, d.guildID, discordgo.PermissionOverwriteTypeRole, 0, view); err != nil {
		return err
	}
	for _, roleID := range []string{roles.Leader, roles.Officer, roles.Member} {
		if roleID == "" {
			continue
		}
		if err := d.session.ChannelPermissionSet(channelID, roleID, discordgo.PermissionOverwriteTypeRole, view, 0); err != nil {
			return err
		}
	}
	return nil
}

func (d *Discord) AllowRole(channelID, roleID string) error {
	view := int64(discordgo.PermissionViewChannel)
	return d.session.ChannelPermissionSet(channelID, roleID, discordgo.PermissionOverwriteTypeRole, view, 0)
}
