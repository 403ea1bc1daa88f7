package trading

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/animesao/clan-bot/config"
	"github.com/animesao/clan-bot/internal/cmdutil"
	"github.com/animesao/clan-bot/internal/deps"
	"github.com/animesao/clan-bot/internal/registry"
	"github.com/animesao/clan-bot/internal/store"
	"github.com/animesao/clan-bot/internal/types"
)

var d *deps.Deps

func Setup(dd *deps.Deps) {
	d = dd
}

func init() {
	registry.RegisterCommand(TradeCommand)
	registry.RegisterComponent("trade_buy:", handleBuyButton)
	registry.RegisterComponent("trade_close:", handleCloseButton)
}

var tradeCategories = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Оружие", Value: "weapons"},
	{Name: "Броня", Value: "armor"},
	{Name: "Ресурсы", Value: "resources"},
	{Name: "Прочее", Value: "misc"},
}

var categoryTitles = map[string]string{
	"weapons":   "⚔️・оружие",
	"armor":     "🛡️・броня",
	"resources": "⛏️・ресурсы",
	"misc":      "📦・прочее",
}

var TradeCommand = &types.Command{
	Name:        "trade",
	Description: "Торговая площадка",
	Category:    "Торговля",
	Cooldown:    5 * time.Second,
	Options: []*types.CommandOption{
		{
			Name:        "setup",
			Description: "Создать каналы торговой площадки",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        "sell",
			Description: "Выставить предмет на продажу",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "item", Description: "Предмет", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "price", Description: "Цена", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "category", Description: "Категория", Type: discordgo.ApplicationCommandOptionString, Required: true, Choices: tradeCategories},
				{Name: "description", Description: "Описание", Type: discordgo.ApplicationCommandOptionString},
			},
		},
		{
			Name:        "my",
			Description: "Мои объявления",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        "list",
			Description: "Открытые объявления",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "category", Description: "Категория", Type: discordgo.ApplicationCommandOptionString, Choices: tradeCategories},
			},
		},
		{
			Name:        "history",
			Description: "История ваших завершённых сделок",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        "watch",
			Description: "Следить за предметом",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "keyword", Description: "Название предмета", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
		{
			Name:        "unwatch",
			Description: "Перестать следить за предметом",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*types.CommandOption{
				{Name: "keyword", Description: "Название предмета", Type: discordgo.ApplicationCommandOptionString, Required: true},
			},
		},
	},
	Run: func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) error {
		sub, opts := cmdutil.Subcommand(i)
		switch sub {
		case "setup":
			return runSetup(s, i)
		case "sell":
			return runSell(s, i, opts)
		case "my":
			return runMy(s, i)
		case "list":
			return runList(s, i, opts.String("category"))
		case "history":
			return runHistory(s, i)
		case "watch":
			return runWatch(s, i, opts.String("keyword"), true)
		case "unwatch":
			return runWatch(s, i, opts.String("keyword"), false)
		}
		return nil
	},
}

func runSetup(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return cmdutil.ReplyEphemeral(s, i, "❌ Настраивать площадку могут только администраторы.")
	}

	category, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name: "🛒 Торговая площадка",
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return fmt.Errorf("create marketplace category: %v", err)
	}

	general, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:     "💬・торговля",
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: category.ID,
	})
	if err != nil {
		return fmt.Errorf("create marketplace channel: %v", err)
	}

	channels := make(map[string]string, len(categoryTitles))
	for key, title := range categoryTitles {
		ch, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
			Name:     title,
			Type:     discordgo.ChannelTypeGuildText,
			ParentID: category.ID,
		})
		if err != nil {
			return fmt.Errorf("create category channel %s: %v", key, err)
		}
		channels[key] = ch.ID
	}

	err = d.Store.Update(func(st *store.State) error {
		st.Trading.Marketplace = store.Marketplace{
			CategoryID:       category.ID,
			GeneralChannelID: general.ID,
			CategoryChannels: channels,
		}
		return nil
	})
	if err != nil {
		return err
	}
	return cmdutil.ReplyEphemeral(s, i, "✅ Торговая площадка создана.")
}

func runSell(s *discordgo.Session, i *discordgo.InteractionCreate, opts cmdutil.OptionMap) error {
	item := opts.String("item")
	price := opts.String("price")
	category := opts.String("category")
	description := opts.String("description")
	sellerID := cmdutil.Actor(i).ID

	var market store.Marketplace
	d.Store.View(func(st *store.State) { market = st.Trading.Marketplace })

	channelID := market.CategoryChannels[category]
	if channelID == "" {
		channelID = market.GeneralChannelID
	}
	if channelID == "" {
		return cmdutil.ReplyEphemeral(s, i, "❌ Торговая площадка ещё не настроена.")
	}

	tradeID := uuid.New().String()
	embed := &discordgo.MessageEmbed{
		Title:       "🛒 " + item,
		Description: description,
		Color:       0x2ECC71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Продавец", Value: fmt.Sprintf("<@%s>", sellerID), Inline: true},
			{Name: "Цена", Value: price, Inline: true},
		},
		Timestamp: cmdutil.Timestamp(),
	}
	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Купить", Style: discordgo.SuccessButton, CustomID: "trade_buy:" + tradeID},
				discordgo.Button{Label: "Снять с продажи", Style: discordgo.SecondaryButton, CustomID: "trade_close:" + tradeID},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("post trade listing: %v", err)
	}

	err = d.Store.Update(func(st *store.State) error {
		st.Trading.Trades[tradeID] = &store.Trade{
			ID:          tradeID,
			SellerID:    sellerID,
			Item:        item,
			Price:       price,
			Description: description,
			Category:    category,
			ChannelID:   channelID,
			MessageID:   msg.ID,
			Status:      store.TradeOpen,
			CreatedAt:   time.Now(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	notifyWatchers(item, tradeID, channelID)
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("✅ Объявление размещено в <#%s>.", channelID))
}

// notifyWatchers pings everyone whose watched keyword occurs in the item
// name.
func notifyWatchers(item, tradeID, channelID string) {
	lower := strings.ToLower(item)
	watchers := make(map[string]struct{})
	d.Store.View(func(st *store.State) {
		for keyword, users := range st.Trading.Interests {
			if strings.Contains(lower, keyword) {
				for _, u := range users {
					watchers[u] = struct{}{}
				}
			}
		}
	})
	for userID := range watchers {
		res := d.Notify.DM(userID, &discordgo.MessageEmbed{
			Title:       "🔔 Появился интересующий вас предмет",
			Description: fmt.Sprintf("**%s** выставлен на продажу в <#%s>.", item, channelID),
			Color:       0x3498DB,
		})
		if !res.Delivered {
			d.Log.Debug(fmt.Sprintf("trade watch notice for %s not delivered", userID))
		}
	}
}

func runMy(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := cmdutil.Actor(i).ID
	var trades []store.Trade
	d.Store.View(func(st *store.State) {
		for _, t := range st.Trading.Trades {
			if t.SellerID == userID && t.Status == store.TradeOpen {
				trades = append(trades, *t)
			}
		}
	})
	if len(trades) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "У вас нет активных объявлений.")
	}
	var b strings.Builder
	for _, t := range trades {
		fmt.Fprintf(&b, "🛒 **%s** — %s (<#%s>)\n", t.Item, t.Price, t.ChannelID)
	}
	return cmdutil.ReplyEphemeral(s, i, b.String())
}

func runList(s *discordgo.Session, i *discordgo.InteractionCreate, category string) error {
	var trades []store.Trade
	d.Store.View(func(st *store.State) {
		for _, t := range st.Trading.Trades {
			if t.Status != store.TradeOpen {
				continue
			}
			if category != "" && t.Category != category {
				continue
			}
			trades = append(trades, *t)
		}
	})
	if len(trades) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "Сейчас нет открытых объявлений.")
	}
	sort.Slice(trades, func(a, b int) bool { return trades[a].CreatedAt.After(trades[b].CreatedAt) })
	if len(trades) > 15 {
		trades = trades[:15]
	}
	var b strings.Builder
	for _, t := range trades {
		fmt.Fprintf(&b, "🛒 **%s** — %s, продавец <@%s> (<#%s>)\n", t.Item, t.Price, t.SellerID, t.ChannelID)
	}
	return cmdutil.ReplyEphemeral(s, i, b.String())
}

func runHistory(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := cmdutil.Actor(i).ID
	var trades []store.Trade
	d.Store.View(func(st *store.State) {
		for _, t := range st.Trading.Trades {
			if t.Status == store.TradeOpen {
				continue
			}
			if t.SellerID != userID && t.BuyerID != userID {
				continue
			}
			trades = append(trades, *t)
		}
	})
	if len(trades) == 0 {
		return cmdutil.ReplyEphemeral(s, i, "У вас ещё нет завершённых сделок.")
	}
	sort.Slice(trades, func(a, b int) bool {
		ta, tb := trades[a].CreatedAt, trades[b].CreatedAt
		if trades[a].ClosedAt != nil {
			ta = *trades[a].ClosedAt
		}
		if trades[b].ClosedAt != nil {
			tb = *trades[b].ClosedAt
		}
		return ta.After(tb)
	})
	if len(trades) > 15 {
		trades = trades[:15]
	}
	var b strings.Builder
	for _, t := range trades {
		mark := "✅"
		if t.Status == store.TradeCancelled {
			mark = "🚫"
		}
		fmt.Fprintf(&b, "%s **%s** — %s\n", mark, t.Item, t.Price)
	}
	return cmdutil.ReplyEphemeral(s, i, b.String())
}

func runWatch(s *discordgo.Session, i *discordgo.InteractionCreate, keyword string, add bool) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return cmdutil.ReplyEphemeral(s, i, "❌ Укажите название предмета.")
	}
	userID := cmdutil.Actor(i).ID

	err := d.Store.Update(func(st *store.State) error {
		users := st.Trading.Interests[keyword]
		filtered := users[:0]
		for _, u := range users {
			if u != userID {
				filtered = append(filtered, u)
			}
		}
		if add {
			filtered = append(filtered, userID)
		}
		if len(filtered) == 0 {
			delete(st.Trading.Interests, keyword)
		} else {
			st.Trading.Interests[keyword] = filtered
		}
		return nil
	})
	if err != nil {
		return err
	}
	if add {
		return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("🔔 Вы будете получать уведомления о «%s».", keyword))
	}
	return cmdutil.ReplyEphemeral(s, i, fmt.Sprintf("🔕 Уведомления о «%s» отключены.", keyword))
}

func handleBuyButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	tradeID := strings.TrimPrefix(i.MessageComponentData().CustomID, "trade_buy:")
	buyerID := cmdutil.Actor(i).ID

	var trade store.Trade
	var selfBuy bool
	err := d.Store.Update(func(st *store.State) error {
		t, ok := st.Trading.Trades[tradeID]
		if !ok || t.Status != store.TradeOpen {
			return fmt.Errorf("trade closed")
		}
		if t.SellerID == buyerID {
			selfBuy = true
			return store.ErrNoChange
		}
		now := time.Now()
		t.Status = store.TradeCompleted
		t.BuyerID = buyerID
		t.ClosedAt = &now
		trade = *t
		return nil
	})
	if selfBuy {
		return cmdutil.ReplyEphemeral(s, i, "❌ Нельзя купить собственный предмет.")
	}
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Это объявление уже закрыто.")
	}

	d.Notify.DM(trade.SellerID, &discordgo.MessageEmbed{
		Title:       "💰 Ваш предмет купили!",
		Description: fmt.Sprintf("<@%s> покупает **%s** за %s. Свяжитесь с покупателем.", buyerID, trade.Item, trade.Price),
		Color:       0x2ECC71,
	})
	return closeListing(s, i, fmt.Sprintf("✅ Продано <@%s>.", buyerID))
}

func handleCloseButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	tradeID := strings.TrimPrefix(i.MessageComponentData().CustomID, "trade_close:")
	actorID := cmdutil.Actor(i).ID

	err := d.Store.Update(func(st *store.State) error {
		t, ok := st.Trading.Trades[tradeID]
		if !ok || t.Status != store.TradeOpen {
			return fmt.Errorf("trade closed")
		}
		if t.SellerID != actorID {
			return fmt.Errorf("not seller")
		}
		now := time.Now()
		t.Status = store.TradeCancelled
		t.ClosedAt = &now
		return nil
	})
	if err != nil {
		return cmdutil.ReplyEphemeral(s, i, "❌ Снять объявление может только продавец, и только пока оно активно.")
	}
	return closeListing(s, i, "Снято с продажи.")
}

// closeListing strips the buttons off the listing message.
func closeListing(s *discordgo.Session, i *discordgo.InteractionCreate, note string) error {
	embeds := i.Message.Embeds
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    note,
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
}
