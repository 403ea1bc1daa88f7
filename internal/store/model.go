package store

import "time"

// Status values for membership applications and subclan applications.
const (
	StatusPending = "pending"
)

// Role held by an accepted clan member.
const RoleMember = "member"

// Trade lifecycle states.
const (
	TradeOpen      = "open"
	TradeCompleted = "completed"
	TradeCancelled = "cancelled"
)

type Member struct {
	JoinedAt   time.Time `json:"joined_at"`
	Role       string    `json:"role"`
	AcceptedBy string    `json:"accepted_by"`
}

type Application struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Nickname    string    `json:"nickname"`
	Age         string    `json:"age"`
	Experience  string    `json:"experience"`
	Motivation  string    `json:"motivation"`
	Screenshots []string  `json:"screenshots"`
}

type Warning struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	IssuedBy  string    `json:"issued_by"`
}

// RoleConfig holds the externally-configured guild role ids for the clan.
type RoleConfig struct {
	Leader    string `json:"leader"`
	Officer   string `json:"officer"`
	Member    string `json:"member"`
	Applicant string `json:"applicant"`
	NewMember string `json:"new_member"`
}

type ClanEvent struct {
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Participants []string  `json:"participants"`
	CreatedBy    string    `json:"created_by"`
	Reminded     bool      `json:"reminded,omitempty"`
}

type SubclanApplication struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

type CustomRole struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SubclanChannels maps the logical channel slots of a subclan to the
// externally-owned channel ids.
type SubclanChannels struct {
	Category      string `json:"category"`
	General       string `json:"general"`
	Announcements string `json:"announcements"`
	Voice         string `json:"voice"`
}

type SubclanRoles struct {
	Leader  string `json:"leader"`
	Officer string `json:"officer"`
	Member  string `json:"member"`
}

type ExtraChannel struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type SubclanSettings struct {
	WelcomeMessage string `json:"welcome_message"`
}

type Subclan struct {
	Description string                         `json:"description"`
	CreatedAt   time.Time                      `json:"created_at"`
	CreatedBy   string                         `json:"created_by"`
	MaxMembers  int                            `json:"max_members"`
	Members     []string                       `json:"members"`
	Channels    SubclanChannels                `json:"channels"`
	Roles       SubclanRoles                   `json:"roles"`
	CustomRoles map[string]*CustomRole         `json:"custom_roles"`
	// ExtraChannels is keyed by channel id.
	ExtraChannels map[string]*ExtraChannel      `json:"additional_channels"`
	Applications  map[string]*SubclanApplication `json:"applications"`
	Settings      SubclanSettings                `json:"settings"`
}

// Clone returns a copy sharing no slices or maps with the receiver, safe
// to read after the store lock is released.
func (s *Subclan) Clone() Subclan {
	cp := *s
	cp.Members = append([]string(nil), s.Members...)
	cp.CustomRoles = make(map[string]*CustomRole, len(s.CustomRoles))
	for id, r := range s.CustomRoles {
		rc := *r
		cp.CustomRoles[id] = &rc
	}
	cp.ExtraChannels = make(map[string]*ExtraChannel, len(s.ExtraChannels))
	for id, ch := range s.ExtraChannels {
		cc := *ch
		cp.ExtraChannels[id] = &cc
	}
	cp.Applications = make(map[string]*SubclanApplication, len(s.Applications))
	for id, a := range s.Applications {
		ac := *a
		cp.Applications[id] = &ac
	}
	return cp
}

func (s *Subclan) HasMember(userID string) bool {
	for _, id := range s.Members {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Subclan) RemoveMember(userID string) {
	for i, id := range s.Members {
		if id == userID {
			s.Members = append(s.Members[:i], s.Members[i+1:]...)
			return
		}
	}
}

// AllRoleIDs returns the main role ids plus every custom role id.
func (s *Subclan) AllRoleIDs() []string {
	ids := make([]string, 0, 3+len(s.CustomRoles))
	for _, id := range []string{s.Roles.Leader, s.Roles.Officer, s.Roles.Member} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	for _, cr := range s.CustomRoles {
		ids = append(ids, cr.ID)
	}
	return ids
}

type Faction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	RoleID      string `json:"role_id"`
	Color       string `json:"color"`
}

type FactionConfig struct {
	Enabled   bool                `json:"enabled"`
	MessageID string              `json:"message_id"`
	ChannelID string              `json:"channel_id"`
	Factions  map[string]*Faction `json:"factions"`
}

type Settings struct {
	WelcomeChannel      string   `json:"welcome_channel"`
	AnnouncementChannel string   `json:"announcement_channel"`
	LogChannel          string   `json:"log_channel"`
	AutoRole            string   `json:"auto_role"`
	WelcomeMessage      string   `json:"welcome_message"`
	InactivityDays      int      `json:"inactivity_days"`
	MaxWarnings         int      `json:"max_warnings"`
	EventReminderHours  int      `json:"event_reminder_hours"`
	ApplyChannels       []string `json:"apply_channels"`
}

type Giveaway struct {
	Prize       string    `json:"prize"`
	Winners     int       `json:"winners"`
	EndTime     time.Time `json:"end_time"`
	ChannelID   string    `json:"channel_id"`
	GuildID     string    `json:"guild_id"`
	HostID      string    `json:"host_id"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Ended       bool      `json:"ended"`
}

type Trade struct {
	ID          string     `json:"id"`
	SellerID    string     `json:"seller_id"`
	Item        string     `json:"item"`
	Price       string     `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ChannelID   string     `json:"channel_id"`
	MessageID   string     `json:"message_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	BuyerID     string     `json:"buyer_id,omitempty"`
}

type Marketplace struct {
	CategoryID       string            `json:"category_id"`
	GeneralChannelID string            `json:"general_channel_id"`
	CategoryChannels map[string]string `json:"category_channels"`
}

type TradingState struct {
	Marketplace Marketplace         `json:"marketplace"`
	Trades      map[string]*Trade   `json:"trades"`
	// Interests maps a lowercased item keyword to the users watching it.
	Interests map[string][]string `json:"interests"`
}

type TempChannelSettings struct {
	Enabled         bool   `json:"enabled"`
	CategoryID      string `json:"category_id"`
	CreateChannelID string `json:"create_channel_id"`
	NameTemplate    string `json:"name_template"`
	UserLimit       int    `json:"user_limit"`
	Bitrate         int    `json:"bitrate"`
	AutoDelete      bool   `json:"auto_delete"`
	DeleteAfter     int    `json:"delete_after"`
	Prefix          string `json:"prefix"`
	Suffix          string `json:"suffix"`
}

type AutomodSettings struct {
	Enabled         bool     `json:"enabled"`
	BlockInvites    bool     `json:"block_invites"`
	BlockURLs       bool     `json:"block_urls"`
	AllowedChannels []string `json:"allowed_channels"`
	IgnoredRoles    []string `json:"ignored_roles"`
}

type LevelUser struct {
	XP            int        `json:"xp"`
	Level         int        `json:"level"`
	TotalMessages int        `json:"total_messages"`
	VoiceMinutes  float64    `json:"voice_time"`
	LastVoiceJoin *time.Time `json:"last_voice_update,omitempty"`
}

type LevelReward struct {
	RoleID string `json:"role_id"`
}

type LevelingState struct {
	Enabled          bool                    `json:"enabled"`
	XPPerMessage     int                     `json:"xp_per_message"`
	XPPerVoiceMinute int                     `json:"xp_per_voice_minute"`
	AnnounceChannel  string                  `json:"announce_channel"`
	AnnounceEnabled  bool                    `json:"announce_enabled"`
	// Rewards is keyed by the decimal level number.
	Rewards map[string]*LevelReward `json:"rewards"`
	Users   map[string]*LevelUser   `json:"users"`
}

// State is the whole persisted aggregate. Every subsystem is a namespaced
// collection inside one document.
type State struct {
	Members              map[string]*Member            `json:"members"`
	Applications         map[string]*Application       `json:"applications"`
	Roles                RoleConfig                    `json:"roles"`
	Events               map[string]*ClanEvent         `json:"events"`
	Warnings             map[string]*Warning           `json:"warnings"`
	Subclans             map[string]*Subclan           `json:"subclans"`
	// Activity records when a member was last seen chatting; the
	// inactivity sweep reads it.
	Activity             map[string]time.Time          `json:"activity"`
	Factions             FactionConfig                 `json:"factions"`
	LeaveCooldowns       map[string]time.Time          `json:"leave_cooldowns"`
	VerificationMessages map[string]map[string]string  `json:"verification_messages"`
	Settings             Settings                      `json:"settings"`
	Giveaways            map[string]*Giveaway          `json:"giveaways"`
	Trading              TradingState                  `json:"trading"`
	TempChannels         TempChannelSettings           `json:"temp_channels"`
	Automod              AutomodSettings               `json:"automod"`
	Leveling             LevelingState                 `json:"leveling"`
}

func DefaultState() *State {
	return &State{
		Members:              make(map[string]*Member),
		Applications:         make(map[string]*Application),
		Events:               make(map[string]*ClanEvent),
		Warnings:             make(map[string]*Warning),
		Subclans:             make(map[string]*Subclan),
		Activity:             make(map[string]time.Time),
		Factions:             FactionConfig{Factions: make(map[string]*Faction)},
		LeaveCooldowns:       make(map[string]time.Time),
		VerificationMessages: make(map[string]map[string]string),
		Settings: Settings{
			WelcomeMessage:     "Добро пожаловать на сервер!",
			InactivityDays:     30,
			MaxWarnings:        3,
			EventReminderHours: 24,
		},
		Giveaways: make(map[string]*Giveaway),
		Trading: TradingState{
			Marketplace: Marketplace{CategoryChannels: make(map[string]string)},
			Trades:      make(map[string]*Trade),
			Interests:   make(map[string][]string),
		},
		TempChannels: TempChannelSettings{
			NameTemplate: "🎮 {username}",
			Bitrate:      128000,
			AutoDelete:   true,
			DeleteAfter:  300,
			Prefix:       "🎮",
		},
		Automod: AutomodSettings{
			Enabled:      true,
			BlockInvites: true,
		},
		Leveling: LevelingState{
			Enabled:          true,
			XPPerMessage:     5,
			XPPerVoiceMinute: 2,
			AnnounceEnabled:  true,
			Rewards:          make(map[string]*LevelReward),
			Users:            make(map[string]*LevelUser),
		},
	}
}

// normalize fills collections that are missing from an older state file so
// callers never see a nil map.
func (s *State) normalize() {
	if s.Members == nil {
		s.Members = make(map[string]*Member)
	}
	if s.Applications == nil {
		s.Applications = make(map[string]*Application)
	}
	if s.Events == nil {
		s.Events = make(map[string]*ClanEvent)
	}
	if s.Warnings == nil {
		s.Warnings = make(map[string]*Warning)
	}
	if s.Subclans == nil {
		s.Subclans = make(map[string]*Subclan)
	}
	for _, sc := range s.Subclans {
		if sc.CustomRoles == nil {
			sc.CustomRoles = make(map[string]*CustomRole)
		}
		if sc.ExtraChannels == nil {
			sc.ExtraChannels = make(map[string]*ExtraChannel)
		}
		if sc.Applications == nil {
			sc.Applications = make(map[string]*SubclanApplication)
		}
	}
	if s.Factions.Factions == nil {
		s.Factions.Factions = make(map[string]*Faction)
	}
	if s.LeaveCooldowns == nil {
		s.LeaveCooldowns = make(map[string]time.Time)
	}
	if s.Activity == nil {
		s.Activity = make(map[string]time.Time)
	}
	if s.VerificationMessages == nil {
		s.VerificationMessages = make(map[string]map[string]string)
	}
	if s.Giveaways == nil {
		s.Giveaways = make(map[string]*Giveaway)
	}
	if s.Trading.Trades == nil {
		s.Trading.Trades = make(map[string]*Trade)
	}
	if s.Trading.Interests == nil {
		s.Trading.Interests = make(map[string][]string)
	}
	if s.Trading.Marketplace.CategoryChannels == nil {
		s.Trading.Marketplace.CategoryChannels = make(map[string]string)
	}
	if s.Leveling.Rewards == nil {
		s.Leveling.Rewards = make(map[string]*LevelReward)
	}
	if s.Leveling.Users == nil {
		s.Leveling.Users = make(map[string]*LevelUser)
	}
}
