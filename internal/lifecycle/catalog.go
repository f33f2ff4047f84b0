package lifecycle

import "NeighborGuard/internal/models"

// ReactionCode is a catalog token for a member's canned response. Codes that
// are not in the catalog are still carried through as-is.
type ReactionCode string

const (
	ReactionEscalateRecommendCallPolice ReactionCode = "ESCALATE_RECOMMEND_CALL_POLICE"
	ReactionEscalateBreakinSuspected    ReactionCode = "ESCALATE_BREAKIN_SUSPECTED"
	ReactionEscalateCalledPolice        ReactionCode = "ESCALATE_CALLED_POLICE"
	ReactionPackageEscalate             ReactionCode = "PACKAGE_ESCALATE"
	ReactionCustomEscalate              ReactionCode = "CUSTOM_ESCALATE"

	ReactionPackageMissing  ReactionCode = "PACKAGE_MISSING"
	ReactionDamageConfirmed ReactionCode = "DAMAGE_CONFIRMED"

	ReactionWatching             ReactionCode = "WATCHING"
	ReactionWatchingSafeDistance ReactionCode = "WATCHING_SAFE_DISTANCE"
	ReactionPackageWatching      ReactionCode = "PACKAGE_WATCHING"
	ReactionCustomWatching       ReactionCode = "CUSTOM_WATCHING"

	ReactionNormalOK           ReactionCode = "NORMAL_OK"
	ReactionSuspicious         ReactionCode = "SUSPICIOUS"
	ReactionDamageOnlyNoPerson ReactionCode = "DAMAGE_ONLY_NO_PERSON"
	ReactionPackageOK          ReactionCode = "PACKAGE_OK"
	ReactionPackageTakePhoto   ReactionCode = "PACKAGE_TAKE_PHOTO"
	ReactionCustomNormalOK     ReactionCode = "CUSTOM_NORMAL_OK"
	ReactionCustomSuspicious   ReactionCode = "CUSTOM_SUSPICIOUS"

	ReactionPackageTakenByMember ReactionCode = "PACKAGE_TAKEN_BY_MEMBER"
	ReactionFalseAlarmConfirmed  ReactionCode = "FALSE_ALARM_CONFIRMED"
)

// Category groups event types for the reaction options shown to members.
type Category string

const (
	CategorySuspicious Category = "suspicious"
	CategoryBreakin    Category = "breakin"
	CategoryPackage    Category = "package"
	CategoryCustom     Category = "custom"
)

// CategoryFor maps an event type to its reaction category.
func CategoryFor(eventType string) Category {
	switch eventType {
	case "break_in_attempt", "perimeter_damage":
		return CategoryBreakin
	case "suspicious_person", "suspicious_vehicle", "unusual_noise":
		return CategorySuspicious
	case "package_event":
		return CategoryPackage
	}
	return CategoryCustom
}

// ReactionOption 展示给成员的一个反馈选项
type ReactionOption struct {
	Code  ReactionCode `json:"code"`
	Icon  string       `json:"icon"`
	Label string       `json:"label"`
}

// Catalog is the read-only lifecycle configuration: status ranks, the global
// reaction -> status table and the per-category options. Build it once and
// share it; accessors never hand out the internal maps.
type Catalog struct {
	priorities  PriorityTable
	resolutions map[ReactionCode]models.EventStatus
	options     map[Category][]ReactionOption
	labels      map[ReactionCode]string
}

// NewCatalog copies its inputs so later mutation by the caller has no effect.
func NewCatalog(priorities PriorityTable, resolutions map[ReactionCode]models.EventStatus, options map[Category][]ReactionOption) *Catalog {
	c := &Catalog{
		priorities:  make(PriorityTable, len(priorities)),
		resolutions: make(map[ReactionCode]models.EventStatus, len(resolutions)),
		options:     make(map[Category][]ReactionOption, len(options)),
		labels:      map[ReactionCode]string{},
	}
	for k, v := range priorities {
		c.priorities[k] = v
	}
	for k, v := range resolutions {
		c.resolutions[k] = v
	}
	for cat, opts := range options {
		c.options[cat] = append([]ReactionOption(nil), opts...)
		for _, o := range opts {
			if _, ok := c.labels[o.Code]; !ok {
				c.labels[o.Code] = o.Label
			}
		}
	}
	return c
}

// Rank 状态优先级
func (c *Catalog) Rank(s models.EventStatus) int { return c.priorities.Rank(s) }

// Resolution returns the target status of a code; ok is false for codes that
// carry no status change.
func (c *Catalog) Resolution(code ReactionCode) (models.EventStatus, bool) {
	s, ok := c.resolutions[code]
	return s, ok
}

// Options returns a copy of the ordered options for a category.
func (c *Catalog) Options(cat Category) []ReactionOption {
	return append([]ReactionOption(nil), c.options[cat]...)
}

func (c *Catalog) OptionsFor(eventType string) []ReactionOption {
	return c.Options(CategoryFor(eventType))
}

// Label returns the human label of a code, or the code itself.
func (c *Catalog) Label(code ReactionCode) string {
	if l, ok := c.labels[code]; ok {
		return l
	}
	return string(code)
}

// Known reports whether the code appears anywhere in the catalog.
func (c *Catalog) Known(code ReactionCode) bool {
	if _, ok := c.resolutions[code]; ok {
		return true
	}
	_, ok := c.labels[code]
	return ok
}

// ParseReactionCode accepts any non-empty string. ok is false for codes the
// catalog does not know; callers keep them as the unknown variant.
func (c *Catalog) ParseReactionCode(raw string) (code ReactionCode, ok bool) {
	code = ReactionCode(raw)
	return code, c.Known(code)
}

// DefaultCatalog 与客户端一致的默认表
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultPriorities(), defaultResolutions(), defaultOptions())
}

func defaultResolutions() map[ReactionCode]models.EventStatus {
	return map[ReactionCode]models.EventStatus{
		ReactionEscalateRecommendCallPolice: models.StatusEscalated,
		ReactionEscalateBreakinSuspected:    models.StatusEscalated,
		ReactionEscalateCalledPolice:        models.StatusEscalated,
		ReactionPackageEscalate:             models.StatusEscalated,
		ReactionCustomEscalate:              models.StatusEscalated,

		ReactionPackageMissing:  models.StatusResolvedWarning,
		ReactionDamageConfirmed: models.StatusResolvedWarning,

		ReactionWatching:             models.StatusWatching,
		ReactionWatchingSafeDistance: models.StatusWatching,
		ReactionPackageWatching:      models.StatusWatching,
		ReactionCustomWatching:       models.StatusWatching,

		ReactionNormalOK:           models.StatusAcked,
		ReactionSuspicious:         models.StatusAcked,
		ReactionDamageOnlyNoPerson: models.StatusAcked,
		ReactionPackageOK:          models.StatusAcked,
		ReactionPackageTakePhoto:   models.StatusAcked,
		ReactionCustomNormalOK:     models.StatusAcked,
		ReactionCustomSuspicious:   models.StatusAcked,

		ReactionPackageTakenByMember: models.StatusResolvedOK,
		ReactionFalseAlarmConfirmed:  models.StatusFalseAlarm,
	}
}

func defaultOptions() map[Category][]ReactionOption {
	return map[Category][]ReactionOption{
		CategorySuspicious: {
			{Code: ReactionNormalOK, Icon: "✅", Label: "看过，觉得正常"},
			{Code: ReactionSuspicious, Icon: "⚠️", Label: "看过，有点可疑"},
			{Code: ReactionWatching, Icon: "👁️", Label: "我在附近，会远距离观察"},
			{Code: ReactionEscalateRecommendCallPolice, Icon: "🚨", Label: "情况紧急，建议立刻报警"},
		},
		CategoryBreakin: {
			{Code: ReactionEscalateBreakinSuspected, Icon: "🚨", Label: "我看到疑似入室，建议立刻报警"},
			{Code: ReactionEscalateCalledPolice, Icon: "📞", Label: "我已帮忙报警"},
			{Code: ReactionWatchingSafeDistance, Icon: "👁️", Label: "我在安全距离观察"},
			{Code: ReactionDamageOnlyNoPerson, Icon: "⚠️", Label: "没看到人，只看到破坏痕迹"},
		},
		CategoryPackage: {
			{Code: ReactionPackageOK, Icon: "👀", Label: "我看过，包裹还在"},
			{Code: ReactionPackageTakenByMember, Icon: "✅", Label: "我已帮你代取"},
			{Code: ReactionPackageMissing, Icon: "⚠️", Label: "包裹不见了"},
			{Code: ReactionPackageWatching, Icon: "👁️", Label: "我会留意观察"},
		},
		CategoryCustom: {
			{Code: ReactionCustomNormalOK, Icon: "✅", Label: "看过，觉得还好"},
			{Code: ReactionCustomSuspicious, Icon: "⚠️", Label: "有点异常，建议继续观察"},
			{Code: ReactionCustomWatching, Icon: "👁️", Label: "我会在附近留意观察"},
			{Code: ReactionCustomEscalate, Icon: "🚨", Label: "有风险，建议报警或回来查看"},
		},
	}
}
