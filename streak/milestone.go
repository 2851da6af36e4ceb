package streak

// MilestoneTag labels a newly reached streak milestone for display purposes.
type MilestoneTag string

const (
	TagNone            MilestoneTag = ""
	TagFirstDay        MilestoneTag = "first_day"
	TagTenDayMultiple  MilestoneTag = "ten_day_multiple"
	TagSevenDayStreak  MilestoneTag = "seven_day_streak"
	TagThirtyDayStreak MilestoneTag = "thirty_day_streak"
	TagPledgeComplete  MilestoneTag = "pledge_complete"
)

// Milestone is the outcome of evaluating a newly achieved streak length.
// Reward is in coins; crediting it (and any notification) is the caller's job.
type Milestone struct {
	Reward int          `json:"reward"`
	Tag    MilestoneTag `json:"tag"`
}

// RewardPolicy holds the configured bonus amounts.
type RewardPolicy struct {
	WeekBonus   int
	MonthBonus  int
	PledgeBonus int
}

// Evaluate maps a newly achieved streak length and pledge completion to a
// reward and a display tag. Rewards accumulate across matching rules; the tag
// of a later rule overrides an earlier one, with pledge completion always
// winning display precedence.
func (p RewardPolicy) Evaluate(newStreak int, pledgeComplete bool) Milestone {
	var m Milestone
	if newStreak == 1 {
		m.Tag = TagFirstDay
	}
	if newStreak > 0 && newStreak%10 == 0 {
		m.Tag = TagTenDayMultiple
	}
	if newStreak == 7 {
		m.Reward += p.WeekBonus
		m.Tag = TagSevenDayStreak
	}
	if newStreak == 30 {
		m.Reward += p.MonthBonus
		m.Tag = TagThirtyDayStreak
	}
	if pledgeComplete {
		m.Reward += p.PledgeBonus
		m.Tag = TagPledgeComplete
	}
	return m
}
