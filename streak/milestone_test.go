package streak

import "testing"

var testPolicy = RewardPolicy{WeekBonus: 25, MonthBonus: 100, PledgeBonus: 500}

func TestEvaluate_Milestones(t *testing.T) {
	tests := []struct {
		name           string
		streak         int
		pledgeComplete bool
		wantReward     int
		wantTag        MilestoneTag
	}{
		{"no milestone", 5, false, 0, TagNone},
		{"first day", 1, false, 0, TagFirstDay},
		{"seven day streak pays the week bonus", 7, false, 25, TagSevenDayStreak},
		{"ten day multiple is decorative", 10, false, 0, TagTenDayMultiple},
		{"twenty is also a ten multiple", 20, false, 0, TagTenDayMultiple},
		{"thirty pays the month bonus and outranks the ten multiple", 30, false, 100, TagThirtyDayStreak},
		{"pledge completion stacks rewards and wins the tag", 7, true, 525, TagPledgeComplete},
		{"pledge completion on a plain day", 12, true, 500, TagPledgeComplete},
		{"pledge completion on day thirty", 30, true, 600, TagPledgeComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testPolicy.Evaluate(tt.streak, tt.pledgeComplete)
			if got.Reward != tt.wantReward {
				t.Errorf("Evaluate(%d, %v).Reward = %d, want %d", tt.streak, tt.pledgeComplete, got.Reward, tt.wantReward)
			}
			if got.Tag != tt.wantTag {
				t.Errorf("Evaluate(%d, %v).Tag = %q, want %q", tt.streak, tt.pledgeComplete, got.Tag, tt.wantTag)
			}
		})
	}
}
