package event

import "testing"

func TestCategoryOfMappedActions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		action Action
		want   Category
	}{
		{ActionSpareEnemy, CategoryMercy},
		{ActionAttackFirst, CategoryViolence},
		{ActionKill, CategoryViolence},
		{ActionLie, CategoryHonesty},
		{ActionPersuade, CategorySocial},
		{ActionEnterLocation, CategoryExploration},
		{ActionRest, CategoryCharacter},
	}
	for _, tc := range cases {
		got, ok := CategoryOf(tc.action)
		if !ok {
			t.Fatalf("expected %q to be mapped", tc.action)
		}
		if got != tc.want {
			t.Fatalf("CategoryOf(%q) = %q, want %q", tc.action, got, tc.want)
		}
	}
}

func TestCategoryOfUnmappedAction(t *testing.T) {
	t.Parallel()

	if _, ok := CategoryOf(Action("juggle_torches")); ok {
		t.Fatal("expected unmapped action to be ignored")
	}
}

func TestDeceptivePolarityStaysWithinHonesty(t *testing.T) {
	t.Parallel()

	for action := range deceptiveActions {
		category, ok := CategoryOf(action)
		if !ok || category != CategoryHonesty {
			t.Fatalf("deceptive action %q must map to honesty, got %q", action, category)
		}
	}
	if IsDeceptive(ActionTellTruth) {
		t.Fatal("tell_truth must not be deceptive")
	}
	if !IsDeceptive(ActionBetray) {
		t.Fatal("betray must be deceptive")
	}
}

func TestSocialBucketTableCoversOnlySocialActions(t *testing.T) {
	t.Parallel()

	for action := range socialBuckets {
		category, ok := CategoryOf(action)
		if !ok || category != CategorySocial {
			t.Fatalf("bucketed action %q must map to social, got %q", action, category)
		}
	}
	if _, ok := SocialBucketOf(ActionAttack); ok {
		t.Fatal("violence actions must not carry a social bucket")
	}
}

func TestHasTag(t *testing.T) {
	t.Parallel()

	evt := Event{Tags: []string{TagOngoingConfrontation, "night"}}
	if !evt.HasTag(TagOngoingConfrontation) {
		t.Fatal("expected tag to be found")
	}
	if evt.HasTag(TagConfrontationResolved) {
		t.Fatal("expected missing tag to be absent")
	}
}
