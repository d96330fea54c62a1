package models

import (
	"testing"
	"time"
)

func TestParseTrainingDays(t *testing.T) {
	days, err := ParseTrainingDays("6,2")
	if err != nil {
		t.Fatalf("ParseTrainingDays: %v", err)
	}
	if len(days) != 2 || days[0] != time.Saturday || days[1] != time.Tuesday {
		t.Fatalf("got %v, want [Saturday Tuesday]", days)
	}
}

func TestParseTrainingDaysTrimsSpaces(t *testing.T) {
	days, err := ParseTrainingDays(" 1 , 3 ,5 ")
	if err != nil {
		t.Fatalf("ParseTrainingDays: %v", err)
	}
	if len(days) != 3 || days[0] != time.Monday || days[2] != time.Friday {
		t.Fatalf("got %v, want [Monday Wednesday Friday]", days)
	}
}

func TestParseTrainingDaysEmpty(t *testing.T) {
	days, err := ParseTrainingDays("")
	if err != nil {
		t.Fatalf("ParseTrainingDays: %v", err)
	}
	if days != nil {
		t.Fatalf("got %v, want nil", days)
	}
}

func TestParseTrainingDaysRejectsBadInput(t *testing.T) {
	for _, csv := range []string{"7", "-1", "abc", "2,2", "1,,3"} {
		if _, err := ParseTrainingDays(csv); err == nil {
			t.Fatalf("ParseTrainingDays(%q): expected error", csv)
		}
	}
}

func TestTrainingWeekdaysIgnoresMalformed(t *testing.T) {
	b := Branch{TrainingDays: "bogus"}
	if got := b.TrainingWeekdays(); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
