package reminder

import "testing"

func TestInQuietHours_Disabled(t *testing.T) {
	if InQuietHours(nil, nil, 12*60) {
		t.Fatal("no window configured must never be quiet")
	}
	if InQuietHours(intPtr(22*60), nil, 23*60) {
		t.Fatal("a single bound must never be quiet")
	}
}

func TestInQuietHours_SameDayWindow(t *testing.T) {
	start, end := intPtr(13*60), intPtr(15*60)

	cases := []struct {
		nowM int
		want bool
	}{
		{12*60 + 59, false},
		{13 * 60, true}, // start inclusive
		{14 * 60, true},
		{15 * 60, false}, // end exclusive
		{16 * 60, false},
	}
	for _, c := range cases {
		if got := InQuietHours(start, end, c.nowM); got != c.want {
			t.Fatalf("nowM=%d: want %v, got %v", c.nowM, c.want, got)
		}
	}
}

func TestInQuietHours_OvernightWindow(t *testing.T) {
	start, end := intPtr(22*60), intPtr(6*60)

	if !InQuietHours(start, end, 23*60+30) {
		t.Fatal("23:30 must be inside 22:00-06:00")
	}
	if !InQuietHours(start, end, 2*60) {
		t.Fatal("02:00 must be inside 22:00-06:00")
	}
	if InQuietHours(start, end, 12*60) {
		t.Fatal("12:00 must be outside 22:00-06:00")
	}
	if InQuietHours(start, end, 6*60) {
		t.Fatal("end of the window is exclusive")
	}
}

func TestInQuietHours_ZeroWidthWindow(t *testing.T) {
	start, end := intPtr(9*60), intPtr(9*60)

	for nowM := 0; nowM < minutesPerDay; nowM += 30 {
		if InQuietHours(start, end, nowM) {
			t.Fatalf("zero-width window must never be quiet (nowM=%d)", nowM)
		}
	}
}

func TestMinutesUntilQuietEnd_SameDay(t *testing.T) {
	start, end := intPtr(13*60), intPtr(15*60)

	if got := MinutesUntilQuietEnd(start, end, 13*60+30, 10); got != 90 {
		t.Fatalf("want 90, got %d", got)
	}
}

func TestMinutesUntilQuietEnd_OvernightEveningSegment(t *testing.T) {
	start, end := intPtr(22*60), intPtr(6*60)

	// 23:00 -> one hour to midnight plus six to the end
	if got := MinutesUntilQuietEnd(start, end, 23*60, 10); got != 420 {
		t.Fatalf("want 420, got %d", got)
	}
}

func TestMinutesUntilQuietEnd_OvernightMorningSegment(t *testing.T) {
	start, end := intPtr(22*60), intPtr(6*60)

	if got := MinutesUntilQuietEnd(start, end, 4*60, 10); got != 120 {
		t.Fatalf("want 120, got %d", got)
	}
}

func TestMinutesUntilQuietEnd_ClampedToOne(t *testing.T) {
	start, end := intPtr(13*60), intPtr(15*60)

	// At the edge the remaining time is zero; forward progress needs >= 1.
	if got := MinutesUntilQuietEnd(start, end, 15*60, 10); got != 1 {
		t.Fatalf("want clamp to 1, got %d", got)
	}
}

func TestMinutesUntilQuietEnd_FallbackWithoutWindow(t *testing.T) {
	if got := MinutesUntilQuietEnd(nil, nil, 12*60, 10); got != 10 {
		t.Fatalf("want fallback 10, got %d", got)
	}
}
